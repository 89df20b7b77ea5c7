package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultEndpoint is the public HuggingFace hub.
const DefaultEndpoint = "https://huggingface.co"

// ErrOffline is returned when a file is not cached and network access is disabled.
var ErrOffline = errors.New("not in cache and offline mode is enabled")

// Fetcher downloads model files from a HuggingFace compatible hub into a local cache.
type Fetcher struct {
	endpoint string
	cacheDir string
	token    string
	offline  bool
	client   *http.Client
	now      func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithEndpoint overrides the hub base URL.
func WithEndpoint(endpoint string) Option {
	return func(f *Fetcher) { f.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithToken sets a bearer token sent with every request.
func WithToken(token string) Option {
	return func(f *Fetcher) { f.token = token }
}

// WithOffline disables network access.
func WithOffline(offline bool) Option {
	return func(f *Fetcher) { f.offline = offline }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoint: DefaultEndpoint,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 5 * time.Minute},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultCacheDir returns the per-user cache directory for model files.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tokviz")
	}
	return filepath.Join(dir, "tokviz")
}

// CacheDir returns the cache root.
func (f *Fetcher) CacheDir() string {
	return f.cacheDir
}

// Fetch returns the local path of file from repo repoID (e.g. "bert-base-uncased",
// "google/flan-t5-small"), downloading it when the cache has no valid copy.
func (f *Fetcher) Fetch(ctx context.Context, repoID, file string) (string, error) {
	if err := validName(repoID); err != nil {
		return "", fmt.Errorf("repo id %q: %w", repoID, err)
	}
	if err := validName(file); err != nil {
		return "", fmt.Errorf("file %q: %w", file, err)
	}

	dir := filepath.Join(f.cacheDir, filepath.FromSlash(repoID))
	path := filepath.Join(dir, filepath.FromSlash(file))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	manifest, err := readManifest(dir)
	if err != nil {
		return "", err
	}

	if entry, ok := manifest.Files[file]; ok && cachedCopyValid(path, entry) {
		cacheHits.Inc()
		log.Debug().Str("repo", repoID).Str("file", file).Msg("Using cached model file")
		return path, nil
	}

	if f.offline {
		return "", fmt.Errorf("%s/%s: %w", repoID, file, ErrOffline)
	}

	entry, err := f.download(ctx, repoID, file, path)
	if err != nil {
		downloads.WithLabelValues("error").Inc()
		return "", err
	}
	downloads.WithLabelValues("ok").Inc()

	manifest.Files[file] = entry
	if err := writeManifest(dir, manifest); err != nil {
		return "", err
	}
	return path, nil
}

// resolveURL returns the resolve URL for a file in repoID.
func (f *Fetcher) resolveURL(repoID, file string) string {
	return f.endpoint + "/" + repoID + "/resolve/main/" + url.PathEscape(file)
}

func (f *Fetcher) download(ctx context.Context, repoID, file, dest string) (Entry, error) {
	u := f.resolveURL(repoID, file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Entry{}, err
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return Entry{}, fmt.Errorf("GET %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Entry{}, fmt.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return Entry{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Entry{}, fmt.Errorf("write %s: %w", dest, err)
	}
	if n == 0 {
		return Entry{}, fmt.Errorf("download %s: got 0 bytes", u)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return Entry{}, err
	}
	downloadBytes.Add(float64(n))

	log.Info().
		Str("repo", repoID).
		Str("file", file).
		Int64("bytes", n).
		Dur("elapsed", time.Since(start)).
		Msg("Downloaded model file")

	return Entry{
		URL:       u,
		Size:      n,
		SHA256:    hex.EncodeToString(h.Sum(nil)),
		FetchedAt: f.now().UTC(),
	}, nil
}

func cachedCopyValid(path string, entry Entry) bool {
	fh, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = fh.Close() }()

	st, err := fh.Stat()
	if err != nil || st.Size() != entry.Size {
		return false
	}
	h := sha256.New()
	if _, err := io.Copy(h, fh); err != nil {
		return false
	}
	return hex.EncodeToString(h.Sum(nil)) == entry.SHA256
}

func validName(s string) error {
	if s == "" {
		return errors.New("empty")
	}
	if strings.HasPrefix(s, "/") || strings.Contains(s, "\\") {
		return errors.New("must be a relative slash-separated path")
	}
	for _, part := range strings.Split(s, "/") {
		if part == "" || part == "." || part == ".." {
			return errors.New("invalid path element")
		}
	}
	return nil
}
