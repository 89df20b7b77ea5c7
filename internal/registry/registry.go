package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-tokviz/internal/cache"
	"github.com/23skdu/longbow-tokviz/internal/config"
	"github.com/23skdu/longbow-tokviz/internal/tokenizer"
)

// ErrUnknownBackend is returned for a model whose backend is not registered.
var ErrUnknownBackend = errors.New("unknown tokenizer backend")

// Fetcher resolves a file of a hub repository to a local path.
type Fetcher interface {
	Fetch(ctx context.Context, repoID, file string) (string, error)
}

// BackendFunc builds a tokenizer for a model.
type BackendFunc func(ctx context.Context, m config.Model) (tokenizer.Tokenizer, error)

// Registry turns configured models into tokenizers.
type Registry struct {
	backends map[string]BackendFunc
	cache    cache.TokenCache
}

// Option configures a Registry.
type Option func(*Registry)

// WithBackend registers or replaces a backend.
func WithBackend(name string, fn BackendFunc) Option {
	return func(r *Registry) { r.backends[name] = fn }
}

// WithCache sets the token cache shared by acquired tokenizers. A nil cache
// disables caching.
func WithCache(c cache.TokenCache) Option {
	return func(r *Registry) { r.cache = c }
}

// New creates a registry with the tiktoken, wordpiece and hf backends. The
// wordpiece and hf backends download their vocabularies through fetcher.
func New(fetcher Fetcher, opts ...Option) *Registry {
	r := &Registry{
		backends: map[string]BackendFunc{
			config.BackendTiktoken:  tiktokenBackend,
			config.BackendWordPiece: wordPieceBackend(fetcher),
			config.BackendHF:        hfBackend(fetcher),
		},
		cache: cache.NewMapCache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns a tokenizer for m.
func (r *Registry) Acquire(ctx context.Context, m config.Model) (tokenizer.Tokenizer, error) {
	fn, ok := r.backends[m.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, m.Backend)
	}

	start := time.Now()
	tk, err := fn(ctx, m)
	if err != nil {
		return nil, err
	}
	if tk == nil {
		return nil, fmt.Errorf("backend %q returned no tokenizer", m.Backend)
	}
	elapsed := time.Since(start)
	loadDuration.WithLabelValues(m.Backend).Observe(elapsed.Seconds())

	log.Info().
		Str("model", m.Name).
		Str("id", m.ID).
		Str("backend", m.Backend).
		Dur("elapsed", elapsed).
		Msg("Loaded tokenizer")

	if r.cache == nil {
		return tk, nil
	}
	return &cachedTokenizer{model: m.Name, next: tk, cache: r.cache}, nil
}

// AcquireAll acquires tokenizers in order and stops at the first failure,
// naming the model that could not be loaded.
func (r *Registry) AcquireAll(ctx context.Context, models []config.Model) ([]tokenizer.Tokenizer, error) {
	out := make([]tokenizer.Tokenizer, 0, len(models))
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tk, err := r.Acquire(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("acquire tokenizer %q (%s): %w", m.Name, m.ID, err)
		}
		out = append(out, tk)
	}
	return out, nil
}

func tiktokenBackend(_ context.Context, m config.Model) (tokenizer.Tokenizer, error) {
	if m.Encoding != "" {
		return tokenizer.NewTiktoken(m.Encoding)
	}
	return tokenizer.NewTiktokenForModel(m.ID)
}

// HubFile is the hub file a backend loads its vocabulary from. Backends that
// need no download are absent.
var HubFile = map[string]string{
	config.BackendWordPiece: "vocab.txt",
	config.BackendHF:        "tokenizer.json",
}

// Prefetch downloads the hub files of every model into the fetcher's cache
// and returns the local paths in model order. Models with no hub file get "".
func Prefetch(ctx context.Context, f Fetcher, models []config.Model) ([]string, error) {
	paths := make([]string, len(models))
	for i, m := range models {
		file, ok := HubFile[m.Backend]
		if !ok {
			continue
		}
		path, err := f.Fetch(ctx, m.ID, file)
		if err != nil {
			return nil, fmt.Errorf("fetch %s for %q: %w", file, m.Name, err)
		}
		paths[i] = path
	}
	return paths, nil
}

func wordPieceBackend(f Fetcher) BackendFunc {
	return func(ctx context.Context, m config.Model) (tokenizer.Tokenizer, error) {
		path, err := f.Fetch(ctx, m.ID, HubFile[config.BackendWordPiece])
		if err != nil {
			return nil, err
		}
		tk, err := tokenizer.NewWordPieceTokenizer(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("model", m.Name).Int("vocab_size", tk.VocabSize()).Msg("Loaded WordPiece vocab")
		return tk, nil
	}
}

func hfBackend(f Fetcher) BackendFunc {
	return func(ctx context.Context, m config.Model) (tokenizer.Tokenizer, error) {
		path, err := f.Fetch(ctx, m.ID, HubFile[config.BackendHF])
		if err != nil {
			return nil, err
		}
		return tokenizer.NewHFTokenizer(path)
	}
}
