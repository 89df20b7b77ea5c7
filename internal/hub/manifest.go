package hub

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

const manifestName = "manifest.cbor"

// Entry records one cached file.
type Entry struct {
	URL       string    `cbor:"1,keyasint"`
	Size      int64     `cbor:"2,keyasint"`
	SHA256    string    `cbor:"3,keyasint"`
	FetchedAt time.Time `cbor:"4,keyasint"`
}

// Manifest maps file names inside a repo cache directory to their entries.
type Manifest struct {
	Files map[string]Entry `cbor:"1,keyasint"`
}

func readManifest(dir string) (*Manifest, error) {
	m := &Manifest{Files: make(map[string]Entry)}
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	if err := cbor.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", manifestName, err)
	}
	if m.Files == nil {
		m.Files = make(map[string]Entry)
	}
	return m, nil
}

func writeManifest(dir string, m *Manifest) error {
	data, err := cbor.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", manifestName, err)
	}
	return writeFileAtomic(filepath.Join(dir, manifestName), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
