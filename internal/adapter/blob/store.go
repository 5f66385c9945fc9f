// Package blob stores creative image assets on local disk. Keys are
// slash-separated relative paths; the public URL is derived from a
// configured base URL so the files can be served by the API itself or
// by anything fronting the same directory.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adproofhq/adproof-backend/internal/config"
)

// Store writes and removes blobs under a root directory.
type Store struct {
	dir     string
	baseURL string
}

// New creates a Store rooted at cfg.Dir, creating the directory if needed.
func New(cfg config.BlobConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", cfg.Dir, err)
	}
	return &Store{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// Put writes the blob and returns the key it is stored under. Parent
// directories are created as needed. An existing blob at the same key is
// overwritten. URLs are derived separately via URL so stored references
// stay valid when the base URL changes.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	p, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create blob subdir for %s: %w", key, err)
	}

	// Write to a temp file first so a failed upload never leaves a
	// truncated blob at the final key.
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("finalize blob %s: %w", key, err)
	}

	return key, nil
}

// Delete removes the blob at key. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Open returns a reader over the blob at key.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return f, nil
}

// URL returns the public URL for a key without touching disk.
func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

// resolve maps a key to an absolute path and rejects traversal outside the
// root directory.
func (s *Store) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
