// Package blobstore provides a disk-backed blob store speaking the same
// option types as waffle's pantry/storage, for deployments that keep
// uploaded documents on the host instead of an object store.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
)

// Local stores blobs under a base directory. Paths are slash-separated
// storage keys; they never escape the base directory.
type Local struct {
	baseDir string
	baseURL string
}

// NewLocal creates the base directory if needed and returns a Local store.
// baseURL is the public prefix download links are built from.
func NewLocal(baseDir, baseURL string) (*Local, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve %q: %w", baseDir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create %q: %w", abs, err)
	}
	return &Local{baseDir: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes the blob to disk, creating parent directories as needed.
func (l *Local) Put(_ context.Context, path string, reader io.Reader, _ *storage.PutOptions) error {
	full, err := l.GetFullPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("blobstore: mkdir for %q: %w", path, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("blobstore: create %q: %w", path, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return fmt.Errorf("blobstore: write %q: %w", path, err)
	}
	return f.Close()
}

// PresignedURL returns a plain URL under the configured base; local files
// need no signing.
func (l *Local) PresignedURL(_ context.Context, path string, _ *storage.PresignOptions) (string, error) {
	if _, err := l.GetFullPath(path); err != nil {
		return "", err
	}
	return l.baseURL + "/" + path, nil
}

// GetFullPath maps a storage key to its on-disk location, rejecting keys
// that would escape the base directory.
func (l *Local) GetFullPath(path string) (string, error) {
	full := filepath.Join(l.baseDir, filepath.FromSlash(path))
	if !strings.HasPrefix(full, l.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("blobstore: path %q escapes base directory", path)
	}
	return full, nil
}
