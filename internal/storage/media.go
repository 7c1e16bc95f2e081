// Package storage handles story media persistence on local disk.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MediaStore persists and removes story media (covers, page media).
type MediaStore interface {
	// Save writes the content and returns an opaque reference for later
	// retrieval or removal.
	Save(r io.Reader, ext string) (string, error)
	// Remove deletes the media behind a reference. Removing an unknown
	// reference is not an error.
	Remove(ref string) error
	// Path resolves a reference to a filesystem path for serving.
	Path(ref string) (string, error)
}

// LocalStore is a MediaStore backed by a single local directory. References
// are random UUID filenames, so nothing user-supplied reaches the filesystem.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates the base directory if needed and returns the store.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Save(r io.Reader, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	ref := uuid.NewString() + "." + ext

	f, err := os.Create(filepath.Join(s.baseDir, ref))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return ref, nil
}

func (s *LocalStore) Remove(ref string) error {
	path, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) Path(ref string) (string, error) {
	// References are generated UUID names; reject anything that tries to
	// escape the base directory.
	clean := filepath.Base(filepath.Clean(ref))
	if clean != ref || ref == "" || ref == "." {
		return "", fmt.Errorf("invalid media reference %q", ref)
	}
	return filepath.Join(s.baseDir, clean), nil
}
