// Package storage persists uploaded attachment bytes on the local disk.
// Only metadata lives in the database; records point here via a path
// relative to the base directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const uploadChunkSize = 1 << 20 // 1 MiB

type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}

	return &Store{baseDir: baseDir}, nil
}

// Save streams the upload to disk in fixed-size chunks and returns the
// stored path relative to the base directory plus the byte count. The
// stored name gets a timestamp prefix so repeated uploads of the same
// filename don't collide.
func (s *Store) Save(filename string, r io.Reader) (string, int64, error) {
	safeName := fmt.Sprintf("%d_%s", time.Now().Unix(), filepath.Base(filename))
	dest := filepath.Join(s.baseDir, safeName)

	f, err := os.Create(dest)

	if err != nil {
		return "", 0, err
	}

	buf := make([]byte, uploadChunkSize)
	size, err := io.CopyBuffer(f, r, buf)

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		os.Remove(dest)
		return "", 0, err
	}

	return safeName, size, nil
}

// Path resolves a stored relative path to an absolute one.
func (s *Store) Path(relPath string) string {
	return filepath.Join(s.baseDir, relPath)
}

func (s *Store) Exists(relPath string) bool {
	_, err := os.Stat(s.Path(relPath))
	return err == nil
}

func (s *Store) Remove(relPath string) error {
	return os.Remove(s.Path(relPath))
}
