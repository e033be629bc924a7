// Package storage reads uploaded context files. Uploading is handled by a
// separate service; this package never writes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"promptlab/internal/domain"
)

// MaxFileSize caps how much of one file is read into a prompt
const MaxFileSize = 10 << 20

// FileStore reads file contents by their stored path
type FileStore interface {
	ReadFile(ctx context.Context, storagePath string) ([]byte, error)
}

// LocalFileStore serves files below a base directory. Stored paths are
// resolved inside the directory; paths escaping it are rejected.
type LocalFileStore struct {
	baseDir string
}

func NewLocalFileStore(baseDir string) *LocalFileStore {
	return &LocalFileStore{baseDir: baseDir}
}

// ReadFile returns domain.ErrNotFound when the path does not exist
func (s *LocalFileStore) ReadFile(ctx context.Context, storagePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if storagePath == "" {
		return nil, &domain.NotFoundError{Message: "empty storage path"}
	}

	f, err := os.OpenInRoot(s.baseDir, storagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("file %s not found", storagePath)}
		}
		return nil, fmt.Errorf("open %s: %w", storagePath, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", storagePath, err)
	}
	return data, nil
}
