package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// defaultExt is used when the original filename carries no extension.
const defaultExt = ".jpg"

// LocalFileStorage persists uploads on the local filesystem and returns
// URLs under <baseURL>/uploads/. The directory is expected to be served
// statically by the HTTP layer.
type LocalFileStorage struct {
	dir     string
	baseURL string
}

// NewLocalFileStorage creates the uploads directory if needed.
func NewLocalFileStorage(dir, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalFileStorage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Store writes the bytes under a random filename, keeping the original
// extension, and returns the hosted URL.
func (s *LocalFileStorage) Store(ctx context.Context, data []byte, originalFilename string) (string, error) {
	ext := filepath.Ext(originalFilename)
	if ext == "" {
		ext = defaultExt
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}

	return fmt.Sprintf("%s/uploads/%s", s.baseURL, name), nil
}
