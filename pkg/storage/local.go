package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage stores documents on the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if basePath == "" {
		basePath = "./uploads"
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolving storage path: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{basePath: abs}, nil
}

// Save writes the document to disk under a uuid-prefixed name so repeated
// uploads of the same filename never collide.
func (s *LocalStorage) Save(ctx context.Context, filename string, r io.Reader) (*FileInfo, error) {
	id := uuid.New()
	name := sanitizeFilename(filename)
	path := filepath.Join(s.basePath, fmt.Sprintf("%s_%s", id.String(), name))

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &FileInfo{
		ID:        id,
		Name:      name,
		Size:      size,
		Checksum:  hex.EncodeToString(hasher.Sum(nil)),
		Path:      path,
		CreatedAt: time.Now(),
	}, nil
}

// Open returns a reader for a stored document.
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if !strings.HasPrefix(filepath.Clean(path), s.basePath) {
		return nil, fmt.Errorf("path outside storage root: %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

// Delete removes a stored document.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if !strings.HasPrefix(filepath.Clean(path), s.basePath) {
		return fmt.Errorf("path outside storage root: %s", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// sanitizeFilename strips path separators and control characters from an
// uploaded filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 32:
			return -1
		case r == '/' || r == '\\' || r == ':':
			return '_'
		default:
			return r
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "document"
	}
	return name
}
