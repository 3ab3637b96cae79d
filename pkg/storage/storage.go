// Package storage provides file storage for uploaded statement documents,
// with local and S3 implementations.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored document.
type FileInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"` // hex SHA-256 of the content
	Path      string    `json:"path"`     // Absolute path for local storage
	CreatedAt time.Time `json:"created_at"`
}

// Storage defines the interface for document storage operations. The
// ingestion pipeline extracts from on-disk paths, so Save returns a
// FileInfo whose Path is readable by the extractor.
type Storage interface {
	// Save stores a document and returns its metadata.
	Save(ctx context.Context, filename string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for a stored document.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a stored document.
	Delete(ctx context.Context, path string) error
}

// StorageType identifies the storage backend
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// Config holds storage configuration
type Config struct {
	Type StorageType

	// Local storage config
	LocalPath string

	// S3 storage config (prepared for future use)
	S3Bucket string
	S3Region string
}

// New creates a new Storage implementation based on configuration
func New(cfg *Config) (Storage, error) {
	switch cfg.Type {
	case StorageTypeS3:
		return NewS3Storage(cfg)
	case StorageTypeLocal:
		fallthrough
	default:
		return NewLocalStorage(cfg.LocalPath)
	}
}
