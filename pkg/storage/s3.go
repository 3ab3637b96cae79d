package storage

import (
	"context"
	"fmt"
	"io"
)

// S3Storage implements Storage using Amazon S3 or S3-compatible services
// TODO: Implement using aws-sdk-go-v2
type S3Storage struct {
	bucket string
	region string
	// client *s3.Client // Uncomment when implementing
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(cfg *Config) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.S3Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	return &S3Storage{
		bucket: cfg.S3Bucket,
		region: cfg.S3Region,
	}, nil
}

// Save stores a document in S3.
func (s *S3Storage) Save(ctx context.Context, filename string, r io.Reader) (*FileInfo, error) {
	// The extractor reads documents from local paths, so an S3 backend
	// would need to stage the object to a temp file before ingestion.
	return nil, fmt.Errorf("S3 storage not implemented - set STORAGE_TYPE=local or implement S3Storage")
}

// Open retrieves a document from S3.
func (s *S3Storage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("S3 storage not implemented")
}

// Delete removes a document from S3.
func (s *S3Storage) Delete(ctx context.Context, path string) error {
	return fmt.Errorf("S3 storage not implemented")
}
