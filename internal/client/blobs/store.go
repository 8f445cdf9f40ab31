// Package blobs stores the raw image payloads of pages. Keys are the
// Page.ImageRef values; the filesystem backend keeps them under a directory,
// the S3 backend under a bucket.
package blobs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/scansync/internal/client/config"
)

// Store is a flat key-value store of image payloads.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns common.ErrNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete of an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.BlobBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendFS, "":
		return NewFSStore(cfg.BlobDir)
	case config.BlobBackendS3:
		return NewS3Store(ctx, S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
