package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/pkg/config"
)

// FileStore uploads document bytes and returns a durable URL.
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte, progress ProgressFunc) (string, error)
}

// New selects the store configured by cfg.Driver. The local store is also
// returned so download routes can serve it; it is nil for other drivers.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (FileStore, *LocalStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case config.StorageDriverS3:
		client, err := NewS3Client(ctx, cfg.S3Region)
		if err != nil {
			return nil, nil, err
		}
		store, err := NewS3Storage(client, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("document storage ready", zap.String("driver", cfg.Driver), zap.String("bucket", cfg.S3Bucket))
		return store, nil, nil
	case config.StorageDriverLocal, "":
		signer := NewSignedURLSigner(cfg.SignedURLSecret)
		local, err := NewLocalStorage(cfg.Dir, cfg.PublicBaseURL, signer)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("document storage ready", zap.String("driver", config.StorageDriverLocal), zap.String("dir", cfg.Dir))
		return local, local, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
