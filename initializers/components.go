package initializers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/storage"
	"github.com/elastic/go-elasticsearch/v8"
)

// NewLogger returns the process logger for cfg.
func NewLogger(cfg *Config) logging.Logger {
	return logging.New(cfg.IsProduction(), cfg.DBDebug)
}

// NewStore opens the configured storage backend.
func NewStore(ctx context.Context, cfg *Config, logger logging.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case StorageS3:
		store, err := storage.NewS3Store(storage.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "Using S3 storage", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
		return store, nil
	case StorageLocal:
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "Using local storage", "dir", store.Dir())
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// LocalUploadDir is the directory to serve under /uploads, empty unless
// the local backend is in use.
func LocalUploadDir(store storage.Store) string {
	if ls, ok := store.(*storage.LocalStore); ok {
		return filepath.Clean(ls.Dir())
	}
	return ""
}

// NewSearchClient returns nil when search is not configured.
func NewSearchClient(cfg *Config) (*elasticsearch.Client, error) {
	if cfg.ElasticsearchURL == "" {
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: splitList(cfg.ElasticsearchURL),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating the elasticsearch client: %w", err)
	}
	return client, nil
}
