package report

import (
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"keypad-cracker/config"
)

// Uploader ships a finished report file to remote storage.
type Uploader interface {
	Enabled() bool
	// UploadFile stores the file at path under key and returns its location.
	UploadFile(ctx context.Context, path, key string) (string, error)
	// Close releases the storage client.
	Close() error
}

type NoopUploader struct{}

func (NoopUploader) Enabled() bool {
	return false
}

func (NoopUploader) UploadFile(context.Context, string, string) (string, error) {
	return "", nil
}

func (NoopUploader) Close() error {
	return nil
}

// NewUploader picks S3 when enabled, then GCS, otherwise a no-op.
func NewUploader(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Uploader, error) {
	switch {
	case cfg.S3.Enabled:
		return NewS3(ctx, cfg.S3, logger)
	case cfg.GCS.Enabled:
		return NewGCS(ctx, cfg.GCS, logger)
	default:
		return NoopUploader{}, nil
	}
}

func objectKey(prefix, key string) string {
	if prefix = strings.Trim(prefix, "/"); prefix == "" {
		return key
	}
	return prefix + "/" + key
}

func closeWithErr(closer io.Closer, name string) {
	if err := closer.Close(); err != nil {
		zap.L().Warn("close failed", zap.String("name", name), zap.Error(err))
	}
}
