package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"keypad-cracker/config"
)

// GCSUploader uploads reports to Google Cloud Storage.
type GCSUploader struct {
	cfg    config.GCSConfig
	client *storage.Client
	logger *zap.Logger
}

func NewGCS(ctx context.Context, cfg config.GCSConfig, logger *zap.Logger) (*GCSUploader, error) {
	if !cfg.Enabled {
		return &GCSUploader{cfg: cfg, logger: logger}, nil
	}
	opts := []option.ClientOption{}
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create gcs client")
	}
	return &GCSUploader{cfg: cfg, client: client, logger: logger}, nil
}

func (u *GCSUploader) Enabled() bool {
	return u.cfg.Enabled
}

func (u *GCSUploader) UploadFile(ctx context.Context, path, key string) (string, error) {
	if !u.cfg.Enabled {
		return "", nil
	}
	if u.client == nil {
		return "", errors.New("gcs uploader is not initialized")
	}
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s for upload", path)
	}
	defer closeWithErr(file, "gcs upload file")

	objKey := objectKey(u.cfg.Prefix, key)
	writer := u.client.Bucket(u.cfg.Bucket).Object(objKey).NewWriter(ctx)
	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		return "", errors.Wrapf(err, "upload %s", objKey)
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrapf(err, "finish %s", objKey)
	}
	location := fmt.Sprintf("gs://%s/%s", u.cfg.Bucket, objKey)
	u.logger.Info("report uploaded", zap.String("location", location))
	return location, nil
}

func (u *GCSUploader) Close() error {
	if u.client == nil {
		return nil
	}
	return errors.Wrap(u.client.Close(), "close gcs client")
}
