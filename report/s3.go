package report

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"keypad-cracker/config"
)

// S3Uploader uploads reports to S3-compatible storage.
type S3Uploader struct {
	cfg    config.S3Config
	client *s3.Client
	logger *zap.Logger
}

// NewS3 loads the AWS configuration. Static credentials are used when both
// keys are configured, otherwise the default provider chain applies.
func NewS3(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3Uploader, error) {
	if !cfg.Enabled {
		return &S3Uploader{cfg: cfg, logger: logger}, nil
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws configuration")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Uploader{cfg: cfg, client: client, logger: logger}, nil
}

func (u *S3Uploader) Enabled() bool {
	return u.cfg.Enabled
}

// UploadFile puts the file at path under the configured prefix.
func (u *S3Uploader) UploadFile(ctx context.Context, path, key string) (string, error) {
	if !u.cfg.Enabled {
		return "", nil
	}
	if u.client == nil {
		return "", errors.New("s3 uploader is not initialized")
	}
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s for upload", path)
	}
	defer closeWithErr(file, "s3 upload file")

	info, err := file.Stat()
	if err != nil {
		return "", errors.Wrapf(err, "stat %s", path)
	}
	objKey := objectKey(u.cfg.Prefix, key)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(objKey),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", objKey)
	}
	location := fmt.Sprintf("s3://%s/%s", u.cfg.Bucket, objKey)
	u.logger.Info("report uploaded", zap.String("location", location))
	return location, nil
}

// Close is a no-op; the S3 client holds no resources that need releasing.
func (u *S3Uploader) Close() error {
	return nil
}
