package minio

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"postbridge/pkg/logger"
)

type Client struct {
	MinioClient *minio.Client
}

func New(cfg ClientConfig) (*Client, error) {
	logger.Info("connecting to minio", "endpoint", cfg.Endpoint)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:           credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:          cfg.Secure,
		TrailingHeaders: true,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		MinioClient: client,
	}, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.MinioClient.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	logger.Info("creating minio bucket", "bucket", bucket)

	return c.MinioClient.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
