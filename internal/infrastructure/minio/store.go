package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"

	"postbridge/internal/domain/repository/blob"
	"postbridge/pkg/digest"
)

const noSuchKey = "NoSuchKey"

// Store keeps one object per digest in a bucket. A PutObject either lands
// whole or not at all, so readers never see a partial blob.
type Store struct {
	minioClient *minio.Client
	cfg         StoreConfig
}

func NewStore(minioClient *minio.Client, cfg StoreConfig) *Store {
	return &Store{
		minioClient: minioClient,
		cfg:         cfg,
	}
}

func (s *Store) PathFor(d string) string {
	return fmt.Sprintf("%s/%s", s.cfg.Bucket, d)
}

func (s *Store) Exists(ctx context.Context, d string) (bool, error) {
	if !digest.Valid(d) {
		return false, fmt.Errorf("invalid digest %q", d)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.minioClient.StatObject(ctx, s.cfg.Bucket, d, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == noSuchKey {
			return false, nil
		}

		return false, fmt.Errorf("stat object: %w", err)
	}

	return true, nil
}

func (s *Store) Write(ctx context.Context, d string, data []byte) (bool, error) {
	exists, err := s.Exists(ctx, d)
	if err != nil {
		return false, err
	}

	if exists {
		return false, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.minioClient.PutObject(ctx, s.cfg.Bucket, d, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: mimetype.Detect(data).String(),
		})
	if err != nil {
		return false, fmt.Errorf("put object: %w", err)
	}

	return true, nil
}

func (s *Store) Read(ctx context.Context, d string) ([]byte, error) {
	if !digest.Valid(d) {
		return nil, fmt.Errorf("invalid digest %q", d)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	obj, err := s.minioClient.GetObject(ctx, s.cfg.Bucket, d, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == noSuchKey {
			return nil, fmt.Errorf("%w: %s", blob.ErrNotFound, d)
		}

		return nil, fmt.Errorf("read object: %w", err)
	}

	return data, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, time.Duration(s.cfg.Timeout)*time.Millisecond)
}
