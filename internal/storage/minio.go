package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minPartSize is the smallest multipart chunk S3-compatible stores accept.
const minPartSize = 5 * 1024 * 1024

// MinioTransport stores blobs in any S3-compatible backend (MinIO,
// ArvanCloud, AWS S3). Blob.Container is the bucket and Blob.Name the key.
type MinioTransport struct {
	client *minio.Client
}

// NewMinioTransport creates a MinIO client. Like the Azure transport it does
// not check that buckets exist.
func NewMinioTransport(endpoint, accessKey, secretKey string, useSSL bool) (*MinioTransport, error) {
	if endpoint == "" {
		return nil, &ConfigurationError{Field: "endpoint", Err: errors.New("endpoint is required")}
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, &ConfigurationError{Field: "endpoint", Err: fmt.Errorf("create minio client: %w", err)}
	}
	return &MinioTransport{client: client}, nil
}

// Put uploads data under b.Name. Chunks below the S3 minimum part size are
// raised to it.
func (s *MinioTransport) Put(ctx context.Context, b Blob, data []byte, opts PutOptions) error {
	partSize := uint64(opts.BlockSize)
	if partSize < minPartSize {
		partSize = minPartSize
	}
	threads := uint(DefaultConcurrency)
	if opts.Concurrency > 0 {
		threads = uint(opts.Concurrency)
	}
	_, err := s.client.PutObject(ctx, b.Container, b.Name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: opts.ContentType,
		PartSize:    partSize,
		NumThreads:  threads,
	})
	if err != nil {
		return minioErr("put object", b, err)
	}
	return nil
}

// Remove deletes the object at b.Name. S3 treats deleting a missing key as
// success, so the object is checked first.
func (s *MinioTransport) Remove(ctx context.Context, b Blob) error {
	if _, err := s.client.StatObject(ctx, b.Container, b.Name, minio.StatObjectOptions{}); err != nil {
		return minioErr("stat object", b, err)
	}
	if err := s.client.RemoveObject(ctx, b.Container, b.Name, minio.RemoveObjectOptions{}); err != nil {
		return minioErr("remove object", b, err)
	}
	return nil
}

func minioErr(op string, b Blob, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
		return fmt.Errorf("%s %q: %w: %w", op, b.Name, ErrBlobNotFound, err)
	}
	return fmt.Errorf("%s %q: %w", op, b.Name, err)
}

var _ Transport = (*MinioTransport)(nil)
