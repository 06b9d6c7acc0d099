package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/freelawproject/wiki/pkg/content"
)

// S3BlobStore stores attachment bytes in Amazon S3 or any S3-compatible
// object store. Keys map one-to-one onto object keys under an optional
// prefix, so the bucket stays human-readable and inspectable.
type S3BlobStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// S3BlobStoreConfig contains configuration for the S3 blob store.
type S3BlobStoreConfig struct {
	// Client is the configured S3 client.
	Client *s3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	// Example: "attachments/" results in keys like "attachments/abc123".
	KeyPrefix string
}

// NewS3BlobStore creates an S3-backed blob store and verifies bucket
// access. The bucket is not created here.
func NewS3BlobStore(ctx context.Context, cfg S3BlobStoreConfig) (*S3BlobStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %s: %w", cfg.Bucket, err)
	}

	return &S3BlobStore{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *S3BlobStore) objectKey(key string) string {
	return s.keyPrefix + key
}

// Put uploads the blob under key.
func (s *S3BlobStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   r,
	})
	if err != nil {
		return &content.StoreError{Code: content.ErrIO, Message: "s3 put failed: " + err.Error(), Path: key}
	}
	return nil
}

// Get returns a reader for the blob under key.
func (s *S3BlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, &content.StoreError{Code: content.ErrNotFound, Message: "attachment blob not found", Path: key}
		}
		return nil, &content.StoreError{Code: content.ErrIO, Message: "s3 get failed: " + err.Error(), Path: key}
	}
	return out.Body, nil
}

// Delete removes the blob under key. S3 delete is idempotent, so a
// missing key succeeds.
func (s *S3BlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return &content.StoreError{Code: content.ErrIO, Message: "s3 delete failed: " + err.Error(), Path: key}
	}
	return nil
}

// Healthcheck verifies the bucket is still reachable.
func (s *S3BlobStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return &content.StoreError{Code: content.ErrIO, Message: "s3 healthcheck failed: " + err.Error()}
	}
	return nil
}
