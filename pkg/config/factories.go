package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/freelawproject/wiki/internal/logger"
	"github.com/freelawproject/wiki/pkg/attachment"
	attachmentFs "github.com/freelawproject/wiki/pkg/attachment/fs"
	attachmentMemory "github.com/freelawproject/wiki/pkg/attachment/memory"
	attachmentS3 "github.com/freelawproject/wiki/pkg/attachment/s3"
	"github.com/freelawproject/wiki/pkg/content"
	contentBadger "github.com/freelawproject/wiki/pkg/store/content/badger"
	contentMemory "github.com/freelawproject/wiki/pkg/store/content/memory"
)

// CreateContentStore creates a content store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/store/content/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/store/content/badger (BadgerDB storage, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Content store configuration
//
// Returns:
//   - content.Store: Initialized content store
//   - error: Configuration or initialization error
func CreateContentStore(ctx context.Context, cfg *StoreConfig) (content.Store, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return contentMemory.NewMemoryStore(), nil
	case "badger":
		return createBadgerContentStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown content store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createBadgerContentStore creates a BadgerDB-based persistent content store.
func createBadgerContentStore(ctx context.Context, options map[string]any) (content.Store, error) {
	type BadgerContentStoreOptions struct {
		DBPath           string `mapstructure:"db_path"`
		BlockCacheSizeMB int64  `mapstructure:"block_cache_size_mb"`
		IndexCacheSizeMB int64  `mapstructure:"index_cache_size_mb"`
	}

	var storeOpts BadgerContentStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger content store options: %w", err)
	}

	if storeOpts.DBPath == "" {
		return nil, fmt.Errorf("badger content store: db_path is required")
	}

	store, err := contentBadger.NewBadgerContentStore(ctx, contentBadger.BadgerContentStoreConfig{
		DBPath:           storeOpts.DBPath,
		BlockCacheSizeMB: storeOpts.BlockCacheSizeMB,
		IndexCacheSizeMB: storeOpts.IndexCacheSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger content store: %w", err)
	}

	return store, nil
}

// CreateBlobStore creates an attachment blob store based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/attachment/memory (ephemeral, for tests)
//   - "filesystem": Uses pkg/attachment/fs (local filesystem storage)
//   - "s3": Uses pkg/attachment/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Attachment blob store configuration
//
// Returns:
//   - attachment.BlobStore: Initialized blob store
//   - error: Configuration or initialization error
func CreateBlobStore(ctx context.Context, cfg *AttachmentsConfig) (attachment.BlobStore, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return attachmentMemory.NewMemoryBlobStore(), nil
	case "filesystem":
		return createFilesystemBlobStore(cfg.Filesystem)
	case "s3":
		return createS3BlobStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown attachment store type: %q (supported: memory, filesystem, s3)", cfg.Type)
	}
}

// createFilesystemBlobStore creates a filesystem-based blob store.
func createFilesystemBlobStore(options map[string]any) (attachment.BlobStore, error) {
	type FilesystemBlobStoreOptions struct {
		Path string `mapstructure:"path"`
	}

	var storeOpts FilesystemBlobStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem attachment store options: %w", err)
	}

	if storeOpts.Path == "" {
		return nil, fmt.Errorf("filesystem attachment store: path is required")
	}

	store, err := attachmentFs.NewFilesystemBlobStore(storeOpts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem attachment store: %w", err)
	}

	return store, nil
}

// createS3BlobStore creates an S3-based blob store.
func createS3BlobStore(ctx context.Context, options map[string]any) (attachment.BlobStore, error) {
	type S3BlobStoreOptions struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeOpts S3BlobStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 attachment store options: %w", err)
	}

	if storeOpts.Bucket == "" {
		return nil, fmt.Errorf("S3 attachment store: bucket is required")
	}
	if storeOpts.Region == "" {
		return nil, fmt.Errorf("S3 attachment store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(storeOpts.Region))

	// Custom endpoint support (MinIO, Localstack, etc.)
	if storeOpts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeOpts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain
	if storeOpts.AccessKeyID != "" && storeOpts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeOpts.AccessKeyID,
			storeOpts.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeOpts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for compatibility with MinIO/Localstack
		if storeOpts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := attachmentS3.NewS3BlobStore(ctx, attachmentS3.S3BlobStoreConfig{
		Client:    client,
		Bucket:    storeOpts.Bucket,
		KeyPrefix: storeOpts.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 attachment store: %w", err)
	}

	logger.Info("S3 attachment store initialized: bucket=%s, region=%s, prefix=%s",
		storeOpts.Bucket, storeOpts.Region, storeOpts.KeyPrefix)

	return store, nil
}
