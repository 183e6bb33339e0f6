// Package storage keeps raw webhook bodies in object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/chidoskyi/ecommerce-app-sub001/internal/domain/payment"
	infraconfig "github.com/chidoskyi/ecommerce-app-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3WebhookArchive implements WebhookArchive
var _ payment.WebhookArchive = (*S3WebhookArchive)(nil)

// S3WebhookArchive stores webhook bodies in an S3 bucket.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type S3WebhookArchive struct {
	client *s3.Client
	bucket string
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// S3WebhookArchiveOption is a functional option for configuring S3WebhookArchive
type S3WebhookArchiveOption func(*S3WebhookArchive)

// WithLogger sets a custom logger for S3WebhookArchive
func WithLogger(logger *zap.Logger) S3WebhookArchiveOption {
	return func(s *S3WebhookArchive) {
		s.logger = logger
	}
}

// WithClock overrides the time used to build object keys
func WithClock(now func() time.Time) S3WebhookArchiveOption {
	return func(s *S3WebhookArchive) {
		s.now = now
	}
}

// NewS3WebhookArchive creates a new S3WebhookArchive from configuration
func NewS3WebhookArchive(cfg *infraconfig.StorageConfig, opts ...S3WebhookArchiveOption) (*S3WebhookArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3WebhookArchive{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3WebhookArchive) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating webhook archive bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Another instance won the race
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads a raw webhook body and returns its object key
func (s *S3WebhookArchive) Archive(ctx context.Context, provider payment.ProviderName, reference string, body []byte) (string, error) {
	key, err := ObjectKey(s.prefix, provider, reference, body, s.now())
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"provider":  provider.String(),
			"reference": reference,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload webhook body: %w", err)
	}

	s.logger.Debug("Webhook body archived", zap.String("bucket", s.bucket), zap.String("key", key))
	return key, nil
}

// GetBucket returns the bucket name
func (s *S3WebhookArchive) GetBucket() string {
	return s.bucket
}

// ObjectKey builds the storage key of a webhook body:
// <prefix>/<provider>/<yyyy>/<mm>/<dd>/<reference>-<body hash prefix>.json
// Redeliveries of the same body share a key.
func ObjectKey(prefix string, provider payment.ProviderName, reference string, body []byte, at time.Time) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", errors.New("reference is required")
	}
	reference = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(reference)
	hash := payment.HashBody(body)[:12]
	return path.Join(prefix, provider.String(), at.UTC().Format("2006/01/02"), reference+"-"+hash+".json"), nil
}
