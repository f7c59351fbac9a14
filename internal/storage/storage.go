// Package storage wraps an S3-compatible object store (MinIO in local
// deployments) behind presigned URLs. Study material bytes never pass
// through the API service; clients upload and download directly.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const signingRegion = "us-east-1"

// Service defines the interface for object storage operations
type Service interface {
	// PresignUpload creates a time-limited URL for uploading an object
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// PresignDownload creates a time-limited URL for downloading an object
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Remove deletes an object from the bucket
	Remove(ctx context.Context, key string) error

	// Health checks that the bucket is reachable
	Health(ctx context.Context) error
}

// Config holds object storage connection settings
type Config struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
}

// LoadConfig reads storage settings from S3_* environment variables
func LoadConfig() (Config, error) {
	cfg := Config{
		Endpoint:       os.Getenv("S3_ENDPOINT"),
		PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
		AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		SecretKey:      os.Getenv("S3_SECRET_KEY"),
		Bucket:         os.Getenv("S3_BUCKET_NAME"),
		UseSSL:         os.Getenv("S3_USE_SSL") == "true",
	}

	if cfg.Endpoint == "" {
		return cfg, fmt.Errorf("S3_ENDPOINT environment variable is required")
	}
	if cfg.AccessKey == "" {
		return cfg, fmt.Errorf("S3_ACCESS_KEY environment variable is required")
	}
	if cfg.SecretKey == "" {
		return cfg, fmt.Errorf("S3_SECRET_KEY environment variable is required")
	}
	if cfg.Bucket == "" {
		return cfg, fmt.Errorf("S3_BUCKET_NAME environment variable is required")
	}

	// Presigned URLs must carry a host the browser can reach, which in
	// containerized setups differs from the in-cluster endpoint
	if cfg.PublicEndpoint == "" {
		cfg.PublicEndpoint = cfg.Endpoint
	}

	return cfg, nil
}

type service struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    *slog.Logger
}

// New creates a storage service and ensures the bucket exists
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Service, error) {
	client, err := newClient(ctx, cfg, cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	// Sign against the public endpoint so the URLs work outside the cluster
	publicClient := client
	if cfg.PublicEndpoint != cfg.Endpoint {
		publicClient, err = newClient(ctx, cfg, cfg.PublicEndpoint)
		if err != nil {
			return nil, err
		}
	}

	s := &service{
		client:    client,
		presigner: s3.NewPresignClient(publicClient),
		bucket:    cfg.Bucket,
		logger:    logger,
	}

	if err := s.ensureBucket(ctx); err != nil {
		logger.Warn("Failed to ensure bucket exists", "bucket", cfg.Bucket, "error", err.Error())
	}

	return s, nil
}

func newClient(ctx context.Context, cfg Config, endpoint string) (*s3.Client, error) {
	protocol := "http"
	if cfg.UseSSL {
		protocol = "https"
	}
	endpointURL := fmt.Sprintf("%s://%s", protocol, endpoint)

	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               endpointURL,
				SigningRegion:     signingRegion,
				HostnameImmutable: true,
			}, nil
		},
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(signingRegion),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	// Path-style addressing, required for MinIO
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

func (s *service) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.logger.Info("Created storage bucket", "bucket", s.bucket)
	return nil
}

// PresignUpload creates a presigned PUT URL for the given object key
func (s *service) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}
	if contentType == "" {
		return "", fmt.Errorf("content type cannot be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("TTL must be positive")
	}

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}

	return request.URL, nil
}

// PresignDownload creates a presigned GET URL for the given object key
func (s *service) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("TTL must be positive")
	}

	request, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}

	return request.URL, nil
}

// Remove deletes an object from the bucket
func (s *service) Remove(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("object key cannot be empty")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}

// Health checks that the bucket is reachable
func (s *service) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}
