package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the configuration for S3 storage.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: AWS access key ID
	SecretAccessKey string // Optional: AWS secret access key
}

// S3Storage implements the Storage interface on an S3 bucket. Archived
// media is addressed by its public object URL.
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
}

// Compile-time check that S3Storage implements Storage.
var _ Storage = (*S3Storage)(nil)

// NewS3Storage creates a new S3Storage instance.
func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	var configOpts []func(*config.LoadOptions) error
	configOpts = append(configOpts, config.WithRegion(cfg.Region))

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// Save uploads the media to S3 and returns the object URL.
func (s *S3Storage) Save(ctx context.Context, name string, data io.Reader) (string, error) {
	key := sanitizeName(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   data,
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	return url, nil
}

// Open reads an archived object back. The location must be an object URL
// produced by Save.
func (s *S3Storage) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	key, err := s.keyFromLocation(location)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download from S3: %w", err)
	}
	return out.Body, nil
}

// Remove deletes archived objects, continuing past individual failures.
func (s *S3Storage) Remove(ctx context.Context, locations []string) error {
	var firstErr error
	for _, loc := range locations {
		key, err := s.keyFromLocation(loc)
		if err == nil {
			_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			})
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", loc, err)
		}
	}
	return firstErr
}

// keyFromLocation extracts the object key from an object URL produced by
// Save.
func (s *S3Storage) keyFromLocation(location string) (string, error) {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	if len(location) <= len(prefix) || location[:len(prefix)] != prefix {
		return "", fmt.Errorf("location %q is not in bucket %s", location, s.bucket)
	}
	return location[len(prefix):], nil
}
