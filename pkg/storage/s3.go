package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by S3Storage.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores documents in an S3 bucket.
type S3Storage struct {
	client        S3API
	bucket        string
	publicBaseURL string
}

// NewS3Client loads the default AWS configuration for region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// NewS3Storage builds an S3 backed store. When publicBaseURL is empty the
// virtual-hosted bucket URL is used.
func NewS3Storage(client S3API, bucket, region, publicBaseURL string) (*S3Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	base := strings.TrimRight(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Storage{client: client, bucket: bucket, publicBaseURL: base}, nil
}

// Upload puts data under key and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, data []byte, progress ProgressFunc) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key required")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          newProgressReader(data, progress),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + escapeKey(key), nil
}
