package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/orgdeskhq/orgdesk/internal/config"
)

// S3DocumentRepository implements domain.DocumentRepository against any
// S3-compatible store (MinIO, SeaweedFS, AWS)
type S3DocumentRepository struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3DocumentRepository creates a new document repository
func NewS3DocumentRepository(ctx context.Context, cfg appConfig.S3Config) (*S3DocumentRepository, error) {
	// Static credentials "any"/"any": self-hosted S3-compatible stores still
	// require a signature even when auth is disabled
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("any", "any", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for most S3-compatible stores
	})

	repo := &S3DocumentRepository{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.Endpoint,
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// Upload saves a verification document and returns its URL
func (r *S3DocumentRepository) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", r.publicURL, r.bucket, filename)
	return url, nil
}

// ensureBucket checks if bucket exists, creating it if necessary
func (r *S3DocumentRepository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})

	if err != nil {
		_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(r.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
		}
	}
	return nil
}
