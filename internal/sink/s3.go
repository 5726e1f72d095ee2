package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/maltedev/shopify-product-importer/internal/models"
)

const csvContentType = "text/csv"

// S3PutAPI is the part of *s3.Client the sink needs.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket    string
	Region    string
	KeyPrefix string
	Endpoint  string
}

type S3Sink struct {
	client    S3PutAPI
	bucket    string
	keyPrefix string
}

// NewS3Sink loads AWS credentials from the default chain.
func NewS3Sink(ctx context.Context, opts S3Options) (*S3Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3SinkWithClient(client, opts.Bucket, opts.KeyPrefix), nil
}

func NewS3SinkWithClient(client S3PutAPI, bucket, keyPrefix string) *S3Sink {
	return &S3Sink{
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (s *S3Sink) Put(ctx context.Context, prefix string, batch models.Batch) (string, error) {
	if len(batch.Data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrEmptyBatch, batch.Filename)
	}

	key := s.objectKey(prefix, batch.Filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(batch.Data),
		ContentType: aws.String(csvContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload batch %s to s3: %w", batch.Label, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *S3Sink) objectKey(prefix, filename string) string {
	return path.Join(cleanPrefix(s.keyPrefix), cleanPrefix(prefix), filename)
}
