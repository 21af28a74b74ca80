package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fitly/fitly/internal/common"
)

// Test seams for the AWS SDK plumbing.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// S3Options configure the S3-compatible driver (MinIO on self-hosted
// deployments).
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// S3Storage uploads through an S3-compatible endpoint. Buckets holding
// images are expected to allow anonymous reads, so the public URL is the
// path-style object URL.
type S3Storage struct {
	opts   S3Options
	client *s3.Client
}

// NewS3 builds the S3 driver. All four options are required.
func NewS3(ctx context.Context, opts S3Options) (*S3Storage, error) {
	if opts.Endpoint == "" || opts.Region == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, common.NewError(common.KindConfig, "incomplete s3 storage settings", nil)
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, common.NewError(common.KindConfig, "s3 configuration failed", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Storage{opts: opts, client: client}, nil
}

func (s *S3Storage) Upload(ctx context.Context, bucket, key string, payload []byte, opts UploadOptions) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	}
	if opts.ContentType != "" {
		in.ContentType = aws.String(opts.ContentType)
	}
	if !opts.Upsert {
		// Conditional write: a colliding key fails instead of overwriting.
		in.IfNoneMatch = aws.String("*")
	}

	if _, err := putObject(s.client, ctx, in); err != nil {
		return common.NewError(common.KindBackend, fmt.Sprintf("s3 upload of %s/%s failed", bucket, key), err)
	}
	return nil
}

func (s *S3Storage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.opts.Endpoint, "/"), bucket, key)
}
