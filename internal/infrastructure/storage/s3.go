package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/jiwar-sa/analytics-service/internal/application/analytics"
	appconfig "github.com/jiwar-sa/analytics-service/internal/config"
)

// S3Store keeps one JSON document per blob key in an S3-compatible bucket
// (MinIO/R2). It implements the analytics.BlobStore port.
type S3Store struct {
	client *s3.Client
	bucket string
	log    zerolog.Logger
}

// NewS3Store creates the blob store client configured for MinIO or R2.
func NewS3Store(cfg *appconfig.Config, log zerolog.Logger) (*S3Store, error) {
	var optFns []func(*config.LoadOptions) error
	optFns = append(optFns,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
	)
	if cfg.S3Endpoint != "" {
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3Endpoint,
				HostnameImmutable: true,
			}, nil
		})
		optFns = append(optFns, config.WithEndpointResolverWithOptions(customResolver))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		log:    log,
	}, nil
}

// EnsureBucket creates the analytics bucket if it doesn't exist.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}
	s.log.Info().Str("bucket", s.bucket).Msg("creating bucket")
	_, createErr := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if createErr != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, createErr)
	}
	return nil
}

// List returns one page of keys under prefix. cursor is the continuation
// token from the previous page, empty for the first.
func (s *S3Store) List(ctx context.Context, prefix, cursor string, limit int) (analytics.ListPage, error) {
	in := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(limit)),
	}
	if cursor != "" {
		in.ContinuationToken = aws.String(cursor)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return analytics.ListPage{}, fmt.Errorf("failed to list prefix %s: %w", prefix, err)
	}

	page := analytics.ListPage{
		Blobs:   make([]analytics.BlobInfo, 0, len(out.Contents)),
		Cursor:  aws.ToString(out.NextContinuationToken),
		HasMore: aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		uploadedAt := time.Time{}
		if obj.LastModified != nil {
			uploadedAt = *obj.LastModified
		}
		page.Blobs = append(page.Blobs, analytics.BlobInfo{
			Key:        aws.ToString(obj.Key),
			Size:       aws.ToInt64(obj.Size),
			UploadedAt: uploadedAt,
		})
	}
	return page, nil
}

// Get retrieves one document body.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return body, nil
}

// Put writes one JSON document, replacing any prior body under the key.
func (s *S3Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Stops at the first failing key.
func (s *S3Store) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete object %s: %w", key, err)
		}
	}
	return nil
}
