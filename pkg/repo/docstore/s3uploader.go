package docstore

import (
	"bytes"
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Uploader implements S3Uploader against a real AWS S3 bucket, used when
// SNAPSHOT_S3_BUCKET is configured.
type s3Uploader struct {
	client *s3.Client
}

// NewS3Uploader loads the default AWS config (env/shared-config/IMDS
// credential chain) and returns an S3Uploader backed by it.
func NewS3Uploader(ctx context.Context) (S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3Uploader{client: s3.NewFromConfig(cfg)}, nil
}

// Upload puts data at bucket/key.
func (u *s3Uploader) Upload(ctx context.Context, bucket, key string, data []byte) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot to s3: %w", err)
	}

	return nil
}
