package drivers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 stores blobs in an S3-compatible bucket.
type S3 struct {
	Client        *s3.Client
	PresignClient *s3.PresignClient
	Bucket        string
	BaseURL       string // Optional: base URL when the bucket is public
}

func NewS3(client *s3.Client, bucket string, baseURL string) *S3 {
	return &S3{
		Client:        client,
		PresignClient: s3.NewPresignClient(client),
		Bucket:        bucket,
		BaseURL:       baseURL,
	}
}

func (d *S3) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := d.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (d *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := d.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get from S3: %w", err)
	}
	return resp.Body, nil
}

func (d *S3) Remove(ctx context.Context, key string) error {
	_, err := d.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (d *S3) PublicURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if d.BaseURL != "" {
		return fmt.Sprintf("%s/%s", d.BaseURL, key), nil
	}

	// Fallback to presigned URL
	if expires == 0 {
		expires = time.Hour
	}

	presignedReq, err := d.PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))

	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return presignedReq.URL, nil
}
