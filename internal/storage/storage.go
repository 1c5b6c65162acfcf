// Package storage wraps the handful of S3 operations used by the s3ops tool.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by Client.
type S3API interface {
	manager.UploadAPIClient
	manager.DownloadAPIClient
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Client performs object storage operations.
type Client struct {
	api        S3API
	uploader   *manager.Uploader
	downloader *manager.Downloader
}

// New returns a Client backed by api. Large files are transferred in parts.
func New(api S3API) *Client {
	return &Client{
		api:        api,
		uploader:   manager.NewUploader(api),
		downloader: manager.NewDownloader(api),
	}
}

// ListBuckets returns the names of all the buckets owned by the caller.
func (c *Client) ListBuckets(ctx context.Context) ([]string, error) {
	var names []string

	paginator := s3.NewListBucketsPaginator(c.api, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		resp, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		for _, b := range resp.Buckets {
			names = append(names, aws.ToString(b.Name))
		}
	}

	return names, nil
}

// UploadFile uploads a local file to bucket under key.
func (c *Client) UploadFile(ctx context.Context, bucket, filePath, key string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", filePath, bucket, key, err)
	}
	return nil
}

// DownloadFile downloads an object to a local file. The object is written to
// a temporary file in the same directory and renamed once complete, so an
// existing file is left untouched on failure.
func (c *Client) DownloadFile(ctx context.Context, bucket, key, filePath string) (int64, error) {
	f, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	tmp := f.Name()

	n, err := c.downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}

	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("failed to move download to %s: %w", filePath, err)
	}

	return n, nil
}

// DeleteObject deletes an object from bucket.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}
