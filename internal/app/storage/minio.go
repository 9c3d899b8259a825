package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"clientadmin/internal/app/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const reportPrefix = "reports/"

// MinIOClient keeps exported reports in one bucket.
type MinIOClient struct {
	client     *minio.Client
	bucketName string
	urlTTL     time.Duration
}

// NewMinIOClient connects and creates the bucket when it does not exist.
func NewMinIOClient(ctx context.Context, cfg config.MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logrus.Infof("Bucket %s created successfully", cfg.Bucket)
	}

	return &MinIOClient{
		client:     client,
		bucketName: cfg.Bucket,
		urlTTL:     time.Hour,
	}, nil
}

// UploadReport stores a report and returns its object name.
func (m *MinIOClient) UploadReport(ctx context.Context, filename, contentType string, data io.Reader, size int64) (string, error) {
	object := reportPrefix + filename
	_, err := m.client.PutObject(ctx, m.bucketName, object, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	logrus.Infof("Report %s uploaded successfully", object)
	return object, nil
}

// ReportURL returns a temporary download URL for a stored report.
func (m *MinIOClient) ReportURL(ctx context.Context, object string) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucketName, object, m.urlTTL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}
