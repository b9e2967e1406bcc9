package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	s3Client *s3.Client
	bucket   string
	region   string
)

// InitStorage wires the export archive bucket. Archival stays disabled
// when no bucket is configured.
func InitStorage(bucketName, bucketRegion string) error {
	if bucketName == "" {
		return fmt.Errorf("export bucket name is required")
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(bucketRegion),
	)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	bucket = bucketName
	region = bucketRegion
	return nil
}

// Enabled reports whether archival was configured.
func Enabled() bool {
	return s3Client != nil
}

// ArchiveExport stores a generated export (CSV or JSON) under
// org/<id>/exports/ and returns its public URL.
func ArchiveExport(ctx context.Context, organizationID uint, kind string, body []byte, contentType string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("export archive storage is not initialized")
	}

	ext := "csv"
	if strings.Contains(contentType, "json") {
		ext = "json"
	}

	key := fmt.Sprintf("org/%d/exports/%s_%d_%s.%s",
		organizationID,
		kind,
		time.Now().Unix(),
		uuid.NewString()[:8],
		ext,
	)

	_, err := s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload export to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key), nil
}

// DeleteExport removes an archived export by its URL.
func DeleteExport(ctx context.Context, exportURL string) error {
	if s3Client == nil {
		return fmt.Errorf("export archive storage is not initialized")
	}

	parts := strings.Split(exportURL, "/")
	key := strings.Join(parts[3:], "/")

	_, err := s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})

	return err
}
