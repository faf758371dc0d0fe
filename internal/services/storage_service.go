// internal/services/storage_service.go
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/flypig-ai/flypig-backend/internal/config"
)

// StorageService archives submitted product images and generated exports to
// S3. Without AWS credentials it degrades to a no-op so local development
// does not need a bucket.
type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

type ArchiveResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		return &StorageService{cfg: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

// NewDisabledStorageService returns a no-op service for deployments without
// object storage.
func NewDisabledStorageService(cfg *config.Config) *StorageService {
	return &StorageService{cfg: cfg}
}

// Enabled reports whether an S3 client is configured.
func (s *StorageService) Enabled() bool {
	return s != nil && s.s3Client != nil
}

// ArchiveProductImage stores an uploaded product image submitted with an
// analysis request.
func (s *StorageService) ArchiveProductImage(b64, mimeType string) (*ArchiveResult, error) {
	if !s.Enabled() {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("invalid image payload: %w", err)
	}

	key := fmt.Sprintf("product-images/%s/%s%s",
		time.Now().UTC().Format("2006/01/02"), uuid.New().String(), extensionFor(mimeType))
	return s.put(key, data, mimeType)
}

// ArchiveUsersCsv stores one generated admin export.
func (s *StorageService) ArchiveUsersCsv(csvData string) (*ArchiveResult, error) {
	if !s.Enabled() {
		return nil, nil
	}

	key := fmt.Sprintf("exports/users-%s.csv", time.Now().UTC().Format("20060102-150405"))
	return s.put(key, []byte(csvData), "text/csv")
}

func (s *StorageService) put(key string, data []byte, contentType string) (*ArchiveResult, error) {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &ArchiveResult{
		URL: s.objectURL(key),
		Key: key,
	}, nil
}

func (s *StorageService) objectURL(key string) string {
	if s.cfg.AWS.CloudFrontURL != "" {
		return strings.TrimRight(s.cfg.AWS.CloudFrontURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AWS.S3Bucket, s.cfg.AWS.Region, key)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
