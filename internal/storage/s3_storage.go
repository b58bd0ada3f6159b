package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/nexapay/nexapay-backend/config"
	"github.com/nexapay/nexapay-backend/pkg/logger"
)

// S3Storage archives verification documents fetched from the provider.
// Archived copies outlive the provider's retention window.
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Storage(cfg config.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// Static credentials when provided, otherwise the default chain
	// (environment, shared credentials file, IAM role).
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Bucket,
		baseURL: cfg.BaseURL,
	}
}

// ArchiveDocument stores one document under a per-applicant prefix and
// returns the object key.
func (s *S3Storage) ArchiveDocument(ctx context.Context, applicantID, documentID string, content []byte, contentType string) (string, error) {
	key := fmt.Sprintf("kyc-documents/%s/%s-%s", applicantID, documentID, uuid.New().String())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error("Failed to archive document to S3", err, map[string]interface{}{
			"applicant_id": applicantID,
			"document_id":  documentID,
		})
		return "", fmt.Errorf("failed to archive document: %w", err)
	}

	logger.Debug("Archived verification document", map[string]interface{}{
		"applicant_id": applicantID,
		"key":          key,
	})
	return key, nil
}

// PresignDownload issues a short-lived GET URL for a stored document.
func (s *S3Storage) PresignDownload(ctx context.Context, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

// ObjectURL returns the permanent URL of a stored object.
func (s *S3Storage) ObjectURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
