package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mindplate/backend/config"
)

// ReportService archives evaluation reports to S3.
type ReportService struct {
	s3 *config.S3Config
}

func NewReportService(s3cfg *config.S3Config) *ReportService {
	return &ReportService{s3: s3cfg}
}

// Archive uploads a JSON report under the given key.
func (s *ReportService) Archive(ctx context.Context, key string, report interface{}) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return nil
}
