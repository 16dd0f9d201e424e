package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
)

const presignExpiry = 5 * time.Minute

// ErrBucketNotConfigured is returned when no S3 bucket name was provided
var ErrBucketNotConfigured = errors.New("s3 bucket not configured")

// S3Service issues presigned URLs for profile pictures
type S3Service struct {
	Presigner *s3.PresignClient
	Bucket    string
}

// NewS3Service builds the presign client for the bucket
func NewS3Service(cfg aws.Config, bucket string) *S3Service {
	return &S3Service{
		Presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		Bucket:    bucket,
	}
}

// GenerateUploadURL generates a presigned URL for uploading a file
func (s *S3Service) GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error) {
	if s.Bucket == "" {
		return "", "", ErrBucketNotConfigured
	}
	key := "profile-pics/" + time.Now().Format("20060102150405") + "-" + fileName
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presigned, err := s.Presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return presigned.URL, key, nil
}

// GenerateReadURL generates a presigned URL for reading a file
func (s *S3Service) GenerateReadURL(ctx context.Context, key string) (string, error) {
	if s.Bucket == "" {
		return "", ErrBucketNotConfigured
	}
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	presigned, err := s.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign read for %s: %w", key, err)
	}
	return presigned.URL, nil
}

// ResolveAvatar turns a stored avatar reference into something a client can load.
// Absolute URLs pass through; object keys become presigned read URLs.
func (s *S3Service) ResolveAvatar(ctx context.Context, ref string) string {
	if ref == "" || IsAbsoluteURL(ref) {
		return ref
	}
	url, err := s.GenerateReadURL(ctx, ref)
	if err != nil {
		log.WithError(err).WithField("key", ref).Warn("⚠️ Falling back to raw avatar key")
		return ref
	}
	return url
}

func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
