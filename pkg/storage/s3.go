package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cardealer-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Storage stores catalog images in any S3-compatible bucket (AWS, R2, MinIO).
type S3Storage struct {
	client        *s3.Client
	bucketName    string
	publicURL     string
	uploadTimeout time.Duration
}

type S3Options struct {
	Endpoint      string // empty for AWS itself
	Region        string
	AccessKey     string
	SecretKey     string
	BucketName    string
	PublicURL     string
	UploadTimeout time.Duration
}

func NewS3Storage(ctx context.Context, opts S3Options) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
		config.WithRegion(opts.Region),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Storage{
		client:        client,
		bucketName:    opts.BucketName,
		publicURL:     strings.TrimSuffix(opts.PublicURL, "/"),
		uploadTimeout: opts.UploadTimeout,
	}, nil
}

// UploadBuffer uploads processed image bytes under folder and returns the public URL.
func (s *S3Storage) UploadBuffer(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
	key := objectKey(folder, contentType)

	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	_, err := s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to bucket: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// DeleteFile deletes an object by the public URL UploadBuffer returned.
func (s *S3Storage) DeleteFile(ctx context.Context, fileURL string) error {
	key, err := keyFromURL(s.publicURL, fileURL)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from bucket: %w", err)
	}
	return nil
}

func objectKey(folder, contentType string) string {
	ext := ".bin"
	switch contentType {
	case "image/webp":
		ext = ".webp"
	case "image/jpeg":
		ext = ".jpg"
	case "image/png":
		ext = ".png"
	}
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	return fmt.Sprintf("%s/%s%s", folder, utils.GenerateUUID(), ext)
}

// keyFromURL refuses URLs outside our public bucket URL.
func keyFromURL(publicURL, fileURL string) (string, error) {
	if publicURL == "" || !strings.HasPrefix(fileURL, publicURL+"/") {
		return "", errors.New("invalid file URL: domain mismatch")
	}
	key := strings.TrimPrefix(fileURL, publicURL+"/")
	if key == "" || strings.Contains(key, "..") {
		return "", errors.New("invalid file key derived from URL")
	}
	return key, nil
}
