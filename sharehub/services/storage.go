package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// StorageService stores listing images in an S3 bucket and hands back
// publicly retrievable URLs.
type StorageService struct {
	client *s3.Client
	bucket string
	region string
	root   string
}

func NewStorageService(key, secret, region, bucket, root string) *StorageService {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load storage config: %v", err))
	}

	client := s3.NewFromConfig(cfg)

	if root == "" {
		root = "listings"
	}

	return &StorageService{
		client: client,
		bucket: bucket,
		region: region,
		root:   strings.Trim(root, "/"),
	}
}

// UploadListingImage stores the image under a fresh uuid key and returns its
// public URL. The original filename only contributes its extension.
func (s *StorageService) UploadListingImage(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", s.root, uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

// DeleteImage removes a previously uploaded image given its public URL.
// URLs outside this service's bucket are ignored.
func (s *StorageService) DeleteImage(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

func (s *StorageService) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *StorageService) keyFromURL(url string) (string, bool) {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func (s *StorageService) GetBucket() string {
	return s.bucket
}
