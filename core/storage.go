package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	// ErrUploadTooLarge is returned when an image exceeds the configured limit.
	ErrUploadTooLarge = errors.New("upload too large")
	// ErrUnsupportedUploadType is returned for content types other than JPEG/PNG/GIF/WebP.
	ErrUnsupportedUploadType = errors.New("unsupported upload type")
)

var allowedUploadTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// ValidateUpload checks the admin-screen upload rules before anything is
// sent to the bucket.
func ValidateUpload(size int64, contentType string, maxBytes int64) error {
	if size > maxBytes {
		return ErrUploadTooLarge
	}
	if _, ok := allowedUploadTypes[contentType]; !ok {
		return ErrUnsupportedUploadType
	}
	return nil
}

// Storage wraps the Cloudflare R2 bucket holding event and work images.
// R2 speaks the S3 API, so this is a plain S3 client pointed at the R2
// endpoint with region "auto".
type Storage struct {
	client       *s3.Client
	bucket       string
	cdnSubdomain string
}

// NewStorage builds the R2-backed storage client from process configuration.
func NewStorage(ctx context.Context, cfg Config) (*Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		// R2 uses virtual-hosted style, not path style.
		o.UsePathStyle = false
	})
	return &Storage{client: client, bucket: cfg.R2Bucket, cdnSubdomain: cfg.CDNSubdomain}, nil
}

// Upload stores body under key with the given content type.
func (s *Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

// Delete removes a single object.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// DeleteMany removes the given objects, continuing past failures and
// reporting them joined.
func (s *Storage) DeleteMany(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// URL returns the public CDN URL for a stored object.
func (s *Storage) URL(key string) string {
	return fmt.Sprintf("https://%s.anishare.net/%s", s.cdnSubdomain, key)
}

// ExtractKey recovers the object key from a previously generated URL.
// Invalid URLs yield "".
func ExtractKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
