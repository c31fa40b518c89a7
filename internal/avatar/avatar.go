// Package avatar stores user profile pictures in S3-compatible storage.
package avatar

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const maxUploadBytes = 5 << 20

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Service uploads and deletes avatar images. Disabled when no bucket is
// configured; Enabled reports whether uploads will work.
type Service struct {
	cfg    Config
	client s3Client
}

// NewService creates an avatar service. With an empty bucket or credentials
// the service is created disabled rather than failing.
func NewService(cfg Config) *Service {
	s := &Service{cfg: cfg}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		s.client = newS3Client(cfg)
	}
	return s
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether avatar storage is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Upload stores an avatar image for a user and returns its public URL and
// object key. The filename only contributes its extension; the key itself is
// always fresh so stale CDN caches never show the old picture.
func (s *Service) Upload(ctx context.Context, userID int64, filename string, body io.Reader) (url, key string, err error) {
	if s.client == nil {
		return "", "", fmt.Errorf("avatar storage not configured")
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := contentTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("unsupported avatar type %q", ext)
	}

	key = fmt.Sprintf("users/%d/avatar-%s%s", userID, uuid.NewString(), ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        io.LimitReader(body, maxUploadBytes),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("upload avatar: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), key), key, nil
}

// Delete removes a previously uploaded avatar object. A blank key is a no-op.
func (s *Service) Delete(ctx context.Context, key string) error {
	if s.client == nil || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete avatar: %w", err)
	}
	return nil
}
