// Package objectstore issues presigned S3 URLs for client uploads and reads.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dalemusser/voicedesk/internal/app/system/urlcache"
)

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("object storage is not configured")

// Presigner issues time-limited URLs for objects.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
	PresignPut(ctx context.Context, key, contentType string) (string, error)
}

// Config describes the bucket. Endpoint is only needed for S3-compatible
// services; static keys fall back to the default AWS credential chain.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Expiry          time.Duration
}

// S3 presigns against one bucket.
type S3 struct {
	bucket  string
	expiry  time.Duration
	presign *s3.PresignClient
}

// NewS3 builds the client. No network calls are made.
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3{bucket: cfg.Bucket, expiry: expiry, presign: s3.NewPresignClient(client)}, nil
}

func (s *S3) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	req, err := s.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

// Expiry is how long issued URLs stay valid.
func (s *S3) Expiry() time.Duration { return s.expiry }

// Cached serves GET URLs from a cache for part of their lifetime.
type Cached struct {
	Presigner
	cache urlcache.Cache
	ttl   time.Duration
}

// WithCache wraps p. ttl should be shorter than the URL expiry.
func WithCache(p Presigner, c urlcache.Cache, ttl time.Duration) *Cached {
	return &Cached{Presigner: p, cache: c, ttl: ttl}
}

func (c *Cached) PresignGet(ctx context.Context, key string) (string, error) {
	if u, ok := c.cache.Get(ctx, "get:"+key); ok {
		return u, nil
	}
	u, err := c.Presigner.PresignGet(ctx, key)
	if err != nil {
		return "", err
	}
	c.cache.Set(ctx, "get:"+key, u, c.ttl)
	return u, nil
}

// Disabled fails every call with ErrNotConfigured.
type Disabled struct{}

func (Disabled) PresignGet(context.Context, string) (string, error) { return "", ErrNotConfigured }

func (Disabled) PresignPut(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

// LogoKey is the object key for an uploaded business logo. Directory parts
// of fileName are dropped.
func LogoKey(now time.Time, fileName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	return fmt.Sprintf("businessLogo/%d_%s", now.UnixMilli(), name)
}
