package objectstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/voicedesk/internal/app/system/objectstore"
	"github.com/dalemusser/voicedesk/internal/app/system/urlcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newS3(t *testing.T) *objectstore.S3 {
	t.Helper()
	s, err := objectstore.NewS3(context.Background(), objectstore.Config{
		Region:          "ap-south-1",
		Bucket:          "voicedesk-logos",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Expiry:          10 * time.Minute,
	})
	require.NoError(t, err)
	return s
}

func TestS3_PresignPut(t *testing.T) {
	s := newS3(t)
	u, err := s.PresignPut(context.Background(), "businessLogo/1_logo.png", "image/png")
	require.NoError(t, err)

	assert.Contains(t, u, "voicedesk-logos")
	assert.Contains(t, u, "businessLogo/1_logo.png")
	assert.Contains(t, u, "X-Amz-Signature=")
	assert.Contains(t, u, "X-Amz-Expires=600")
}

func TestS3_CustomEndpointUsesPathStyle(t *testing.T) {
	s, err := objectstore.NewS3(context.Background(), objectstore.Config{
		Region:          "us-east-1",
		Bucket:          "logos",
		Endpoint:        "http://minio.local:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
	})
	require.NoError(t, err)

	u, err := s.PresignGet(context.Background(), "a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://minio.local:9000/logos/a.png"), u)
	assert.Equal(t, 15*time.Minute, s.Expiry())
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := objectstore.NewS3(context.Background(), objectstore.Config{Region: "us-east-1"})
	assert.Error(t, err)
}

type countingPresigner struct {
	objectstore.Disabled
	gets int
}

func (c *countingPresigner) PresignGet(_ context.Context, key string) (string, error) {
	c.gets++
	return "https://signed/" + key, nil
}

func TestCached_ReusesURL(t *testing.T) {
	inner := &countingPresigner{}
	p := objectstore.WithCache(inner, urlcache.NewMemory(time.Minute), time.Minute)

	for i := 0; i < 3; i++ {
		u, err := p.PresignGet(context.Background(), "logo.png")
		require.NoError(t, err)
		assert.Equal(t, "https://signed/logo.png", u)
	}
	assert.Equal(t, 1, inner.gets)

	_, err := p.PresignPut(context.Background(), "x", "")
	assert.True(t, errors.Is(err, objectstore.ErrNotConfigured))
}

func TestLogoKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	tests := []struct {
		in, want string
	}{
		{"logo.png", "businessLogo/1700000000123_logo.png"},
		{" ../../etc/logo.png ", "businessLogo/1700000000123_logo.png"},
		{`C:\Users\me\logo.png`, "businessLogo/1700000000123_logo.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, objectstore.LogoKey(now, tt.in), tt.in)
	}
}
