package storage

import (
	"context"
	"errors"
	"fmt"
	"portfolio/internal/config"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3TargetFromConfig(t *testing.T) {
	cfg := config.Config{
		StorageS3Bucket:          "shots",
		StorageS3Region:          "eu-west-1",
		StorageS3Prefix:          "/portfolio/",
		StorageS3Endpoint:        "minio.local:9000/",
		StorageS3AccessKeyID:     "ak",
		StorageS3SecretAccessKey: "sk",
		StorageS3ForcePathStyle:  true,
	}

	target, err := s3TargetFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "shots", target.bucket)
	assert.Equal(t, "portfolio", target.prefix)
	assert.Equal(t, "https://minio.local:9000", target.client.Endpoint)
	assert.True(t, target.client.ForcePathStyle)

	store, err := NewS3Storage(cfg)
	require.NoError(t, err)
	_, ok := store.(Checker)
	assert.True(t, ok)

	missing := cfg
	missing.StorageS3Region = ""
	_, err = s3TargetFromConfig(missing)
	assert.Error(t, err)

	missing = cfg
	missing.StorageS3SecretAccessKey = " "
	_, err = NewS3Storage(missing)
	assert.Error(t, err)
}

func TestR2TargetFromConfig(t *testing.T) {
	cfg := config.Config{
		StorageR2AccountID:       "acc123",
		StorageR2Bucket:          "shots",
		StorageR2AccessKeyID:     "ak",
		StorageR2SecretAccessKey: "sk",
	}

	target, err := r2TargetFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://acc123.r2.cloudflarestorage.com", target.client.Endpoint)
	assert.Equal(t, "auto", target.client.Region)
	assert.True(t, target.client.ForcePathStyle)

	cfg.StorageR2Endpoint = "http://localhost:8787"
	target, err = r2TargetFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8787", target.client.Endpoint)

	cfg.StorageR2Endpoint = ""
	cfg.StorageR2AccountID = ""
	_, err = r2TargetFromConfig(cfg)
	assert.Error(t, err)
}

func TestRemoteKeys(t *testing.T) {
	key, err := remoteObjectKey("portfolio", SaveOptions{Dir: "7", BaseName: "abc", Extension: "PNG"})
	require.NoError(t, err)
	assert.Equal(t, "portfolio/7/abc.png", key)

	key, err = remoteObjectKey("", SaveOptions{Dir: "7", BaseName: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "7/abc", key)

	// Save 返回的键已带前缀，不重复添加
	cleaned, err := remoteDeleteKey("portfolio", "portfolio/7/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "portfolio/7/abc.png", cleaned)

	cleaned, err = remoteDeleteKey("portfolio", "/7/abc.png")
	require.NoError(t, err)
	assert.Equal(t, "portfolio/7/abc.png", cleaned)

	_, err = remoteDeleteKey("portfolio", "../etc/passwd")
	assert.Error(t, err)
}

func TestCheckPayload(t *testing.T) {
	assert.Error(t, checkPayload(context.Background(), nil))
	assert.NoError(t, checkPayload(context.Background(), []byte("x")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, checkPayload(ctx, []byte("x")), context.Canceled)
}

func TestIsS3NotFound(t *testing.T) {
	assert.False(t, isS3NotFound(nil))
	assert.True(t, isS3NotFound(&smithy.GenericAPIError{Code: "NoSuchKey"}))
	assert.True(t, isS3NotFound(fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "NotFound"})))
	assert.False(t, isS3NotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isS3NotFound(errors.New("timeout")))
}

func TestRemoteConstructorsValidate(t *testing.T) {
	_, err := NewOSSStorage(config.Config{StorageOSSBucket: "b"})
	assert.Error(t, err)

	_, err = NewCOSStorage(config.Config{StorageCOSBucketURL: "https://b-123.cos.ap-shanghai.myqcloud.com"})
	assert.Error(t, err)

	store, err := NewCOSStorage(config.Config{
		StorageCOSBucketURL: "https://b-123.cos.ap-shanghai.myqcloud.com",
		StorageCOSSecretID:  "id",
		StorageCOSSecretKey: "key",
		StorageCOSPrefix:    "shots",
	})
	require.NoError(t, err)
	_, ok := store.(Checker)
	assert.True(t, ok)
}
