package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"portfolio/internal/config"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossStorage struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSSStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("storage: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.StorageOSSBucket)
	if bucketName == "" {
		return nil, errors.New("storage: missing OSS bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageOSSAccessKeySecret)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}

	return &ossStorage{
		bucket: bucket,
		prefix: trimPrefix(cfg.StorageOSSPrefix),
	}, nil
}

func (s *ossStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if err := checkPayload(ctx, data); err != nil {
		return "", err
	}

	key, err := remoteObjectKey(s.prefix, opts)
	if err != nil {
		return "", err
	}

	options := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(detectContentType(opts.Extension)),
	}
	if err := s.bucket.PutObject(key, bytes.NewReader(data), options...); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	return key, nil
}

// Delete removes the object; OSS treats missing keys as deleted.
func (s *ossStorage) Delete(ctx context.Context, key string) error {
	cleaned, err := remoteDeleteKey(s.prefix, key)
	if err != nil {
		return err
	}
	if err := s.bucket.DeleteObject(cleaned, oss.WithContext(ctx)); err != nil {
		var svcErr oss.ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == 404 {
			return nil
		}
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *ossStorage) Check(ctx context.Context) error {
	if _, err := s.bucket.Client.GetBucketInfo(s.bucket.BucketName, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("get bucket info: %w", err)
	}
	return nil
}

var _ Storage = (*ossStorage)(nil)
var _ Checker = (*ossStorage)(nil)
