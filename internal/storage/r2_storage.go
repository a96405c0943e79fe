package storage

import (
	"errors"
	"fmt"
	"portfolio/internal/config"
	"strings"
)

const r2EndpointTemplate = "https://%s.r2.cloudflarestorage.com"

// r2TargetFromConfig R2 走 S3 协议，强制 path-style，区域默认 auto
func r2TargetFromConfig(cfg config.Config) (s3Target, error) {
	bucket := strings.TrimSpace(cfg.StorageR2Bucket)
	if bucket == "" {
		return s3Target{}, errors.New("storage: missing R2 bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageR2AccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageR2SecretAccessKey)
	if accessKey == "" || secretKey == "" {
		return s3Target{}, errors.New("storage: missing R2 credentials")
	}

	endpoint := normalizeEndpoint(cfg.StorageR2Endpoint)
	if endpoint == "" {
		accountID := strings.TrimSpace(cfg.StorageR2AccountID)
		if accountID == "" {
			return s3Target{}, errors.New("storage: missing R2 endpoint or account id")
		}
		endpoint = fmt.Sprintf(r2EndpointTemplate, accountID)
	}

	region := strings.TrimSpace(cfg.StorageR2Region)
	if region == "" {
		region = "auto"
	}

	return s3Target{
		client: s3ClientOptions{
			Region:          region,
			Endpoint:        endpoint,
			AccessKeyID:     accessKey,
			SecretAccessKey: secretKey,
			ForcePathStyle:  true,
		},
		bucket: bucket,
		prefix: trimPrefix(cfg.StorageR2Prefix),
	}, nil
}

func NewR2Storage(cfg config.Config) (Storage, error) {
	target, err := r2TargetFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newRemoteS3Storage(target, "R2")
}
