package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"learnhub_backend/internal/config"
	"net/http"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSS 阿里云对象存储，SDK 不支持 context，仅在调用前检查取消
type OSS struct {
	bucket *oss.Bucket
}

func NewOSS(cfg *config.StorageConfig) (*OSS, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSS{bucket: bucket}, nil
}

func (o *OSS) Name() string { return "oss" }

func (o *OSS) object(key string) string { return key + ".json" }

func (o *OSS) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := o.bucket.GetObject(o.object(key))
	if err != nil {
		var se oss.ServiceError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (o *OSS) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.bucket.PutObject(o.object(key), bytes.NewReader(value), oss.ContentType("application/json"))
}

func (o *OSS) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return o.bucket.DeleteObject(o.object(key))
}

func (o *OSS) Close() error { return nil }
