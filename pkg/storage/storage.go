// Package storage 提供文档的键值存储介质。
// 每个键保存一份完整的 JSON 文档，所有实现都是整值覆盖写。
package storage

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/pkg/monitoring"
)

var (
	ErrNotFound      = errors.New("storage: key not found")
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Backend 文档存储介质
type Backend interface {
	Name() string
	// Get 键不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove 键不存在时不报错
	Remove(ctx context.Context, key string) error
	Close() error
}

// quotaBackend 限制单个键值的大小
type quotaBackend struct {
	Backend
	limit int64
}

// WithQuota limit<=0 时不做限制
func WithQuota(b Backend, limit int64) Backend {
	if limit <= 0 {
		return b
	}
	return &quotaBackend{Backend: b, limit: limit}
}

func (q *quotaBackend) Set(ctx context.Context, key string, value []byte) error {
	if size := int64(len(key) + len(value)); size > q.limit {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrQuotaExceeded, size, q.limit)
	}
	return q.Backend.Set(ctx, key, value)
}

// instrumented 记录 Prometheus 指标
type instrumented struct {
	Backend
}

func Instrument(b Backend) Backend {
	return &instrumented{Backend: b}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := i.Backend.Get(ctx, key)
	i.observe("get", err)
	return v, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	err := i.Backend.Set(ctx, key, value)
	i.observe("set", err)
	if err == nil {
		monitoring.DocumentSize.WithLabelValues(i.Name()).Observe(float64(len(value)))
	}
	return err
}

func (i *instrumented) Remove(ctx context.Context, key string) error {
	err := i.Backend.Remove(ctx, key)
	i.observe("remove", err)
	return err
}

func (i *instrumented) observe(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	monitoring.StoreOperations.WithLabelValues(i.Name(), op, result).Inc()
}
