package storage

import (
	"context"
	"fmt"
	"sync"
)

// Memory 进程内存储，可设置总容量上限（模拟浏览器 localStorage 配额）
type Memory struct {
	mu    sync.RWMutex
	data  map[string][]byte
	limit int64
	used  int64
}

func NewMemory(limit int64) *Memory {
	return &Memory{data: map[string][]byte{}, limit: limit}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + int64(len(key)+len(value))
	if old, ok := m.data[key]; ok {
		used -= int64(len(key) + len(old))
	}
	if m.limit > 0 && used > m.limit {
		return fmt.Errorf("%w: %d of %d bytes", ErrQuotaExceeded, used, m.limit)
	}

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	m.used = used
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= int64(len(key) + len(old))
		delete(m.data, key)
	}
	return nil
}

func (m *Memory) Close() error { return nil }
