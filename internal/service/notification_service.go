package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/event"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/storage"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notification 短暂显示的提示消息，不持久化
type Notification struct {
	ID        string                 `json:"id"`
	Kind      model.NotificationKind `json:"kind"`
	Message   string                 `json:"message"`
	CreatedAt time.Time              `json:"createdAt"`
	ExpiresAt time.Time              `json:"expiresAt"`
}

// NotificationService 保存未过期的通知，并可选推送到 AMQP
type NotificationService struct {
	Publisher event.Publisher
	Now       func() time.Time

	mu           sync.Mutex
	items        []Notification
	dismissAfter time.Duration
}

func NewNotificationService(dismissAfter time.Duration, publisher event.Publisher) *NotificationService {
	if dismissAfter <= 0 {
		dismissAfter = 5 * time.Second
	}
	return &NotificationService{
		Publisher:    publisher,
		Now:          time.Now,
		dismissAfter: dismissAfter,
	}
}

// SetDismissAfter 配置热更新时调整显示时长
func (s *NotificationService) SetDismissAfter(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.dismissAfter = d
	s.mu.Unlock()
}

// Notify 记录一条通知；推送失败只记日志
func (s *NotificationService) Notify(ctx context.Context, kind model.NotificationKind, message string) Notification {
	if !kind.Valid() {
		kind = model.NotifyInfo
	}
	now := s.Now()

	s.mu.Lock()
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(s.dismissAfter),
	}
	s.items = append(s.pruneLocked(now), n)
	s.mu.Unlock()

	fields := []zap.Field{zap.String("kind", string(kind)), zap.String("message", message)}
	if kind == model.NotifyError {
		logger.Log.Warn("Notification", fields...)
	} else {
		logger.Log.Info("Notification", fields...)
	}

	if s.Publisher != nil {
		err := s.Publisher.PublishNotification(ctx, event.Notification{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
		if err != nil {
			logger.Log.Warn("Failed to publish notification", zap.Error(err))
		}
	}
	return n
}

func (s *NotificationService) Success(ctx context.Context, message string) Notification {
	return s.Notify(ctx, model.NotifySuccess, message)
}

func (s *NotificationService) Error(ctx context.Context, message string) Notification {
	return s.Notify(ctx, model.NotifyError, message)
}

func (s *NotificationService) Warning(ctx context.Context, message string) Notification {
	return s.Notify(ctx, model.NotifyWarning, message)
}

func (s *NotificationService) Info(ctx context.Context, message string) Notification {
	return s.Notify(ctx, model.NotifyInfo, message)
}

// Active 未过期的通知，按时间先后
func (s *NotificationService) Active() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.pruneLocked(s.Now())
	return append([]Notification{}, s.items...)
}

// Dismiss 提前关闭通知
func (s *NotificationService) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *NotificationService) pruneLocked(now time.Time) []Notification {
	live := s.items[:0]
	for _, n := range s.items {
		if now.Before(n.ExpiresAt) {
			live = append(live, n)
		}
	}
	return live
}

// notifyFailure 存储失败时发出错误通知，错误原样返回
func notifyFailure(ctx context.Context, n *NotificationService, err error) error {
	if err == nil || n == nil {
		return err
	}
	switch {
	case errors.Is(err, storage.ErrQuotaExceeded):
		n.Error(ctx, "Storage quota exceeded. Export your data and remove unused courses.")
	case errors.Is(err, util.ErrStorageFailure):
		n.Error(ctx, "Failed to save your data. Please try again.")
	}
	return err
}
