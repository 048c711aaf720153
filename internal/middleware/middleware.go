package middleware

import (
	"context"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger 使用 zap 记录每个请求
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			logger.Log.Error("Request failed", fields...)
			return
		}
		logger.Log.Debug("Request", fields...)
	}
}

// Recovery 捕获 panic 并返回统一的 500 响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("Panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				util.InternalServerError(c)
				c.Abort()
			}
		}()
		c.Next()
	}
}

type StreakTracker interface {
	UpdateStreak(ctx context.Context) (int, error)
}

// ActivityMiddleware 每天第一次访问时更新连续学习天数
func ActivityMiddleware(tracker StreakTracker, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	var (
		mu      sync.Mutex
		lastDay string
	)
	return func(c *gin.Context) {
		today := now().Format(util.DateFormat)
		mu.Lock()
		due := today != lastDay
		if due {
			lastDay = today
		}
		mu.Unlock()

		if due {
			if _, err := tracker.UpdateStreak(c.Request.Context()); err != nil {
				logger.Log.Warn("Failed to update streak", zap.Error(err))
				// 下次请求重试
				mu.Lock()
				lastDay = ""
				mu.Unlock()
			}
		}
		c.Next()
	}
}
