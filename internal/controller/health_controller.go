package controller

import (
	"errors"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/storage"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Backend storage.Backend
	Key     string
}

func NewHealthController(backend storage.Backend, key string) *HealthController {
	return &HealthController{Backend: backend, Key: key}
}

// @Summary 健康检查
// @Description 检查存储后端是否可读
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 文档尚未写入也视为正常
	_, err := c.Backend.Get(ctx.Request.Context(), c.Key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		util.Error(ctx, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"storage": c.Backend.Name(),
		},
	})
}
