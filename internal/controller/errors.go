package controller

import (
	"errors"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/storage"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 将服务层错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrResourceNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCourse),
		errors.Is(err, util.ErrInvalidLesson),
		errors.Is(err, util.ErrInvalidResource),
		errors.Is(err, util.ErrInvalidTag),
		errors.Is(err, util.ErrTooManyTags),
		errors.Is(err, util.ErrInvalidImport),
		errors.Is(err, util.ErrEmptyComment),
		errors.Is(err, util.ErrInvalidGoal),
		errors.Is(err, util.ErrInvalidTheme),
		errors.Is(err, util.ErrInvalidAchievement),
		errors.Is(err, util.ErrInvalidDirection),
		errors.Is(err, util.ErrMoveOutOfBounds):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrTimerNotRunning):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrQuotaExceeded):
		util.InsufficientStorage(ctx, "Storage quota exceeded")
	case errors.Is(err, util.ErrStorageFailure):
		util.Error(ctx, http.StatusServiceUnavailable, "Storage unavailable")
	default:
		util.LogInternalError(ctx, err)
	}
}

// pathID 解析路径中的 ID，失败时直接返回 400
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.BadRequest(ctx, "Invalid "+name)
		return 0, false
	}
	return id, true
}
