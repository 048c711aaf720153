package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 完成课时
// @Description 重复提交不会重复奖励经验
// @Tags 学习进度
// @Produce json
// @Param id path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/lessons/{lessonId}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	res, err := c.ProgressService.MarkLessonComplete(ctx.Request.Context(), courseID, lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

type lastAccessedRequest struct {
	LessonIndex int `json:"lessonIndex" binding:"gte=0"`
}

func (c *ProgressController) SaveLastAccessed(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req lastAccessedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.ProgressService.SaveLastAccessed(ctx.Request.Context(), courseID, req.LessonIndex); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *ProgressController) GetCompletedLessons(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	util.Success(ctx, c.ProgressService.CompletedLessons(ctx.Request.Context(), courseID))
}

// @Summary 最近学习
// @Tags 学习进度
// @Produce json
// @Param limit query int false "数量" default(3)
// @Success 200 {object} util.Response
// @Router /api/progress/recent [get]
func (c *ProgressController) GetRecentProgress(ctx *gin.Context) {
	limit := util.ParseIntDefault(ctx.Query("limit"), util.DefaultRecentProgressLimit)
	util.Success(ctx, c.ProgressService.RecentProgress(ctx.Request.Context(), limit))
}

// @Summary 学习统计
// @Tags 学习进度
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/progress/stats [get]
func (c *ProgressController) GetStats(ctx *gin.Context) {
	util.Success(ctx, c.ProgressService.AggregateStats(ctx.Request.Context()))
}

// GetDailyStudyTime 查询某天的学习秒数，默认今天
func (c *ProgressController) GetDailyStudyTime(ctx *gin.Context) {
	day := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(util.DateFormat, raw, time.Local)
		if err != nil {
			util.BadRequest(ctx, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	util.Success(ctx, gin.H{
		"date":    day.Format(util.DateFormat),
		"seconds": c.ProgressService.DailyStudyTime(ctx.Request.Context(), day),
	})
}
