package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GamificationController struct {
	GamificationService *service.GamificationService
	Timer               *service.StudyTimer
}

func NewGamificationController(gamificationService *service.GamificationService, timer *service.StudyTimer) *GamificationController {
	return &GamificationController{GamificationService: gamificationService, Timer: timer}
}

type addXPRequest struct {
	Points int `json:"points" binding:"required,gt=0,max=1000000"`
}

type studySessionRequest struct {
	CourseID int64 `json:"courseId"`
	LessonID int64 `json:"lessonId"`
	Seconds  int   `json:"seconds" binding:"required,gt=0"`
}

type timerStopRequest struct {
	CourseID int64 `json:"courseId"`
	LessonID int64 `json:"lessonId"`
}

type unlockRequest struct {
	Title  string                `json:"title" binding:"required"`
	Type   model.AchievementType `json:"type" binding:"required,oneof=level-up streak course-complete first-lesson note-taker quick-learner study-marathon first-course social"`
	Reward int                   `json:"reward" binding:"gte=0,max=1000000"`
}

// @Summary 用户等级信息
// @Tags 成长
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/profile [get]
func (c *GamificationController) GetProfile(ctx *gin.Context) {
	util.Success(ctx, c.GamificationService.Profile(ctx.Request.Context()))
}

func (c *GamificationController) AddXP(ctx *gin.Context) {
	var req addXPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.GamificationService.AddXP(ctx.Request.Context(), req.Points)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// @Summary 每日签到
// @Description 更新连续学习天数，同一天重复调用无效果
// @Tags 成长
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/streak/check-in [post]
func (c *GamificationController) CheckIn(ctx *gin.Context) {
	streak, err := c.GamificationService.UpdateStreak(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"streak": streak})
}

func (c *GamificationController) GetAchievements(ctx *gin.Context) {
	list := c.GamificationService.Achievements(ctx.Request.Context())
	util.Success(ctx, util.ListResponse{List: list, Total: len(list)})
}

func (c *GamificationController) UnlockAchievement(ctx *gin.Context) {
	var req unlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	unlocked, err := c.GamificationService.UnlockAchievement(ctx.Request.Context(), req.Title, req.Type, req.Reward)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"unlocked": unlocked})
}

// @Summary 记录学习时长
// @Tags 成长
// @Accept json
// @Produce json
// @Success 201 {object} util.Response
// @Router /api/study-sessions [post]
func (c *GamificationController) RecordStudySession(ctx *gin.Context) {
	var req studySessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.GamificationService.RecordStudySession(ctx.Request.Context(), req.CourseID, req.LessonID, req.Seconds)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

func (c *GamificationController) GetStudySessions(ctx *gin.Context) {
	limit := util.ParseIntDefault(ctx.Query("limit"), util.DefaultRecentSessionsLimit)
	sessions := c.GamificationService.RecentStudySessions(ctx.Request.Context(), limit)
	util.Success(ctx, util.ListResponse{List: sessions, Total: len(sessions)})
}

func (c *GamificationController) TimerStatus(ctx *gin.Context) {
	util.Success(ctx, c.Timer.Status())
}

func (c *GamificationController) StartTimer(ctx *gin.Context) {
	util.Success(ctx, c.Timer.Start())
}

func (c *GamificationController) PauseTimer(ctx *gin.Context) {
	util.Success(ctx, c.Timer.Pause())
}

// StopTimer 停止计时并记入学习记录，请求体可省略
func (c *GamificationController) StopTimer(ctx *gin.Context) {
	var req timerStopRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	session, err := c.Timer.Stop(ctx.Request.Context(), req.CourseID, req.LessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}
