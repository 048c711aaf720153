package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

type goalRequest struct {
	Target int `json:"target" binding:"required"`
}

type themeRequest struct {
	Theme model.Theme `json:"theme" binding:"required"`
}

// @Summary 获取仪表盘数据
// @Description 统计、最近学习、今日目标、成就与热门标签
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	dashboard, err := c.DashboardService.GetDashboard(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}

// @Summary 今日学习目标
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/goal [get]
func (c *DashboardController) GetDailyGoal(ctx *gin.Context) {
	goal, err := c.DashboardService.DailyGoal(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

func (c *DashboardController) SetDailyGoal(ctx *gin.Context) {
	var req goalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	goal, err := c.DashboardService.SetDailyGoalTarget(ctx.Request.Context(), req.Target)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

func (c *DashboardController) MarkGoalProgress(ctx *gin.Context) {
	goal, err := c.DashboardService.MarkGoalProgress(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

// GetStudyChart 最近 N 天每日学习分钟数
func (c *DashboardController) GetStudyChart(ctx *gin.Context) {
	days := util.ParseIntDefault(ctx.Query("days"), util.DefaultStudyChartDays)
	util.Success(ctx, c.DashboardService.StudyChart(ctx.Request.Context(), days))
}

func (c *DashboardController) GetMyCoursesStats(ctx *gin.Context) {
	util.Success(ctx, c.DashboardService.MyCoursesStats(ctx.Request.Context()))
}

func (c *DashboardController) GetTheme(ctx *gin.Context) {
	util.Success(ctx, gin.H{"theme": c.DashboardService.Theme(ctx.Request.Context())})
}

func (c *DashboardController) ToggleTheme(ctx *gin.Context) {
	theme, err := c.DashboardService.ToggleTheme(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"theme": theme})
}

func (c *DashboardController) SetTheme(ctx *gin.Context) {
	var req themeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	theme, err := c.DashboardService.SetTheme(ctx.Request.Context(), req.Theme)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"theme": theme})
}
