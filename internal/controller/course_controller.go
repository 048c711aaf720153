package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService   *service.CourseService
	ProgressService *service.ProgressService
}

func NewCourseController(courseService *service.CourseService, progressService *service.ProgressService) *CourseController {
	return &CourseController{CourseService: courseService, ProgressService: progressService}
}

type courseQuery struct {
	model.CourseFilters
	Query string             `form:"q"`
	Sort  repository.SortKey `form:"sort"`
}

// @Summary 课程列表
// @Description 按关键字、分类、难度、标签与进度筛选课程
// @Tags 课程
// @Produce json
// @Param q query string false "关键字"
// @Param sort query string false "newest/oldest/title/progress"
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	var q courseQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	views := c.CourseService.List(ctx.Request.Context(), q.Query, q.CourseFilters, q.Sort)
	util.Success(ctx, util.ListResponse{List: views, Total: len(views)})
}

// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	detail, err := c.CourseService.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Param course body model.CourseInput true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req model.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.Create(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Param course body model.CoursePatch true "需要修改的字段"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req model.CoursePatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.Update(ctx.Request.Context(), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 删除课程
// @Description 同时删除课程的进度、笔记与评论
// @Tags 课程
// @Param id path int true "课程ID"
// @Success 204
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *CourseController) DuplicateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Duplicate(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// ExportCourse 以附件形式下载单个课程
func (c *CourseController) ExportCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	file, err := c.CourseService.ExportCourse(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	sendAttachment(ctx, file)
}

func (c *CourseController) ResetProgress(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.ResetProgress(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary 课程统计
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/stats [get]
func (c *CourseController) GetCourseStats(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	stats, err := c.ProgressService.CourseStatistics(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 添加课时
// @Tags 课时
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Param lesson body model.LessonInput true "课时信息"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/lessons [post]
func (c *CourseController) AddLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req model.LessonInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.AddLesson(ctx.Request.Context(), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	var req model.LessonPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.UpdateLesson(ctx.Request.Context(), id, lessonID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteLesson(ctx.Request.Context(), id, lessonID); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

type reorderRequest struct {
	Index     int                      `json:"index" binding:"gte=0"`
	Direction repository.MoveDirection `json:"direction" binding:"required,oneof=up down"`
}

// @Summary 调整课时顺序
// @Description 与相邻课时交换位置
// @Tags 课时
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/lesson-order [post]
func (c *CourseController) ReorderLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lessons, err := c.CourseService.ReorderLesson(ctx.Request.Context(), id, req.Index, req.Direction)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

func (c *CourseController) AddResource(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req model.ResourceInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	res, err := c.CourseService.AddResource(ctx.Request.Context(), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

func (c *CourseController) DeleteResource(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resourceID, ok := pathID(ctx, "resourceId")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteResource(ctx.Request.Context(), id, resourceID); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// @Summary 标签列表
// @Tags 课程
// @Produce json
// @Param popular query bool false "按使用次数返回热门标签"
// @Param limit query int false "热门标签数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/tags [get]
func (c *CourseController) GetTags(ctx *gin.Context) {
	if ctx.Query("popular") == "true" {
		limit := util.ParseIntDefault(ctx.Query("limit"), util.DefaultPopularTagsLimit)
		util.Success(ctx, c.CourseService.PopularTags(ctx.Request.Context(), limit))
		return
	}
	util.Success(ctx, c.CourseService.Tags(ctx.Request.Context()))
}

func (c *CourseController) GetCategories(ctx *gin.Context) {
	util.Success(ctx, c.CourseService.Categories(ctx.Request.Context()))
}
