package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NoteController struct {
	NoteService *service.NoteService
}

func NewNoteController(noteService *service.NoteService) *NoteController {
	return &NoteController{NoteService: noteService}
}

type notesRequest struct {
	Text string `json:"text"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (c *NoteController) GetNotes(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	util.Success(ctx, gin.H{"text": c.NoteService.Notes(ctx.Request.Context(), courseID, lessonID)})
}

// @Summary 保存课时笔记
// @Tags 笔记
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/lessons/{lessonId}/notes [put]
func (c *NoteController) SaveNotes(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	var req notesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	text, err := c.NoteService.SaveNotes(ctx.Request.Context(), courseID, lessonID, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"text": text})
}

func (c *NoteController) ClearNotes(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	if err := c.NoteService.ClearNotes(ctx.Request.Context(), courseID, lessonID); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *NoteController) GetComments(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	comments := c.NoteService.Comments(ctx.Request.Context(), courseID)
	util.Success(ctx, util.ListResponse{List: comments, Total: len(comments)})
}

// @Summary 发表评论
// @Tags 笔记
// @Accept json
// @Produce json
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/comments [post]
func (c *NoteController) PostComment(ctx *gin.Context) {
	courseID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrEmptyComment.Error())
		return
	}
	comment, err := c.NoteService.PostComment(ctx.Request.Context(), courseID, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}
