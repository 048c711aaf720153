package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifier *service.NotificationService
}

func NewNotificationController(notifier *service.NotificationService) *NotificationController {
	return &NotificationController{Notifier: notifier}
}

// @Summary 未过期的通知
// @Tags 通知
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	items := c.Notifier.Active()
	util.Success(ctx, util.ListResponse{List: items, Total: len(items)})
}

func (c *NotificationController) Dismiss(ctx *gin.Context) {
	if !c.Notifier.Dismiss(ctx.Param("id")) {
		util.NotFound(ctx, "Notification not found")
		return
	}
	util.NoContent(ctx)
}
