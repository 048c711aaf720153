package controller

import (
	"fmt"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type DataController struct {
	DataService *service.DataService
}

func NewDataController(dataService *service.DataService) *DataController {
	return &DataController{DataService: dataService}
}

func sendAttachment(ctx *gin.Context, file *service.ExportFile) {
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	ctx.Data(http.StatusOK, util.MimeJSON, file.Data)
}

// @Summary 导出全部数据
// @Tags 数据
// @Produce json
// @Success 200 {file} file
// @Router /api/data/export [get]
func (c *DataController) Export(ctx *gin.Context) {
	file, err := c.DataService.Export(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	sendAttachment(ctx, file)
}

// @Summary 导出学习进度
// @Tags 数据
// @Produce json
// @Success 200 {file} file
// @Router /api/data/export/progress [get]
func (c *DataController) ExportProgress(ctx *gin.Context) {
	file, err := c.DataService.ExportProgress(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	sendAttachment(ctx, file)
}

// @Summary 导入备份
// @Description 接受 multipart 上传的 .json 文件或直接提交的 JSON 文档
// @Tags 数据
// @Accept multipart/form-data,json
// @Produce json
// @Param file formData file false "备份文件"
// @Success 200 {object} util.Response
// @Router /api/data/import [post]
func (c *DataController) Import(ctx *gin.Context) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		fh, ferr := ctx.FormFile("file")
		if ferr != nil {
			util.BadRequest(ctx, "Please select a file")
			return
		}
		data, err = util.ReadJSONUpload(fh)
	} else {
		data, err = util.ReadLimited(ctx.Request.Body, util.MaxImportBytes)
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := c.DataService.Import(ctx.Request.Context(), data); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"imported": true})
}

// @Summary 清空全部数据
// @Tags 数据
// @Success 204
// @Router /api/data [delete]
func (c *DataController) Clear(ctx *gin.Context) {
	if err := c.DataService.Clear(ctx.Request.Context()); err != nil {
		respondError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *DataController) Integrity(ctx *gin.Context) {
	util.Success(ctx, c.DataService.CheckIntegrity(ctx.Request.Context()))
}
