package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/service"
	"uni-portal/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportClasses 导出班级列表
// GET /api/v1/classes/export?year=2024-2025&term=1
func (h *ExportHandler) ExportClasses(c *gin.Context) {
	var req dto.ClassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeScopeRequired, "year 与 term 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportClasses(c.Request.Context(), req.Year, req.Term)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportNoClasses):
			response.NotFound(c, response.CodeExportEmpty, err.Error())
		default:
			handleScopeError(c, err)
		}
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
