package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/service"
	"uni-portal/backend/pkg/response"
)

// CatalogHandler 课表只读查询 HTTP 处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListTerms 学期列表
// GET /api/v1/terms
func (h *CatalogHandler) ListTerms(c *gin.Context) {
	terms, err := h.catalogSvc.ListTerms(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": terms})
}

// ListYears 学年列表
// GET /api/v1/years
func (h *CatalogHandler) ListYears(c *gin.Context) {
	years, err := h.catalogSvc.ListYears(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": years})
}

// ListMajors 专业列表
// GET /api/v1/majors
func (h *CatalogHandler) ListMajors(c *gin.Context) {
	majors, err := h.catalogSvc.ListMajors(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": majors})
}

// ListClasses 某学年学期的班级列表
// GET /api/v1/classes?year=2024-2025&term=1
func (h *CatalogHandler) ListClasses(c *gin.Context) {
	var req dto.ClassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeScopeRequired, "year 与 term 不能为空")
		return
	}

	classes, err := h.catalogSvc.ListClasses(c.Request.Context(), req.Year, req.Term)
	if err != nil {
		handleScopeError(c, err)
		return
	}
	response.OK(c, gin.H{"list": classes})
}

// handleScopeError 作用域参数错误映射为 400，其余 500
func handleScopeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSyncYearRequired), errors.Is(err, service.ErrSyncTermRequired):
		response.BadRequest(c, response.CodeScopeRequired, err.Error())
	default:
		response.InternalError(c)
	}
}
