package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/service"
	"uni-portal/backend/pkg/response"
)

// SyncHandler 课表同步 HTTP 处理器
type SyncHandler struct {
	snapshotSvc service.SnapshotImporter
	catalogSvc  service.CatalogService
}

// NewSyncHandler 创建 SyncHandler
func NewSyncHandler(snapshotSvc service.SnapshotImporter, catalogSvc service.CatalogService) *SyncHandler {
	return &SyncHandler{snapshotSvc: snapshotSvc, catalogSvc: catalogSvc}
}

// ImportSnapshot 导入一次抓取快照
// POST /api/v1/admin/sync
func (h *SyncHandler) ImportSnapshot(c *gin.Context) {
	var snap dto.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "请求体过大")
			return
		}
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.snapshotSvc.Import(c.Request.Context(), &snap, callerID)
	if err != nil {
		h.handleSyncError(c, err, result)
		return
	}

	response.OK(c, result)
}

// ListRuns 同步运行记录
// GET /api/v1/admin/sync/runs?year=&term=&page=&page_size=
func (h *SyncHandler) ListRuns(c *gin.Context) {
	var req dto.SyncScopeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	runs, total, err := h.catalogSvc.ListSyncRuns(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, runs, total, req.GetPage(), req.GetPageSize())
}

// ListChanges 教师变更日志
// GET /api/v1/admin/sync/changes?year=&term=&page=&page_size=
func (h *SyncHandler) ListChanges(c *gin.Context) {
	var req dto.SyncScopeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	changes, total, err := h.catalogSvc.ListLecturerChanges(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, changes, total, req.GetPage(), req.GetPageSize())
}

func (h *SyncHandler) handleSyncError(c *gin.Context, err error, result *dto.ImportSnapshotResponse) {
	switch {
	case errors.Is(err, service.ErrSyncYearRequired), errors.Is(err, service.ErrSyncTermRequired):
		response.BadRequest(c, response.CodeScopeRequired, err.Error())
	case errors.Is(err, service.ErrSyncInProgress):
		response.Conflict(c, response.CodeSyncInProgress, err.Error())
	case errors.Is(err, service.ErrLecturerUnresolved):
		response.ErrorWithData(c, http.StatusInternalServerError, response.CodeSyncLecturerFail, "教师解析失败，本次同步已终止", result)
	case result != nil:
		response.ErrorWithData(c, http.StatusInternalServerError, response.CodeSyncFailed, "同步失败", result)
	default:
		response.InternalError(c)
	}
}
