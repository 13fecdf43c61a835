package handler

import "uni-portal/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Catalog *CatalogHandler
	Sync    *SyncHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Catalog: NewCatalogHandler(svc.Catalog),
		Sync:    NewSyncHandler(svc.Snapshot, svc.Catalog),
		Export:  NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
