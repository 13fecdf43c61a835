package repository

import (
	"context"

	"gorm.io/gorm"

	"uni-portal/backend/internal/model"
)

// SyncRunRepository 同步运行记录数据访问接口
type SyncRunRepository interface {
	Create(ctx context.Context, run *model.SyncRun) error
	List(ctx context.Context, termLabel, yearLabel string, offset, limit int) ([]model.SyncRun, int64, error)
}

type syncRunRepo struct {
	db *gorm.DB
}

// NewSyncRunRepo 创建 SyncRunRepository 实例
func NewSyncRunRepo(db *gorm.DB) SyncRunRepository {
	return &syncRunRepo{db: db}
}

func (r *syncRunRepo) Create(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *syncRunRepo) List(ctx context.Context, termLabel, yearLabel string, offset, limit int) ([]model.SyncRun, int64, error) {
	var runs []model.SyncRun
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SyncRun{})
	if termLabel != "" {
		db = db.Where("term_label = ?", termLabel)
	}
	if yearLabel != "" {
		db = db.Where("year_label = ?", yearLabel)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("started_at DESC").
		Find(&runs).Error
	return runs, total, err
}
