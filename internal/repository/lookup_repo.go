package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"uni-portal/backend/internal/model"
)

// LookupRepository 学期 / 学年等简单查找实体的数据访问接口
type LookupRepository interface {
	Exists(ctx context.Context, kind model.LookupKind, label string) (bool, error)
	Create(ctx context.Context, kind model.LookupKind, label string) error
	List(ctx context.Context, kind model.LookupKind) ([]string, error)
}

type lookupRepo struct {
	db *gorm.DB
}

// NewLookupRepo 创建 LookupRepository 实例
func NewLookupRepo(db *gorm.DB) LookupRepository {
	return &lookupRepo{db: db}
}

// lookupRow 按种类构造对应的模型
func lookupRow(kind model.LookupKind, label string) (interface{}, error) {
	switch kind {
	case model.LookupTerm:
		return &model.Term{Label: label}, nil
	case model.LookupAcademicYear:
		return &model.AcademicYear{Label: label}, nil
	default:
		return nil, fmt.Errorf("未知的查找实体种类: %q", kind)
	}
}

func (r *lookupRepo) Exists(ctx context.Context, kind model.LookupKind, label string) (bool, error) {
	row, err := lookupRow(kind, "")
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).
		Model(row).
		Where("label = ?", label).
		Count(&count).Error
	return count > 0, err
}

func (r *lookupRepo) Create(ctx context.Context, kind model.LookupKind, label string) error {
	row, err := lookupRow(kind, label)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *lookupRepo) List(ctx context.Context, kind model.LookupKind) ([]string, error) {
	row, err := lookupRow(kind, "")
	if err != nil {
		return nil, err
	}
	var labels []string
	err = r.db.WithContext(ctx).
		Model(row).
		Order("label DESC").
		Pluck("label", &labels).Error
	return labels, err
}
