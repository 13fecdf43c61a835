package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"uni-portal/backend/internal/model"
	pkgerrors "uni-portal/backend/pkg/errors"
)

// ClassRepository 教学班数据访问接口
type ClassRepository interface {
	// ListByTermAndYear 加载某 (学期, 学年) 下的全部班级，预加载当前教师
	ListByTermAndYear(ctx context.Context, termLabel, yearLabel string) ([]model.Class, error)
	// ListWithDetails 同上，额外预加载课程，供只读查询与导出使用
	ListWithDetails(ctx context.Context, termLabel, yearLabel string) ([]model.Class, error)
	// BatchCreate 单条 INSERT 批量创建班级
	BatchCreate(ctx context.Context, classes []model.Class) error
	// ReassignLecturers 在单个事务中批量改派教师并写入变更日志，全部成功或全部回滚
	ReassignLecturers(ctx context.Context, changes []model.ClassLecturerChange) error
}

// LecturerChangeRepository 教师变更日志数据访问接口
type LecturerChangeRepository interface {
	ListByTermAndYear(ctx context.Context, termLabel, yearLabel string, offset, limit int) ([]model.ClassLecturerChange, int64, error)
}

// ── Class Repository 实现 ──

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) ListByTermAndYear(ctx context.Context, termLabel, yearLabel string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Preload("Lecturer").
		Where("term_label = ? AND year_label = ?", termLabel, yearLabel).
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) ListWithDetails(ctx context.Context, termLabel, yearLabel string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Preload("Lecturer").
		Preload("Subject").
		Where("term_label = ? AND year_label = ?", termLabel, yearLabel).
		Order("external_class_id ASC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) BatchCreate(ctx context.Context, classes []model.Class) error {
	if len(classes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Subject", "Lecturer").Create(&classes).Error
}

func (r *classRepo) ReassignLecturers(ctx context.Context, changes []model.ClassLecturerChange) error {
	if len(changes) == 0 {
		return nil
	}
	txOpts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			// 以加载时的教师作为条件：期间被他人改动则整批回滚
			result := tx.Model(&model.Class{}).
				Where("class_id = ? AND lecturer_id = ?", c.ClassID, c.OldLecturerID).
				Update("lecturer_id", c.NewLecturerID)
			if result.Error != nil {
				return fmt.Errorf("改派班级 %s 教师失败: %w", c.ExternalClassID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("改派班级 %s 教师失败: %w", c.ExternalClassID, pkgerrors.ErrOptimisticLock)
			}
		}
		if err := tx.Create(&changes).Error; err != nil {
			return fmt.Errorf("写入教师变更日志失败: %w", err)
		}
		return nil
	}, txOpts)
}

// ── LecturerChange Repository 实现 ──

type lecturerChangeRepo struct {
	db *gorm.DB
}

// NewLecturerChangeRepo 创建 LecturerChangeRepository 实例
func NewLecturerChangeRepo(db *gorm.DB) LecturerChangeRepository {
	return &lecturerChangeRepo{db: db}
}

func (r *lecturerChangeRepo) ListByTermAndYear(ctx context.Context, termLabel, yearLabel string, offset, limit int) ([]model.ClassLecturerChange, int64, error) {
	var changes []model.ClassLecturerChange
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ClassLecturerChange{})
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
		Order("created_at DESC").
		Find(&changes).Error
	return changes, total, err
}
