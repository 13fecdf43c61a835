package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uni-portal/backend/internal/model"
)

// LecturerRepository 教师数据访问接口
type LecturerRepository interface {
	// ListByNames 一次查询返回 name 在 names 中的全部教师
	ListByNames(ctx context.Context, names []string) ([]model.Lecturer, error)
	// BatchCreate 单条 INSERT 批量创建教师，已存在的姓名跳过，返回实际插入行数
	BatchCreate(ctx context.Context, lecturers []model.Lecturer) (int64, error)
}

type lecturerRepo struct {
	db *gorm.DB
}

// NewLecturerRepo 创建 LecturerRepository 实例
func NewLecturerRepo(db *gorm.DB) LecturerRepository {
	return &lecturerRepo{db: db}
}

func (r *lecturerRepo) ListByNames(ctx context.Context, names []string) ([]model.Lecturer, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var lecturers []model.Lecturer
	err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Find(&lecturers).Error
	return lecturers, err
}

func (r *lecturerRepo) BatchCreate(ctx context.Context, lecturers []model.Lecturer) (int64, error) {
	if len(lecturers) == 0 {
		return 0, nil
	}
	// 多行 INSERT 整体原子：任一姓名冲突会让整批失败，因此冲突行直接跳过
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&lecturers)
	return result.RowsAffected, result.Error
}
