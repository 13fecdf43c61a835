package repository

import (
	"context"

	"gorm.io/gorm"

	"uni-portal/backend/internal/model"
)

// MajorRepository 专业数据访问接口
type MajorRepository interface {
	GetByName(ctx context.Context, name string) (*model.Major, error)
	Create(ctx context.Context, major *model.Major) error
	List(ctx context.Context) ([]model.Major, error)
}

// SubjectRepository 课程数据访问接口
type SubjectRepository interface {
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	Create(ctx context.Context, subject *model.Subject) error
}

// ── Major Repository 实现 ──

type majorRepo struct {
	db *gorm.DB
}

// NewMajorRepo 创建 MajorRepository 实例
func NewMajorRepo(db *gorm.DB) MajorRepository {
	return &majorRepo{db: db}
}

func (r *majorRepo) GetByName(ctx context.Context, name string) (*model.Major, error) {
	var major model.Major
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&major).Error
	if err != nil {
		return nil, err
	}
	return &major, nil
}

func (r *majorRepo) Create(ctx context.Context, major *model.Major) error {
	return r.db.WithContext(ctx).Create(major).Error
}

func (r *majorRepo) List(ctx context.Context) ([]model.Major, error) {
	var majors []model.Major
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&majors).Error
	return majors, err
}

// ── Subject Repository 实现 ──

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}
