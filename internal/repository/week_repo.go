package repository

import (
	"context"

	"gorm.io/gorm"

	"uni-portal/backend/internal/model"
)

// WeekRepository 教学周数据访问接口
type WeekRepository interface {
	GetByKey(ctx context.Context, weekValue int, termLabel, yearLabel string) (*model.Week, error)
	Create(ctx context.Context, week *model.Week) error
}

type weekRepo struct {
	db *gorm.DB
}

// NewWeekRepo 创建 WeekRepository 实例
func NewWeekRepo(db *gorm.DB) WeekRepository {
	return &weekRepo{db: db}
}

func (r *weekRepo) GetByKey(ctx context.Context, weekValue int, termLabel, yearLabel string) (*model.Week, error) {
	var week model.Week
	err := r.db.WithContext(ctx).
		Where("week_value = ? AND term_label = ? AND year_label = ?", weekValue, termLabel, yearLabel).
		First(&week).Error
	if err != nil {
		return nil, err
	}
	return &week, nil
}

func (r *weekRepo) Create(ctx context.Context, week *model.Week) error {
	return r.db.WithContext(ctx).Create(week).Error
}
