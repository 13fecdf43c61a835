package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
	pkgerrors "uni-portal/backend/pkg/errors"
)

// ErrWeekScopeRequired 教学周缺少学期或学年
var ErrWeekScopeRequired = errors.New("教学周必须指定学期与学年")

// WeekImporter 教学周导入接口
// 教学周依赖学期与学年两个父实体，缺失时一并创建
type WeekImporter interface {
	EnsureWeek(ctx context.Context, rec dto.WeekRecord) (dto.ImportOutcome, error)
	EnsureWeeks(ctx context.Context, recs []dto.WeekRecord) *dto.ImportReport
}

type weekImporter struct {
	repo    *repository.Repository
	lookups LookupRegistrar
	logger  *zap.Logger
}

// NewWeekImporter 创建 WeekImporter 实例
func NewWeekImporter(repo *repository.Repository, lookups LookupRegistrar, logger *zap.Logger) WeekImporter {
	return &weekImporter{repo: repo, lookups: lookups, logger: logger}
}

func weekKey(rec dto.WeekRecord) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimSpace(rec.Year), strings.TrimSpace(rec.Term), rec.WeekValue)
}

func (s *weekImporter) EnsureWeek(ctx context.Context, rec dto.WeekRecord) (dto.ImportOutcome, error) {
	term := strings.TrimSpace(rec.Term)
	year := strings.TrimSpace(rec.Year)
	if term == "" || year == "" {
		return dto.OutcomeFailed, ErrWeekScopeRequired
	}

	// 1. 父实体：学期、学年（connect-or-create）
	if _, err := s.lookups.EnsureLookup(ctx, model.LookupTerm, term); err != nil {
		return dto.OutcomeFailed, fmt.Errorf("确保学期 %s 失败: %w", term, err)
	}
	if _, err := s.lookups.EnsureLookup(ctx, model.LookupAcademicYear, year); err != nil {
		return dto.OutcomeFailed, fmt.Errorf("确保学年 %s 失败: %w", year, err)
	}

	// 2. 按自然键查询
	_, err := s.repo.Week.GetByKey(ctx, rec.WeekValue, term, year)
	if err == nil {
		return dto.OutcomeAlreadyExists, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询教学周失败", zap.String("week", weekKey(rec)), zap.Error(err))
		return dto.OutcomeFailed, err
	}

	// 3. 不存在则创建
	week := &model.Week{
		WeekValue: rec.WeekValue,
		WeekName:  rec.DisplayName,
		TermLabel: term,
		YearLabel: year,
	}
	if err := s.repo.Week.Create(ctx, week); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			s.logger.Info("教学周已存在", zap.String("week", weekKey(rec)))
			return dto.OutcomeAlreadyExists, nil
		}
		s.logger.Error("创建教学周失败", zap.String("week", weekKey(rec)), zap.Error(err))
		return dto.OutcomeFailed, err
	}

	s.logger.Info("教学周创建成功", zap.String("week", weekKey(rec)))
	return dto.OutcomeCreated, nil
}

func (s *weekImporter) EnsureWeeks(ctx context.Context, recs []dto.WeekRecord) *dto.ImportReport {
	report := &dto.ImportReport{Kind: "week"}
	for _, rec := range recs {
		outcome, err := s.EnsureWeek(ctx, rec)
		report.Add(weekKey(rec), outcome, err)
	}
	return report
}
