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

// ErrSubjectIDRequired 课程编号为空
var ErrSubjectIDRequired = errors.New("课程编号不能为空")

// SubjectImporter 课程导入接口
// 未指定专业的课程归入占位专业（默认 "_"）
type SubjectImporter interface {
	EnsureSubject(ctx context.Context, rec dto.SubjectRecord) (dto.ImportOutcome, error)
	EnsureSubjects(ctx context.Context, recs []dto.SubjectRecord) *dto.ImportReport
}

type subjectImporter struct {
	repo            *repository.Repository
	unassignedMajor string
	logger          *zap.Logger
}

// NewSubjectImporter 创建 SubjectImporter 实例
func NewSubjectImporter(repo *repository.Repository, unassignedMajor string, logger *zap.Logger) SubjectImporter {
	return &subjectImporter{repo: repo, unassignedMajor: unassignedMajor, logger: logger}
}

func (s *subjectImporter) EnsureSubject(ctx context.Context, rec dto.SubjectRecord) (dto.ImportOutcome, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return dto.OutcomeFailed, ErrSubjectIDRequired
	}

	_, err := s.repo.Subject.GetByID(ctx, id)
	if err == nil {
		return dto.OutcomeAlreadyExists, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.String("subject_id", id), zap.Error(err))
		return dto.OutcomeFailed, err
	}

	major, err := s.resolveMajor(ctx, rec.Major)
	if err != nil {
		return dto.OutcomeFailed, err
	}

	subject := &model.Subject{
		SubjectID: id,
		Name:      rec.Name,
		MajorID:   major.MajorID,
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			s.logger.Info("课程已存在", zap.String("subject_id", id))
			return dto.OutcomeAlreadyExists, nil
		}
		s.logger.Error("创建课程失败", zap.String("subject_id", id), zap.Error(err))
		return dto.OutcomeFailed, err
	}

	s.logger.Info("课程创建成功", zap.String("subject_id", id), zap.String("name", rec.Name))
	return dto.OutcomeCreated, nil
}

func (s *subjectImporter) EnsureSubjects(ctx context.Context, recs []dto.SubjectRecord) *dto.ImportReport {
	report := &dto.ImportReport{Kind: "subject"}
	seen := make(map[string]bool, len(recs))
	for _, rec := range recs {
		id := strings.TrimSpace(rec.ID)
		if id != "" && seen[id] {
			continue
		}
		seen[id] = true

		outcome, err := s.EnsureSubject(ctx, rec)
		report.Add(id, outcome, err)
	}
	return report
}

// resolveMajor 查询或创建专业；并发创建撞唯一约束时回读
func (s *subjectImporter) resolveMajor(ctx context.Context, name string) (*model.Major, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.unassignedMajor
	}

	major, err := s.repo.Major.GetByName(ctx, name)
	if err == nil {
		return major, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询专业 %s 失败: %w", name, err)
	}

	major = &model.Major{Name: name}
	if err := s.repo.Major.Create(ctx, major); err != nil {
		if !pkgerrors.IsDuplicateKey(err) {
			return nil, fmt.Errorf("创建专业 %s 失败: %w", name, err)
		}
		s.logger.Warn("专业已由其他写入方创建", zap.String("major", name))
		if major, err = s.repo.Major.GetByName(ctx, name); err != nil {
			return nil, fmt.Errorf("回读专业 %s 失败: %w", name, err)
		}
	}
	return major, nil
}
