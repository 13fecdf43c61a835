package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
)

// ── 班级同步模块业务错误 ──

var (
	ErrSyncYearRequired = errors.New("同步学年不能为空")
	ErrSyncTermRequired = errors.New("同步学期不能为空")
	ErrSyncBatchFailed  = errors.New("同步写入批次失败")
)

// ── ClassSynchronizer 接口 ──────────────────────────────────
//
// 设计说明：
//   - 作用域为单个 (学年, 学期)；不同作用域的班级互不影响。
//   - 流程：解析教师 → 加载已持久化班级 → 纯函数比对分区 → 写入。
//   - 新增批次（单条 INSERT）与改派批次（单个事务）并发执行，
//     两者互不依赖；任一批次失败只记录在该批次的结果中，
//     另一批次照常完成。
//   - 调用方须保证同一 (学年, 学期) 同时只有一个同步在执行。
// ─────────────────────────────────────────────────────────────

// ClassSynchronizer 班级同步接口
type ClassSynchronizer interface {
	// Synchronize 将抓取到的班级与已持久化状态对齐
	// 致命错误时 report 为 nil；批次失败时同时返回 report 与包装 ErrSyncBatchFailed 的错误
	Synchronize(ctx context.Context, records []dto.ClassRecord, year, term string) (*dto.SyncReport, error)
}

type classSynchronizer struct {
	repo      *repository.Repository
	lecturers LecturerRegistry
	logger    *zap.Logger
}

// NewClassSynchronizer 创建 ClassSynchronizer 实例
func NewClassSynchronizer(repo *repository.Repository, lecturers LecturerRegistry, logger *zap.Logger) ClassSynchronizer {
	return &classSynchronizer{repo: repo, lecturers: lecturers, logger: logger}
}

func (s *classSynchronizer) Synchronize(ctx context.Context, records []dto.ClassRecord, year, term string) (*dto.SyncReport, error) {
	year = strings.TrimSpace(year)
	term = strings.TrimSpace(term)
	if year == "" {
		return nil, ErrSyncYearRequired
	}
	if term == "" {
		return nil, ErrSyncTermRequired
	}

	log := s.logger.With(zap.String("year", year), zap.String("term", term))

	// 1. 解析教师（缺失者批量创建）
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.LecturerName)
	}
	lecturerIDs, err := s.lecturers.ResolveLecturers(ctx, names)
	if err != nil {
		log.Error("解析教师失败，终止同步", zap.Error(err))
		return nil, err
	}

	// 2. 加载该作用域下已持久化的班级
	persisted, err := s.repo.Class.ListByTermAndYear(ctx, term, year)
	if err != nil {
		log.Error("加载已有班级失败，终止同步", zap.Error(err))
		return nil, fmt.Errorf("加载已有班级失败: %w", err)
	}
	existing := make(map[string]model.Class, len(persisted))
	for _, c := range persisted {
		existing[c.ExternalClassID] = c
	}

	// 3. 比对分区
	plan := planClassSync(records, existing, lecturerIDs, term, year)
	for _, w := range plan.warnings {
		log.Warn("班级数据告警",
			zap.String("external_class_id", w.ExternalClassID),
			zap.String("kind", w.Kind),
			zap.String("detail", w.Detail),
		)
	}

	report := &dto.SyncReport{
		Year:              year,
		Term:              term,
		Received:          len(records),
		Unchanged:         len(plan.unchanged),
		SkippedUnresolved: plan.skippedUnresolved,
		SkippedInvalid:    plan.skippedInvalid,
		DuplicateKeys:     plan.duplicateKeys,
		CreateBatch:       dto.BatchResult{Attempted: len(plan.toCreate)},
		UpdateBatch:       dto.BatchResult{Attempted: len(plan.toUpdate)},
		Changes:           []dto.LecturerChange{},
		Warnings:          plan.warnings,
	}

	// 4. 两个写入批次并发执行，各自记录结果
	var createErr, updateErr error
	var g errgroup.Group

	if len(plan.toCreate) > 0 {
		g.Go(func() error {
			if err := s.repo.Class.BatchCreate(ctx, plan.toCreate); err != nil {
				createErr = fmt.Errorf("批量创建班级: %w", err)
				return createErr
			}
			return nil
		})
	}
	if len(plan.toUpdate) > 0 {
		g.Go(func() error {
			if err := s.repo.Class.ReassignLecturers(ctx, plan.toUpdate); err != nil {
				updateErr = fmt.Errorf("批量改派教师: %w", err)
				return updateErr
			}
			return nil
		})
	}
	_ = g.Wait()

	if createErr != nil {
		report.CreateBatch.Failed = true
		report.CreateBatch.Error = createErr.Error()
		log.Error("新增班级批次失败", zap.Int("attempted", len(plan.toCreate)), zap.Error(createErr))
	} else if len(plan.toCreate) > 0 {
		report.Created = len(plan.toCreate)
		log.Info("新增班级成功", zap.Int("count", report.Created))
	}

	if updateErr != nil {
		report.UpdateBatch.Failed = true
		report.UpdateBatch.Error = updateErr.Error()
		log.Error("改派教师批次失败，事务已回滚", zap.Int("attempted", len(plan.toUpdate)), zap.Error(updateErr))
	} else {
		for _, c := range plan.toUpdate {
			report.Changes = append(report.Changes, dto.LecturerChange{
				ExternalClassID: c.ExternalClassID,
				Term:            c.TermLabel,
				Year:            c.YearLabel,
				OldLecturer:     c.OldLecturerName,
				NewLecturer:     c.NewLecturerName,
			})
			log.Info("班级教师已改派",
				zap.String("external_class_id", c.ExternalClassID),
				zap.String("old_lecturer", c.OldLecturerName),
				zap.String("new_lecturer", c.NewLecturerName),
			)
		}
		report.Updated = len(plan.toUpdate)
	}

	log.Info("班级同步完成",
		zap.Int("received", report.Received),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("skipped_unresolved", report.SkippedUnresolved),
		zap.Int("skipped_invalid", report.SkippedInvalid),
	)

	if err := errors.Join(createErr, updateErr); err != nil {
		return report, fmt.Errorf("%w: %w", ErrSyncBatchFailed, err)
	}
	return report, nil
}
