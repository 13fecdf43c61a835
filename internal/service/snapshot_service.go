package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"uni-portal/backend/config"
	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
	"uni-portal/backend/pkg/metrics"
	"uni-portal/backend/pkg/redis"
)

// ErrSyncInProgress 同一 (学年, 学期) 已有导入在执行
var ErrSyncInProgress = errors.New("该学年学期正在同步中，请稍后重试")

// SyncLocker 同步互斥锁（Redis 实现见 pkg/redis）
type SyncLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// ClassCache 班级列表缓存（Redis 实现见 pkg/redis）
type ClassCache interface {
	GetCached(ctx context.Context, key string) ([]byte, bool, error)
	SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// ── SnapshotImporter 接口 ──────────────────────────────────
//
// 一次完整导入：
//  1. 获取 (学年, 学期) 互斥锁；未配置 Redis 时仅记 Warn 继续
//  2. 确保学期、学年、教学周、课程
//  3. 同步班级
//  4. 有写入时失效班级列表缓存
//  5. 写入运行记录并上报指标
//
// 批次失败 → 状态 partial，作为报告返回而非错误；
// 致命错误 → 状态 failed，记录运行后返回错误。
// ─────────────────────────────────────────────────────────────

// SnapshotImporter 课表快照导入接口
type SnapshotImporter interface {
	Import(ctx context.Context, snap *dto.Snapshot, triggeredBy string) (*dto.ImportSnapshotResponse, error)
}

type snapshotImporter struct {
	repo     *repository.Repository
	lookups  LookupRegistrar
	weeks    WeekImporter
	subjects SubjectImporter
	classes  ClassSynchronizer
	locker   SyncLocker
	cache    ClassCache
	metrics  *metrics.Metrics
	cfg      config.SyncConfig
	logger   *zap.Logger
	now      func() time.Time
}

// SnapshotDeps SnapshotImporter 依赖
// Locker / Cache / Metrics 可为 nil
type SnapshotDeps struct {
	Lookups  LookupRegistrar
	Weeks    WeekImporter
	Subjects SubjectImporter
	Classes  ClassSynchronizer
	Locker   SyncLocker
	Cache    ClassCache
	Metrics  *metrics.Metrics
}

// NewSnapshotImporter 创建 SnapshotImporter 实例
func NewSnapshotImporter(cfg config.SyncConfig, repo *repository.Repository, deps SnapshotDeps, logger *zap.Logger) SnapshotImporter {
	return &snapshotImporter{
		repo:     repo,
		lookups:  deps.Lookups,
		weeks:    deps.Weeks,
		subjects: deps.Subjects,
		classes:  deps.Classes,
		locker:   deps.Locker,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *snapshotImporter) Import(ctx context.Context, snap *dto.Snapshot, triggeredBy string) (*dto.ImportSnapshotResponse, error) {
	year := strings.TrimSpace(snap.Year)
	term := strings.TrimSpace(snap.Term)
	if year == "" {
		return nil, ErrSyncYearRequired
	}
	if term == "" {
		return nil, ErrSyncTermRequired
	}

	log := s.logger.With(zap.String("year", year), zap.String("term", term), zap.String("triggered_by", triggeredBy))
	startedAt := s.now()

	// 1. 互斥锁
	release, err := s.acquire(ctx, year, term, log)
	if err != nil {
		return nil, err
	}
	defer release()

	log.Info("开始导入课表快照",
		zap.Int("weeks", len(snap.Weeks)),
		zap.Int("subjects", len(snap.Subjects)),
		zap.Int("classes", len(snap.Classes)),
	)

	// 2. 前置实体：作用域本身的学期、学年必须存在
	resp := &dto.ImportSnapshotResponse{
		Terms: s.lookups.EnsureLookups(ctx, model.LookupTerm, append([]string{term}, snap.Terms...)),
		Years: s.lookups.EnsureLookups(ctx, model.LookupAcademicYear, append([]string{year}, snap.Years...)),
	}
	resp.Weeks = s.weeks.EnsureWeeks(ctx, snap.Weeks)
	resp.Subjects = s.subjects.EnsureSubjects(ctx, snap.Subjects)

	// 3. 班级同步
	report, syncErr := s.classes.Synchronize(ctx, snap.Classes, year, term)
	resp.Classes = report

	status := model.SyncStatusSucceeded
	var fatalErr error
	switch {
	case syncErr != nil && errors.Is(syncErr, ErrSyncBatchFailed):
		status = model.SyncStatusPartial
	case syncErr != nil:
		status = model.SyncStatusFailed
		fatalErr = syncErr
	}

	// 4. 有写入时失效缓存
	if report != nil && (report.Created > 0 || report.Updated > 0) {
		s.invalidate(ctx, year, term, log)
	}

	// 5. 运行记录与指标
	finishedAt := s.now()
	run := buildSyncRun(year, term, triggeredBy, status, report, syncErr, startedAt, finishedAt)
	if err := s.repo.SyncRun.Create(ctx, run); err != nil {
		log.Error("写入同步运行记录失败", zap.Error(err))
	}
	resp.SyncRunID = run.SyncRunID
	resp.Status = status
	resp.Duration = finishedAt.Sub(startedAt).String()

	if s.metrics != nil {
		s.metrics.ObserveRun(status, classCounts(report), finishedAt.Sub(startedAt))
	}

	if fatalErr != nil {
		log.Error("课表快照导入失败", zap.Error(fatalErr))
		return resp, fatalErr
	}
	log.Info("课表快照导入完成", zap.String("status", status), zap.String("duration", resp.Duration))
	return resp, nil
}

// acquire 获取互斥锁，返回释放函数
func (s *snapshotImporter) acquire(ctx context.Context, year, term string, log *zap.Logger) (func(), error) {
	if s.locker == nil {
		log.Warn("未配置 Redis，跳过同步互斥锁")
		return func() {}, nil
	}

	key := redis.SyncLockKey(year, term)
	token, ok, err := s.locker.AcquireLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		log.Warn("获取同步锁失败，降级为无锁执行", zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, ErrSyncInProgress
	}

	return func() {
		// 请求上下文可能已取消，释放锁使用独立上下文
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.locker.ReleaseLock(releaseCtx, key, token); err != nil {
			log.Warn("释放同步锁失败", zap.Error(err))
		}
	}, nil
}

func (s *snapshotImporter) invalidate(ctx context.Context, year, term string, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, redis.ClassCacheKey(year, term)); err != nil {
		log.Warn("失效班级列表缓存失败", zap.Error(err))
	}
}

// ── 辅助函数 ──

func buildSyncRun(year, term, triggeredBy, status string, report *dto.SyncReport, syncErr error, startedAt, finishedAt time.Time) *model.SyncRun {
	run := &model.SyncRun{
		TermLabel:   term,
		YearLabel:   year,
		Status:      status,
		TriggeredBy: triggeredBy,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
	}
	if syncErr != nil {
		run.ErrorMessage = syncErr.Error()
	}
	if report != nil {
		run.ReceivedCount = report.Received
		run.CreatedCount = report.Created
		run.UpdatedCount = report.Updated
		run.UnchangedCount = report.Unchanged
		run.SkippedUnresolved = report.SkippedUnresolved
		run.SkippedInvalid = report.SkippedInvalid
		run.DuplicateKeys = report.DuplicateKeys
	}
	return run
}

func classCounts(report *dto.SyncReport) metrics.ClassCounts {
	if report == nil {
		return metrics.ClassCounts{}
	}
	return metrics.ClassCounts{
		Created:           report.Created,
		Updated:           report.Updated,
		Unchanged:         report.Unchanged,
		SkippedUnresolved: report.SkippedUnresolved,
		SkippedInvalid:    report.SkippedInvalid,
		DuplicateKeys:     report.DuplicateKeys,
	}
}
