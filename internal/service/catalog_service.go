package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
	"uni-portal/backend/pkg/redis"
)

// CatalogService 课表只读查询接口
type CatalogService interface {
	ListTerms(ctx context.Context) ([]string, error)
	ListYears(ctx context.Context) ([]string, error)
	ListMajors(ctx context.Context) ([]dto.MajorResponse, error)
	// ListClasses 某 (学年, 学期) 的班级列表，优先读缓存
	ListClasses(ctx context.Context, year, term string) ([]dto.ClassResponse, error)
	ListSyncRuns(ctx context.Context, req *dto.SyncScopeRequest) ([]dto.SyncRunResponse, int64, error)
	ListLecturerChanges(ctx context.Context, req *dto.SyncScopeRequest) ([]dto.LecturerChangeResponse, int64, error)
}

type catalogService struct {
	repo     *repository.Repository
	cache    ClassCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例；cache 可为 nil
func NewCatalogService(repo *repository.Repository, cache ClassCache, cacheTTL time.Duration, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *catalogService) ListTerms(ctx context.Context) ([]string, error) {
	return s.listLookup(ctx, model.LookupTerm)
}

func (s *catalogService) ListYears(ctx context.Context) ([]string, error) {
	return s.listLookup(ctx, model.LookupAcademicYear)
}

func (s *catalogService) listLookup(ctx context.Context, kind model.LookupKind) ([]string, error) {
	labels, err := s.repo.Lookup.List(ctx, kind)
	if err != nil {
		s.logger.Error("查询查找实体列表失败", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}

func (s *catalogService) ListMajors(ctx context.Context) ([]dto.MajorResponse, error) {
	majors, err := s.repo.Major.List(ctx)
	if err != nil {
		s.logger.Error("查询专业列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.MajorResponse, 0, len(majors))
	for _, m := range majors {
		out = append(out, dto.MajorResponse{ID: m.MajorID, Name: m.Name})
	}
	return out, nil
}

// ═══════════════════════════════════════════════════════════
// ListClasses 班级列表，缓存优先
// ═══════════════════════════════════════════════════════════
//
// 键 class:{year}:{term}；导入产生写入时由 SnapshotImporter 失效。
// 缓存读写失败只记 Warn，回落到数据库。

func (s *catalogService) ListClasses(ctx context.Context, year, term string) ([]dto.ClassResponse, error) {
	year = strings.TrimSpace(year)
	term = strings.TrimSpace(term)
	if year == "" {
		return nil, ErrSyncYearRequired
	}
	if term == "" {
		return nil, ErrSyncTermRequired
	}

	key := redis.ClassCacheKey(year, term)
	if s.cache != nil {
		data, ok, err := s.cache.GetCached(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("读取班级列表缓存失败", zap.String("key", key), zap.Error(err))
		case ok:
			var cached []dto.ClassResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("班级列表缓存内容损坏", zap.String("key", key))
		}
	}

	classes, err := s.repo.Class.ListWithDetails(ctx, term, year)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.String("year", year), zap.String("term", term), zap.Error(err))
		return nil, err
	}

	out := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		out = append(out, toClassResponse(&classes[i]))
	}

	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.cache.SetCached(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn("写入班级列表缓存失败", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return out, nil
}

func (s *catalogService) ListSyncRuns(ctx context.Context, req *dto.SyncScopeRequest) ([]dto.SyncRunResponse, int64, error) {
	runs, total, err := s.repo.SyncRun.List(ctx, req.Term, req.Year, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询同步运行记录失败", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.SyncRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, toSyncRunResponse(&runs[i]))
	}
	return out, total, nil
}

func (s *catalogService) ListLecturerChanges(ctx context.Context, req *dto.SyncScopeRequest) ([]dto.LecturerChangeResponse, int64, error) {
	changes, total, err := s.repo.LecturerChange.ListByTermAndYear(ctx, req.Term, req.Year, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教师变更日志失败", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.LecturerChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, dto.LecturerChangeResponse{
			ID:              c.ChangeID,
			ExternalClassID: c.ExternalClassID,
			Year:            c.YearLabel,
			Term:            c.TermLabel,
			OldLecturer:     c.OldLecturerName,
			NewLecturer:     c.NewLecturerName,
			ChangedAt:       c.CreatedAt,
		})
	}
	return out, total, nil
}

// ── 转换函数 ──

func toClassResponse(c *model.Class) dto.ClassResponse {
	resp := dto.ClassResponse{
		ID:               c.ClassID,
		ExternalClassID:  c.ExternalClassID,
		Type:             c.Type,
		LearningSections: json.RawMessage(c.LearningSections),
		Year:             c.YearLabel,
		Term:             c.TermLabel,
	}
	if len(resp.LearningSections) == 0 {
		resp.LearningSections = json.RawMessage("[]")
	}
	if c.Subject != nil {
		resp.Subject = &dto.SubjectBrief{ID: c.Subject.SubjectID, Name: c.Subject.Name}
	}
	if c.Lecturer != nil {
		resp.Lecturer = &dto.LecturerBrief{ID: c.Lecturer.LecturerID, Name: c.Lecturer.Name}
	}
	return resp
}

func toSyncRunResponse(r *model.SyncRun) dto.SyncRunResponse {
	return dto.SyncRunResponse{
		ID:                r.SyncRunID,
		Year:              r.YearLabel,
		Term:              r.TermLabel,
		Status:            r.Status,
		TriggeredBy:       r.TriggeredBy,
		Received:          r.ReceivedCount,
		Created:           r.CreatedCount,
		Updated:           r.UpdatedCount,
		Unchanged:         r.UnchangedCount,
		SkippedUnresolved: r.SkippedUnresolved,
		SkippedInvalid:    r.SkippedInvalid,
		DuplicateKeys:     r.DuplicateKeys,
		Error:             r.ErrorMessage,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
	}
}
