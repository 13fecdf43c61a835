package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
)

// ErrLecturerUnresolved 批量创建后仍有教师姓名无法解析为 ID
var ErrLecturerUnresolved = errors.New("教师无法解析")

// LecturerRegistry 教师登记接口
//
// 设计说明：
//   - 以姓名为自然键，一次查询取回已存在者，一次 INSERT 创建缺失者，再回读。
//   - 其他写入方已创建的姓名由 INSERT 跳过，回读时一并取回。
//   - 回读后仍有姓名缺失视为致命错误，本次同步不得继续。
type LecturerRegistry interface {
	// ResolveLecturers 返回 姓名 → 教师 ID；空白姓名被忽略
	ResolveLecturers(ctx context.Context, names []string) (map[string]string, error)
}

type lecturerRegistry struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLecturerRegistry 创建 LecturerRegistry 实例
func NewLecturerRegistry(repo *repository.Repository, logger *zap.Logger) LecturerRegistry {
	return &lecturerRegistry{repo: repo, logger: logger}
}

// normalizeName 教师姓名规范化；登记与比对必须使用同一规则
func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

func (s *lecturerRegistry) ResolveLecturers(ctx context.Context, names []string) (map[string]string, error) {
	// 1. 去重、去空白
	wanted := uniqueNames(names)
	ids := make(map[string]string, len(wanted))
	if len(wanted) == 0 {
		return ids, nil
	}

	// 2. 一次查询取回已存在的教师
	existing, err := s.repo.Lecturer.ListByNames(ctx, wanted)
	if err != nil {
		s.logger.Error("查询教师失败", zap.Int("count", len(wanted)), zap.Error(err))
		return nil, fmt.Errorf("查询教师失败: %w", err)
	}
	for _, l := range existing {
		ids[l.Name] = l.LecturerID
	}

	// 3. 缺失者一次批量创建
	var missing []model.Lecturer
	for _, name := range wanted {
		if _, ok := ids[name]; !ok {
			missing = append(missing, model.Lecturer{Name: name})
		}
	}
	if len(missing) == 0 {
		return ids, nil
	}

	inserted, err := s.repo.Lecturer.BatchCreate(ctx, missing)
	if err != nil {
		s.logger.Error("批量创建教师失败", zap.Int("count", len(missing)), zap.Error(err))
		return nil, fmt.Errorf("批量创建教师失败: %w", err)
	}
	if skipped := int64(len(missing)) - inserted; skipped > 0 {
		s.logger.Warn("部分教师已由其他写入方创建",
			zap.Int64("inserted", inserted),
			zap.Int64("skipped", skipped),
		)
	} else {
		s.logger.Info("批量创建教师成功", zap.Int64("count", inserted))
	}

	// 4. 回读
	created, err := s.repo.Lecturer.ListByNames(ctx, lecturerNames(missing))
	if err != nil {
		s.logger.Error("回读教师失败", zap.Error(err))
		return nil, fmt.Errorf("回读教师失败: %w", err)
	}
	for _, l := range created {
		ids[l.Name] = l.LecturerID
	}

	var unresolved []string
	for _, name := range wanted {
		if _, ok := ids[name]; !ok {
			unresolved = append(unresolved, name)
		}
	}
	if len(unresolved) > 0 {
		s.logger.Error("教师回读后仍无法解析", zap.Strings("names", unresolved))
		return nil, fmt.Errorf("%w: %s", ErrLecturerUnresolved, strings.Join(unresolved, ", "))
	}
	return ids, nil
}

// ── 辅助函数 ──

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = normalizeName(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func lecturerNames(lecturers []model.Lecturer) []string {
	out := make([]string, len(lecturers))
	for i, l := range lecturers {
		out[i] = l.Name
	}
	return out
}
