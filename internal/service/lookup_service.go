package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/repository"
	pkgerrors "uni-portal/backend/pkg/errors"
)

// ── 查找实体模块业务错误 ──

var (
	ErrLookupKindInvalid = errors.New("未知的查找实体种类")
	ErrLookupLabelEmpty  = errors.New("查找实体标签不能为空")
)

// ── LookupRegistrar 接口 ──────────────────────────────────
//
// 设计说明：
//   - 学期、学年以 label 为自然键，只增不删。
//   - 先按自然键查询，不存在再插入；插入时撞上唯一约束（并发写入）
//     视为"已存在"，记 Warn 日志，不向调用方返回错误。
//   - 每条结果显式返回 Created / AlreadyExists / Failed，调用方无需解析日志。
// ─────────────────────────────────────────────────────────────

// LookupRegistrar 查找实体登记接口
type LookupRegistrar interface {
	// EnsureLookup 确保某个 label 存在；只有 Failed 时 error 非空
	EnsureLookup(ctx context.Context, kind model.LookupKind, label string) (dto.ImportOutcome, error)
	// EnsureLookups 批量确保，重复 label 只处理一次
	EnsureLookups(ctx context.Context, kind model.LookupKind, labels []string) *dto.ImportReport
}

type lookupRegistrar struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLookupRegistrar 创建 LookupRegistrar 实例
func NewLookupRegistrar(repo *repository.Repository, logger *zap.Logger) LookupRegistrar {
	return &lookupRegistrar{repo: repo, logger: logger}
}

func (s *lookupRegistrar) EnsureLookup(ctx context.Context, kind model.LookupKind, label string) (dto.ImportOutcome, error) {
	if !kind.Valid() {
		return dto.OutcomeFailed, fmt.Errorf("%w: %q", ErrLookupKindInvalid, kind)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return dto.OutcomeFailed, ErrLookupLabelEmpty
	}

	exists, err := s.repo.Lookup.Exists(ctx, kind, label)
	if err != nil {
		s.logger.Error("查询查找实体失败", zap.String("kind", string(kind)), zap.String("label", label), zap.Error(err))
		return dto.OutcomeFailed, err
	}
	if exists {
		return dto.OutcomeAlreadyExists, nil
	}

	if err := s.repo.Lookup.Create(ctx, kind, label); err != nil {
		if pkgerrors.IsDuplicateKey(err) {
			s.logger.Warn("查找实体已由其他写入方创建",
				zap.String("kind", string(kind)), zap.String("label", label))
			return dto.OutcomeAlreadyExists, nil
		}
		s.logger.Error("创建查找实体失败", zap.String("kind", string(kind)), zap.String("label", label), zap.Error(err))
		return dto.OutcomeFailed, err
	}

	s.logger.Info("查找实体创建成功", zap.String("kind", string(kind)), zap.String("label", label))
	return dto.OutcomeCreated, nil
}

func (s *lookupRegistrar) EnsureLookups(ctx context.Context, kind model.LookupKind, labels []string) *dto.ImportReport {
	report := &dto.ImportReport{Kind: string(kind)}
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if seen[label] {
			continue
		}
		seen[label] = true

		outcome, err := s.EnsureLookup(ctx, kind, label)
		report.Add(label, outcome, err)
	}
	return report
}
