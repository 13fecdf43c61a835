package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/model"
	"uni-portal/backend/internal/service"
	"uni-portal/backend/pkg/redis"
)

type importOptions struct {
	file        string
	triggeredBy string
	noRedis     bool
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import one scraped timetable snapshot (JSON)",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(opts.file)
			if err != nil {
				return err
			}

			e, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer e.close()

			// Redis 可选：用于同步互斥锁与缓存失效
			var rdb *redis.Client
			if !opts.noRedis {
				rdb, err = redis.NewClient(&e.cfg.Redis, e.logger)
				if err != nil {
					e.logger.Warn("Redis 连接失败，将在无锁模式下导入", zap.Error(err))
					rdb = nil
				} else {
					defer rdb.Close()
				}
			}

			svc := service.NewService(e.cfg, e.repo, rdb, nil, e.logger)
			resp, err := svc.Snapshot.Import(cmd.Context(), snap, opts.triggeredBy)
			if resp != nil {
				renderImport(cmd.OutOrStdout(), resp)
			}
			if err != nil {
				return &exitError{code: exitFailed, err: err}
			}
			if resp.Status == model.SyncStatusPartial {
				return &exitError{code: exitPartial, err: fmt.Errorf("同步部分失败")}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Snapshot JSON file, - for stdin (required)")
	cmd.Flags().StringVar(&opts.triggeredBy, "triggered-by", "cli", "Recorded as the run's trigger")
	cmd.Flags().BoolVar(&opts.noRedis, "no-redis", false, "Skip Redis (no run lock, no cache invalidation)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readSnapshot 读取并校验快照文件
func readSnapshot(path string) (*dto.Snapshot, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, fmt.Errorf("打开快照文件失败: %w", err)
		}
		defer f.Close()
	}

	var snap dto.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("解析快照失败: %w", err)
	}
	if strings.TrimSpace(snap.Year) == "" || strings.TrimSpace(snap.Term) == "" {
		return nil, fmt.Errorf("快照缺少 year 或 term")
	}
	return &snap, nil
}
