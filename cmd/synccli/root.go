package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"uni-portal/backend/config"
	"uni-portal/backend/internal/repository"
	"uni-portal/backend/pkg/database"
	applogger "uni-portal/backend/pkg/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "synccli",
		Short:         "Schedule reconciliation tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.yaml (default: ./config/config.yaml)")

	cmd.AddCommand(
		newImportCmd(opts),
		newRunsCmd(opts),
		newTokenCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}

// env 命令执行所需的基础设施
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	repo   *repository.Repository
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
	_ = e.logger.Sync()
}

// loadConfig 先加载 .env（可选）到进程环境，再按 viper 规则读取配置
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("加载 .env 失败: %w", err)
	}
	return config.Load(opts.configPath)
}

// connect 加载配置并连接数据库，不执行迁移
func connect(opts *rootOptions) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: db, repo: repository.NewRepository(db)}, nil
}

// bootstrap 连接数据库并执行迁移
func bootstrap(opts *rootOptions) (*env, error) {
	e, err := connect(opts)
	if err != nil {
		return nil, err
	}
	sqlDB, err := e.db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := database.RunMigrations(sqlDB, e.logger); err != nil {
		e.close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return e, nil
}
