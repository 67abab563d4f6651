package dashhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aura/internal/bridge"
	"aura/internal/logger"
	"aura/internal/plugin"
	"aura/internal/snapshot"
	"aura/internal/store/sqlite"
	"aura/internal/vault"
	"aura/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server 提供工作区仪表盘的 HTTP 服务。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述仪表盘服务依赖。
type ServerConfig struct {
	Addr      string
	Workspace *workspace.Context
	Registry  *plugin.Registry
	Ledger    *vault.Ledger
	Collector *snapshot.Collector
	Bridges   *bridge.Bridges
	Audit     *sqlite.AuditStore // 可为 nil（审计关闭时降级）
}

// NewServer 构建 dashboard HTTP server。
// 路由层级（先匹配者生效）：静态资源 → 仪表盘页 → /api 通配
// （插件命名空间优先，落空后回落核心表）→ legacy 固定写路径。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Workspace == nil || cfg.Workspace.Store == nil {
		return nil, errors.New("dashboard server requires a workspace context")
	}
	if cfg.Registry == nil || cfg.Ledger == nil || cfg.Collector == nil {
		return nil, errors.New("dashboard server requires registry, ledger and collector")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8777"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handlers{
		wctx:      cfg.Workspace,
		registry:  cfg.Registry,
		ledger:    cfg.Ledger,
		collector: cfg.Collector,
		bridges:   cfg.Bridges,
		audit:     cfg.Audit,
		renderer:  newRenderer(cfg.Workspace.TemplateFile),
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 静态/媒体前缀
	router.GET("/media/*filepath", h.serveTree(cfg.Workspace.MediaDir))
	router.GET("/web/*filepath", h.serveTree(cfg.Workspace.WebDir))
	router.GET("/plugins/*filepath", h.servePluginAssets)

	// 仪表盘页
	router.GET("/", h.handleDashboard)
	router.GET("/dashboard", h.handleDashboard)

	// 插件 API 与核心表共用一个通配入口以保证回落语义
	router.Any("/api/*apipath", h.handleAPI)

	// legacy 固定写路径 + 兜底 404
	router.NoRoute(h.handleLegacy)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// requestLogger 为每个请求生成 trace id 并记录访问日志。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := uuid.NewString()
		c.Set("trace_id", traceID)
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s trace=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.ClientIP(), time.Since(start), traceID)
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler 暴露底层 handler，测试用。
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("dashboard http server listening on %s", s.addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
