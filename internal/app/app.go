package app

import (
	"context"
	"errors"
	"fmt"

	aucfg "aura/internal/config"
	"aura/internal/logger"
	"aura/internal/plugin"
	dashhttp "aura/internal/transport/http/dash"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务与插件监听。
type App struct {
	cfg      *aucfg.Config
	server   *dashhttp.Server
	registry *plugin.Registry
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *aucfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动仪表盘服务与插件目录监听，任一出错即整体退出。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	if a.server == nil {
		return fmt.Errorf("dashboard server not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil && !isContextEnd(err) {
			return fmt.Errorf("dashboard http server error: %w", err)
		}
		return nil
	})

	if a.registry != nil {
		group.Go(func() error {
			if err := a.registry.Watch(ctx); err != nil && !isContextEnd(err) {
				logger.Warnf("plugins watcher stopped: %v", err)
			}
			return nil
		})
	}

	return group.Wait()
}

func isContextEnd(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
