package app

import (
	"context"
	"fmt"

	"aura/internal/bridge"
	aucfg "aura/internal/config"
	"aura/internal/logger"
	"aura/internal/market"
	"aura/internal/plugin"
	_ "aura/internal/plugin/builtin" // 静态登记内建插件后端
	"aura/internal/snapshot"
	"aura/internal/store/sqlite"
	dashhttp "aura/internal/transport/http/dash"
	"aura/internal/vault"
	"aura/internal/workspace"
)

// AppBuilder 按依赖顺序组装应用：工作区→行情→账本→插件→快照→HTTP。
type AppBuilder struct {
	cfg *aucfg.Config
}

func NewAppBuilder(cfg *aucfg.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

func (b *AppBuilder) Build(_ context.Context) (*App, error) {
	cfg := b.cfg

	store, err := workspace.NewStore(cfg.Workspace.Root)
	if err != nil {
		return nil, fmt.Errorf("init workspace failed: %w", err)
	}
	wctx := &workspace.Context{
		Root:         cfg.Workspace.Root,
		Store:        store,
		PluginsDir:   cfg.Workspace.ResolvePluginsDir(),
		WebDir:       cfg.Workspace.ResolveWebDir(),
		MediaDir:     cfg.Workspace.ResolveMediaDir(),
		TemplateFile: cfg.Workspace.ResolveTemplateFile(),
		BridgeDir:    cfg.Bridge.Dir,
	}

	paper := market.NewPaperSource(cfg.Market.ReferencePrices, cfg.Market.DefaultReference)
	var live market.Source
	if cfg.Market.LiveEnabled {
		live = market.NewBinanceSource(market.BinanceConfig{
			RESTBaseURL:   cfg.Market.RESTBaseURL,
			QuoteCurrency: cfg.Vault.QuoteCurrency,
			Timeout:       cfg.Market.Timeout(),
		})
	}

	ledger, err := vault.NewLedger(vault.Options{
		Store:          store,
		QuoteCurrency:  cfg.Vault.QuoteCurrency,
		Paper:          paper,
		Live:           live,
		InitialDeposit: cfg.Vault.InitialDeposit,
	})
	if err != nil {
		return nil, fmt.Errorf("init vault ledger failed: %w", err)
	}

	registry, err := plugin.NewRegistry(wctx.PluginsDir, plugin.Deps{Workspace: wctx, Vault: ledger})
	if err != nil {
		return nil, fmt.Errorf("init plugin registry failed: %w", err)
	}
	registry.Scan()

	var audit *sqlite.AuditStore
	if cfg.Audit.Enabled {
		audit, err = sqlite.NewAuditStore(cfg.Audit.DBPath)
		if err != nil {
			// 审计是旁路功能，初始化失败降级为关闭
			logger.Warnf("audit store disabled: %v", err)
			audit = nil
		}
	}

	bridges := bridge.New(cfg.Bridge.Dir, cfg.Bridge.Scripts, cfg.Bridge.RunTimeout())
	collector := snapshot.NewCollector(store, ledger, registry)

	server, err := dashhttp.NewServer(dashhttp.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Workspace: wctx,
		Registry:  registry,
		Ledger:    ledger,
		Collector: collector,
		Bridges:   bridges,
		Audit:     audit,
	})
	if err != nil {
		return nil, fmt.Errorf("init dashboard server failed: %w", err)
	}

	return &App{
		cfg:      cfg,
		server:   server,
		registry: registry,
		Summary:  buildSummary(cfg, registry),
	}, nil
}
