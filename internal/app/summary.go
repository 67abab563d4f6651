package app

import (
	"fmt"
	"strings"

	aucfg "aura/internal/config"
	"aura/internal/plugin"
)

// StartupSummary 汇总启动配置，便于一眼确认环境。
type StartupSummary struct {
	Env        string
	HTTPAddr   string
	Workspace  string
	PluginsDir string
	Quote      string
	Live       bool
	Audit      bool
	Plugins    []plugin.Manifest
	Backends   []string
}

func buildSummary(cfg *aucfg.Config, registry *plugin.Registry) *StartupSummary {
	s := &StartupSummary{
		Env:        cfg.App.Env,
		HTTPAddr:   cfg.App.HTTPAddr,
		Workspace:  cfg.Workspace.Root,
		PluginsDir: cfg.Workspace.ResolvePluginsDir(),
		Quote:      cfg.Vault.QuoteCurrency,
		Live:       cfg.Market.LiveEnabled,
		Audit:      cfg.Audit.Enabled,
		Backends:   plugin.BuiltinIDs(),
	}
	if registry != nil {
		s.Plugins = registry.Manifests()
	}
	return s
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("AURA STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  env:        %s\n", s.Env)
	fmt.Printf("  http:       %s\n", s.HTTPAddr)
	fmt.Printf("  workspace:  %s\n", s.Workspace)
	fmt.Printf("  plugins:    %s\n", s.PluginsDir)
	fmt.Printf("  quote:      %s (live=%v, audit=%v)\n", s.Quote, s.Live, s.Audit)
	fmt.Printf("  backends:   %s\n", formatList(s.Backends))
	if len(s.Plugins) == 0 {
		fmt.Println("  manifests:  (none)")
	} else {
		for _, m := range s.Plugins {
			fmt.Printf("  manifest:   %s v%s (%s)\n", m.ID, m.Version, m.Name)
		}
	}
	fmt.Println(strings.Repeat("=", 72))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
