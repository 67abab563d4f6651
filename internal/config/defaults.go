package config

import "strings"

// 默认值常量
const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":8777"
	defaultWorkspaceRoot   = "workspace"
	defaultPluginsDir      = "plugins"
	defaultWebDir          = "web"
	defaultMediaDir        = "media"
	defaultTemplateFile    = "web/dashboard.html"
	defaultMarketREST      = "https://api.binance.com"
	defaultMarketTimeout   = 10
	defaultReferencePrice  = 100.0
	defaultQuoteCurrency   = "USD"
	defaultAuditDBPath     = "data/audit.db"
	defaultBridgeDir       = "bridges"
	defaultBridgeCheckSecs = 5
	defaultBridgeRunSecs   = 120
)

func defaultReferencePrices() map[string]float64 {
	return map[string]float64{
		"BTC":  45000.0,
		"ETH":  2500.0,
		"SOL":  100.0,
		"DOGE": 0.1,
	}
}

func defaultBridgeScripts() map[string]string {
	return map[string]string{
		"market_data": "market_data.py",
		"voice":       "voice_bridge.py",
		"image":       "image_bridge.py",
		"automation":  "desktop_automation.py",
	}
}

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Workspace.applyDefaults(keys)
	c.Market.applyDefaults(keys)
	c.Vault.applyDefaults(keys)
	c.Audit.applyDefaults(keys)
	c.Bridge.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (w *WorkspaceConfig) applyDefaults(keys keySet) {
	if w == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("workspace.root", &w.Root, defaultWorkspaceRoot),
		stringFieldDefault("workspace.plugins_dir", &w.PluginsDir, defaultPluginsDir),
		stringFieldDefault("workspace.web_dir", &w.WebDir, defaultWebDir),
		stringFieldDefault("workspace.media_dir", &w.MediaDir, defaultMediaDir),
		stringFieldDefault("workspace.template_file", &w.TemplateFile, defaultTemplateFile),
	)
}

func (m *MarketConfig) applyDefaults(keys keySet) {
	if m == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("market.rest_base_url", &m.RESTBaseURL, defaultMarketREST),
		fieldDefault{
			key:   "market.timeout_seconds",
			need:  func() bool { return m.TimeoutSeconds <= 0 },
			apply: func() { m.TimeoutSeconds = defaultMarketTimeout },
		},
		fieldDefault{
			key:   "market.default_reference",
			need:  func() bool { return m.DefaultReference <= 0 },
			apply: func() { m.DefaultReference = defaultReferencePrice },
		},
		fieldDefault{
			key:   "market.reference_prices",
			need:  func() bool { return len(m.ReferencePrices) == 0 },
			apply: func() { m.ReferencePrices = defaultReferencePrices() },
		},
	)
}

func (v *VaultConfig) applyDefaults(keys keySet) {
	if v == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("vault.quote_currency", &v.QuoteCurrency, defaultQuoteCurrency),
	)
}

func (a *AuditConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("audit.db_path", &a.DBPath, defaultAuditDBPath),
	)
}

func (b *BridgeConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("bridge.dir", &b.Dir, defaultBridgeDir),
		fieldDefault{
			key:   "bridge.scripts",
			need:  func() bool { return len(b.Scripts) == 0 },
			apply: func() { b.Scripts = defaultBridgeScripts() },
		},
		fieldDefault{
			key:   "bridge.check_timeout_seconds",
			need:  func() bool { return b.CheckTimeoutSeconds <= 0 },
			apply: func() { b.CheckTimeoutSeconds = defaultBridgeCheckSecs },
		},
		fieldDefault{
			key:   "bridge.run_timeout_seconds",
			need:  func() bool { return b.RunTimeoutSeconds <= 0 },
			apply: func() { b.RunTimeoutSeconds = defaultBridgeRunSecs },
		},
	)
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
