package config

import (
	"path/filepath"
	"time"
)

// Config 是 Aura 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Market    MarketConfig    `toml:"market"`
	Vault     VaultConfig     `toml:"vault"`
	Audit     AuditConfig     `toml:"audit"`
	Bridge    BridgeConfig    `toml:"bridge"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// WorkspaceConfig 描述角色工作区的目录布局。
// 相对路径一律相对 root 解析。
type WorkspaceConfig struct {
	Root         string `toml:"root"`
	PluginsDir   string `toml:"plugins_dir"`
	WebDir       string `toml:"web_dir"`
	MediaDir     string `toml:"media_dir"`
	TemplateFile string `toml:"template_file"`
}

// ResolvePluginsDir 返回插件目录的绝对定位。
func (w WorkspaceConfig) ResolvePluginsDir() string { return w.resolve(w.PluginsDir) }

// ResolveWebDir 返回前端静态资源目录。
func (w WorkspaceConfig) ResolveWebDir() string { return w.resolve(w.WebDir) }

// ResolveMediaDir 返回媒体目录。
func (w WorkspaceConfig) ResolveMediaDir() string { return w.resolve(w.MediaDir) }

// ResolveTemplateFile 返回仪表盘模板文件路径。
func (w WorkspaceConfig) ResolveTemplateFile() string { return w.resolve(w.TemplateFile) }

func (w WorkspaceConfig) resolve(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.Root, p)
}

// MarketConfig 控制报价来源（paper 参考价 + live 行情接入）。
type MarketConfig struct {
	RESTBaseURL       string             `toml:"rest_base_url"`
	TimeoutSeconds    int                `toml:"timeout_seconds"`
	ReferencePrices   map[string]float64 `toml:"reference_prices"`
	DefaultReference  float64            `toml:"default_reference"`
	LiveEnabled       bool               `toml:"live_enabled"`
}

func (m MarketConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// VaultConfig 描述纸面交易账本。
type VaultConfig struct {
	QuoteCurrency  string  `toml:"quote_currency"`
	InitialDeposit float64 `toml:"initial_deposit"`
}

type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// BridgeConfig 描述外部桥接脚本（行情/语音/图像/自动化）。
type BridgeConfig struct {
	Dir                 string            `toml:"dir"`
	Scripts             map[string]string `toml:"scripts"`
	CheckTimeoutSeconds int               `toml:"check_timeout_seconds"`
	RunTimeoutSeconds   int               `toml:"run_timeout_seconds"`
}

func (b BridgeConfig) CheckTimeout() time.Duration {
	return time.Duration(b.CheckTimeoutSeconds) * time.Second
}

func (b BridgeConfig) RunTimeout() time.Duration {
	return time.Duration(b.RunTimeoutSeconds) * time.Second
}
