package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "app:\n  env: prod\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8777", cfg.App.HTTPAddr)
	assert.Equal(t, "workspace", cfg.Workspace.Root)
	assert.Equal(t, "USD", cfg.Vault.QuoteCurrency)
	assert.Equal(t, 45000.0, cfg.Market.ReferencePrices["BTC"])
	assert.Equal(t, 120, cfg.Bridge.RunTimeoutSeconds)
}

func TestLoadExplicitValuesWinOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", `
app:
  http_addr: ":9000"
  log_level: debug
vault:
  quote_currency: EUR
  initial_deposit: 500
market:
  reference_prices:
    BTC: 50000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.App.HTTPAddr)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "EUR", cfg.Vault.QuoteCurrency)
	assert.Equal(t, 500.0, cfg.Vault.InitialDeposit)
	// 显式给出的参考价表不再合并默认表（viper 会把键折成小写）
	require.Len(t, cfg.Market.ReferencePrices, 1)
	assert.Equal(t, 50000.0, cfg.Market.ReferencePrices["btc"])
}

func TestLoadIncludeMergeOrder(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", "app:\n  env: base\n  log_level: warn\n")
	path := writeConfig(t, dir, "config.yaml", `
include:
  - base.yaml
app:
  env: override
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// 主文件最后合并，覆盖 include 的同名键
	assert.Equal(t, "override", cfg.App.Env)
	assert.Equal(t, "warn", cfg.App.LogLevel)
}

func TestLoadIncludeCycleFails(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	path := writeConfig(t, dir, "b.yaml", "include:\n  - a.yaml\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "app:\n  log_level: verbose\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoadRejectsNegativeDeposit(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", "vault:\n  initial_deposit: -1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_deposit")
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestWorkspaceResolveRelativePaths(t *testing.T) {
	w := WorkspaceConfig{
		Root:         "/srv/aura",
		PluginsDir:   "plugins",
		TemplateFile: "/abs/dashboard.html",
	}
	assert.Equal(t, filepath.Join("/srv/aura", "plugins"), w.ResolvePluginsDir())
	assert.Equal(t, "/abs/dashboard.html", w.ResolveTemplateFile())
}
