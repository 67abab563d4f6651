package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Workspace.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.Vault.validate(); err != nil {
		return err
	}
	if err := c.Bridge.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level unsupported: %s", a.LogLevel)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (w *WorkspaceConfig) validate() error {
	if strings.TrimSpace(w.Root) == "" {
		return fmt.Errorf("workspace.root cannot be empty")
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if m.TimeoutSeconds < 0 {
		return fmt.Errorf("market.timeout_seconds must be >= 0")
	}
	if m.DefaultReference < 0 {
		return fmt.Errorf("market.default_reference must be >= 0")
	}
	for symbol, price := range m.ReferencePrices {
		if price <= 0 {
			return fmt.Errorf("market.reference_prices[%s] must be > 0", symbol)
		}
	}
	return nil
}

func (v *VaultConfig) validate() error {
	if strings.TrimSpace(v.QuoteCurrency) == "" {
		return fmt.Errorf("vault.quote_currency cannot be empty")
	}
	if v.InitialDeposit < 0 {
		return fmt.Errorf("vault.initial_deposit must be >= 0")
	}
	return nil
}

func (b *BridgeConfig) validate() error {
	for name, script := range b.Scripts {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(script) == "" {
			return fmt.Errorf("bridge.scripts entries require name and file")
		}
	}
	return nil
}
