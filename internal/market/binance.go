package market

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
)

// BinanceSource 基于 go-binance SDK 提供 live 模式报价。
type BinanceSource struct {
	client  *binance.Client
	quote   string
	timeout time.Duration
}

// BinanceConfig 描述 live 行情接入方式。
type BinanceConfig struct {
	RESTBaseURL   string
	QuoteCurrency string
	Timeout       time.Duration
}

func NewBinanceSource(cfg BinanceConfig) *BinanceSource {
	client := binance.NewClient("", "")
	if base := strings.TrimSpace(cfg.RESTBaseURL); base != "" {
		client.BaseURL = base
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.HTTPClient = &http.Client{Timeout: timeout}
	quote := strings.ToUpper(strings.TrimSpace(cfg.QuoteCurrency))
	if quote == "" || quote == "USD" {
		// Binance spot 报价对没有 USD，用 USDT 对齐。
		quote = "USDT"
	}
	return &BinanceSource{client: client, quote: quote, timeout: timeout}
}

func (s *BinanceSource) Price(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("symbol is required")
	}
	pair := symbol + s.quote
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	prices, err := s.client.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch price for %s failed: %w", pair, err)
	}
	for _, item := range prices {
		if item == nil || item.Symbol != pair {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(item.Price), 64)
		if err != nil {
			return 0, fmt.Errorf("parse price for %s failed: %w", pair, err)
		}
		return value, nil
	}
	return 0, fmt.Errorf("no price returned for %s", pair)
}
