package market

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// noiseBand 为纸面报价的随机扰动幅度（±2%）。
const noiseBand = 0.02

// PaperSource 用固定参考价加随机扰动模拟行情。
// 每次调用独立重采样，不对先前报价做任何锁定。
type PaperSource struct {
	reference  map[string]float64
	defaultRef float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPaperSource(reference map[string]float64, defaultRef float64) *PaperSource {
	if defaultRef <= 0 {
		defaultRef = 100.0
	}
	normalized := make(map[string]float64, len(reference))
	for symbol, price := range reference {
		if price <= 0 {
			continue
		}
		normalized[strings.ToUpper(strings.TrimSpace(symbol))] = price
	}
	return &PaperSource{
		reference:  normalized,
		defaultRef: defaultRef,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *PaperSource) Price(_ context.Context, symbol string) (float64, error) {
	base, ok := p.reference[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		base = p.defaultRef
	}
	p.mu.Lock()
	factor := 1 + (p.rng.Float64()*2-1)*noiseBand
	p.mu.Unlock()
	return base * factor, nil
}
