package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperPriceStaysWithinNoiseBand(t *testing.T) {
	source := NewPaperSource(map[string]float64{"BTC": 45000}, 100)
	for i := 0; i < 200; i++ {
		price, err := source.Price(context.Background(), "BTC")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, price, 45000*(1-noiseBand))
		assert.LessOrEqual(t, price, 45000*(1+noiseBand))
	}
}

func TestPaperPriceSymbolNormalization(t *testing.T) {
	source := NewPaperSource(map[string]float64{" eth ": 2500}, 100)
	price, err := source.Price(context.Background(), "ETH")
	require.NoError(t, err)
	assert.InDelta(t, 2500, price, 2500*noiseBand+1e-9)
}

func TestPaperPriceUnknownSymbolUsesDefault(t *testing.T) {
	source := NewPaperSource(nil, 100)
	price, err := source.Price(context.Background(), "XYZ")
	require.NoError(t, err)
	assert.InDelta(t, 100, price, 100*noiseBand+1e-9)
}

func TestPaperSourceIgnoresNonPositiveReference(t *testing.T) {
	source := NewPaperSource(map[string]float64{"BAD": -5}, 0)
	price, err := source.Price(context.Background(), "BAD")
	require.NoError(t, err)
	// 非法参考价被丢弃，回落到默认 100
	assert.InDelta(t, 100, price, 100*noiseBand+1e-9)
}
