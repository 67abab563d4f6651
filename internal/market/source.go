package market

import "context"

// Source 提供符号的最新报价。
type Source interface {
	Price(ctx context.Context, symbol string) (float64, error)
}
