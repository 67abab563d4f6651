package vault

// 账本模式。
const (
	ModePaper = "paper"
	ModeLive  = "live"
)

// 交易类型。
const (
	SideBuy     = "buy"
	SideSell    = "sell"
	TypeDeposit = "deposit"
)

// State 是持久化的账本文档（vault_state）。
type State struct {
	Mode           string              `json:"mode"`
	Provider       string              `json:"provider"`
	Balances       map[string]float64  `json:"balances"`
	Positions      map[string]Position `json:"positions"`
	Transactions   []Transaction       `json:"transactions"`
	TotalDeposited float64             `json:"total_deposited"`
}

// Position 记录持仓数量与加权平均成本。
type Position struct {
	Amount   float64 `json:"amount"`
	AvgPrice float64 `json:"avg_price"`
}

// Transaction 是一条不可变流水，新记录只会前插。
type Transaction struct {
	ID        string  `json:"id"`
	Timestamp string  `json:"timestamp"`
	Symbol    string  `json:"symbol"`
	Amount    float64 `json:"amount"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	Type      string  `json:"type"`
	Mode      string  `json:"mode"`
}

func defaultState(quote string, initialDeposit float64) *State {
	s := &State{
		Mode:      ModePaper,
		Provider:  "paper",
		Balances:  map[string]float64{},
		Positions: map[string]Position{},
	}
	if initialDeposit > 0 {
		s.Balances[quote] = initialDeposit
		s.TotalDeposited = initialDeposit
	}
	return s
}

func (s *State) clone() *State {
	out := &State{
		Mode:           s.Mode,
		Provider:       s.Provider,
		Balances:       make(map[string]float64, len(s.Balances)),
		Positions:      make(map[string]Position, len(s.Positions)),
		Transactions:   make([]Transaction, len(s.Transactions)),
		TotalDeposited: s.TotalDeposited,
	}
	for k, v := range s.Balances {
		out.Balances[k] = v
	}
	for k, v := range s.Positions {
		out.Positions[k] = v
	}
	copy(out.Transactions, s.Transactions)
	return out
}
