package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"aura/internal/market"
	"aura/internal/workspace"

	"github.com/shopspring/decimal"
)

// Ledger 管理 vault_state 文档上的纸面交易状态机。
// 所有操作遵循 read-modify-write：先读盘，内存改写副本，成功落盘后才算生效；
// 落盘失败即视为整体回滚。单个互斥锁保证进程内对该文档的单写者模型。
type Ledger struct {
	mu    sync.Mutex
	store *workspace.Store
	quote string

	paper market.Source
	live  market.Source // nil 表示 live 行情未接入

	initialDeposit float64
}

// Options 描述账本依赖。
type Options struct {
	Store          *workspace.Store
	QuoteCurrency  string
	Paper          market.Source
	Live           market.Source
	InitialDeposit float64
}

func NewLedger(opts Options) (*Ledger, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("vault requires a workspace store")
	}
	if opts.Paper == nil {
		return nil, fmt.Errorf("vault requires a paper price source")
	}
	quote := strings.ToUpper(strings.TrimSpace(opts.QuoteCurrency))
	if quote == "" {
		quote = "USD"
	}
	return &Ledger{
		store:          opts.Store,
		quote:          quote,
		paper:          opts.Paper,
		live:           opts.Live,
		initialDeposit: opts.InitialDeposit,
	}, nil
}

// QuoteCurrency 返回账本的计价货币。
func (l *Ledger) QuoteCurrency() string { return l.quote }

// EnsureState 返回持久化的账本文档，首次访问时创建默认 paper 空账本。
// 文件缺失不报错；仅在已存在文档无法解析时返回 PersistenceError。
func (l *Ledger) EnsureState() (*State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

func (l *Ledger) loadLocked() (*State, error) {
	raw := l.store.RawDoc(workspace.DocVaultState)
	if raw == nil {
		state := defaultState(l.quote, l.initialDeposit)
		if err := l.persistLocked(state); err != nil {
			return nil, err
		}
		return state, nil
	}
	state := &State{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if state.Mode == "" {
		state.Mode = ModePaper
	}
	if state.Balances == nil {
		state.Balances = map[string]float64{}
	}
	if state.Positions == nil {
		state.Positions = map[string]Position{}
	}
	return state, nil
}

func (l *Ledger) persistLocked(state *State) error {
	if err := l.store.SaveDoc(workspace.DocVaultState, state); err != nil {
		return &PersistenceError{Op: "persist", Err: err}
	}
	return nil
}

// Price 返回符号的当前报价。paper 模式每次独立重采样，
// live 模式委托外部行情源。
func (l *Ledger) Price(ctx context.Context, symbol string) (float64, error) {
	state, err := l.EnsureState()
	if err != nil {
		return 0, err
	}
	return l.priceForMode(ctx, state.Mode, symbol)
}

func (l *Ledger) priceForMode(ctx context.Context, mode, symbol string) (float64, error) {
	if mode == ModeLive {
		if l.live == nil {
			return 0, fmt.Errorf("live market data source is not configured")
		}
		return l.live.Price(ctx, symbol)
	}
	return l.paper.Price(ctx, symbol)
}

// ExecuteTrade 以当前报价执行一笔买入或卖出。
// 失败路径（参数校验、余额不足、落盘失败）保证磁盘状态不变。
func (l *Ledger) ExecuteTrade(ctx context.Context, symbol string, amount float64, side string) (*Transaction, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	side = strings.ToLower(strings.TrimSpace(side))
	if symbol == "" {
		return nil, validationf("symbol is required")
	}
	if symbol == l.quote {
		return nil, validationf("cannot trade the quote currency %s", l.quote)
	}
	if amount <= 0 {
		return nil, validationf("amount must be > 0, got %v", amount)
	}
	if side != SideBuy && side != SideSell {
		return nil, validationf("side must be buy or sell, got %q", side)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	state, err := l.loadLocked()
	if err != nil {
		return nil, err
	}
	if state.Mode == ModeLive {
		return nil, ErrLiveTrading
	}
	price, err := l.priceForMode(ctx, state.Mode, symbol)
	if err != nil {
		return nil, err
	}

	decAmount := decimal.NewFromFloat(amount)
	decPrice := decimal.NewFromFloat(price)
	decTotal := decAmount.Mul(decPrice)
	total, _ := decTotal.Float64()

	switch side {
	case SideBuy:
		quoteBal := decimal.NewFromFloat(state.Balances[l.quote])
		if quoteBal.LessThan(decTotal) {
			return nil, &InsufficientFundsError{Asset: l.quote, Need: total, Have: state.Balances[l.quote]}
		}
		state.Balances[l.quote], _ = quoteBal.Sub(decTotal).Float64()
		assetBal := decimal.NewFromFloat(state.Balances[symbol])
		state.Balances[symbol], _ = assetBal.Add(decAmount).Float64()
		state.Positions[symbol] = mergePosition(state.Positions[symbol], decAmount, decPrice)
	case SideSell:
		assetBal := decimal.NewFromFloat(state.Balances[symbol])
		if assetBal.LessThan(decAmount) {
			return nil, &InsufficientFundsError{Asset: symbol, Need: amount, Have: state.Balances[symbol]}
		}
		state.Balances[symbol], _ = assetBal.Sub(decAmount).Float64()
		quoteBal := decimal.NewFromFloat(state.Balances[l.quote])
		state.Balances[l.quote], _ = quoteBal.Add(decTotal).Float64()
		if pos, ok := state.Positions[symbol]; ok {
			remaining := decimal.NewFromFloat(pos.Amount).Sub(decAmount)
			if remaining.LessThanOrEqual(decimal.Zero) {
				delete(state.Positions, symbol)
			} else {
				pos.Amount, _ = remaining.Float64()
				state.Positions[symbol] = pos
			}
		}
	}

	tx := newTransaction(symbol, amount, price, total, side, state.Mode)
	state.Transactions = append([]Transaction{tx}, state.Transactions...)
	if err := l.persistLocked(state); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Deposit 向计价货币余额充值。
func (l *Ledger) Deposit(amount float64) (float64, error) {
	if amount <= 0 {
		return 0, validationf("deposit amount must be > 0, got %v", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	state, err := l.loadLocked()
	if err != nil {
		return 0, err
	}
	decAmount := decimal.NewFromFloat(amount)
	state.Balances[l.quote], _ = decimal.NewFromFloat(state.Balances[l.quote]).Add(decAmount).Float64()
	state.TotalDeposited, _ = decimal.NewFromFloat(state.TotalDeposited).Add(decAmount).Float64()
	tx := newTransaction(l.quote, amount, 1, amount, TypeDeposit, state.Mode)
	state.Transactions = append([]Transaction{tx}, state.Transactions...)
	if err := l.persistLocked(state); err != nil {
		return 0, err
	}
	return state.Balances[l.quote], nil
}

// SetMode 切换 paper/live 并无条件持久化；不触发任何持仓重估。
func (l *Ledger) SetMode(mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode != ModePaper && mode != ModeLive {
		return validationf("mode must be paper or live, got %q", mode)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	state, err := l.loadLocked()
	if err != nil {
		return err
	}
	state.Mode = mode
	if mode == ModeLive {
		state.Provider = "binance"
	} else {
		state.Provider = "paper"
	}
	return l.persistLocked(state)
}

// Status 返回账本文档的只读投影。
func (l *Ledger) Status() (*State, error) {
	state, err := l.EnsureState()
	if err != nil {
		return nil, err
	}
	return state.clone(), nil
}

// EquityPoint 是净值曲线上的一个采样点。
type EquityPoint struct {
	Timestamp string  `json:"timestamp"`
	Quote     float64 `json:"quote_balance"`
}

// EquitySeries 按时间正序重放流水，给出每笔操作后的计价货币余额轨迹。
func (l *Ledger) EquitySeries() ([]EquityPoint, error) {
	state, err := l.EnsureState()
	if err != nil {
		return nil, err
	}
	balance := decimal.Zero
	points := make([]EquityPoint, 0, len(state.Transactions))
	for i := len(state.Transactions) - 1; i >= 0; i-- {
		tx := state.Transactions[i]
		total := decimal.NewFromFloat(tx.Total)
		switch tx.Type {
		case SideBuy:
			balance = balance.Sub(total)
		case SideSell, TypeDeposit:
			balance = balance.Add(total)
		}
		quote, _ := balance.Float64()
		points = append(points, EquityPoint{Timestamp: tx.Timestamp, Quote: quote})
	}
	return points, nil
}

func mergePosition(existing Position, amount, price decimal.Decimal) Position {
	if existing.Amount <= 0 {
		a, _ := amount.Float64()
		p, _ := price.Float64()
		return Position{Amount: a, AvgPrice: p}
	}
	oldAmount := decimal.NewFromFloat(existing.Amount)
	oldAvg := decimal.NewFromFloat(existing.AvgPrice)
	newAmount := oldAmount.Add(amount)
	newAvg := oldAmount.Mul(oldAvg).Add(amount.Mul(price)).Div(newAmount)
	a, _ := newAmount.Float64()
	p, _ := newAvg.Float64()
	return Position{Amount: a, AvgPrice: p}
}

func newTransaction(symbol string, amount, price, total float64, txType, mode string) Transaction {
	now := time.Now()
	return Transaction{
		ID:        fmt.Sprintf("tx_%d", now.UnixNano()),
		Timestamp: now.Format(time.RFC3339),
		Symbol:    symbol,
		Amount:    amount,
		Price:     price,
		Total:     total,
		Type:      txType,
		Mode:      mode,
	}
}
