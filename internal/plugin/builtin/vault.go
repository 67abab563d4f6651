package builtin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aura/internal/pkg/maputil"
	"aura/internal/plugin"
	"aura/internal/vault"
	"aura/internal/workspace"
)

func init() {
	plugin.RegisterBuiltin("vault", newVaultCapability)
}

// vaultCapability 把纸面交易账本暴露为插件 API。
// 业务失败（校验、余额不足）转为 success=false 响应，仍算已处理；
// 只有意料之外的内部错误才以 error 返回给注册表。
type vaultCapability struct {
	ledger *vault.Ledger
}

func newVaultCapability(deps plugin.Deps) (plugin.Capability, error) {
	if deps.Vault == nil {
		return nil, fmt.Errorf("vault capability requires a ledger")
	}
	return &vaultCapability{ledger: deps.Vault}, nil
}

func (v *vaultCapability) Name() string    { return "vault" }
func (v *vaultCapability) Version() string { return "1.0.0" }

func (v *vaultCapability) Handle(ctx context.Context, method, action string, _ *workspace.Context, body map[string]any) (map[string]any, error) {
	head, rest, _ := strings.Cut(strings.Trim(action, "/"), "/")
	switch {
	case head == "status" && method == "GET":
		state, err := v.ledger.Status()
		if err != nil {
			return businessError(err)
		}
		return map[string]any{"success": true, "vault": state}, nil
	case head == "price" && method == "GET":
		symbol := rest
		if symbol == "" {
			return map[string]any{"success": false, "error": "symbol is required"}, nil
		}
		price, err := v.ledger.Price(ctx, symbol)
		if err != nil {
			return businessError(err)
		}
		return map[string]any{"success": true, "symbol": strings.ToUpper(symbol), "price": price}, nil
	case head == "trade" && method == "POST":
		tx, err := v.ledger.ExecuteTrade(ctx,
			maputil.String(body, "symbol"),
			maputil.Float(body, "amount"),
			maputil.String(body, "side"),
		)
		if err != nil {
			return businessError(err)
		}
		return map[string]any{"success": true, "transaction": tx}, nil
	case head == "deposit" && method == "POST":
		balance, err := v.ledger.Deposit(maputil.Float(body, "amount"))
		if err != nil {
			return businessError(err)
		}
		return map[string]any{"success": true, "balance": balance}, nil
	case head == "mode" && method == "POST":
		if err := v.ledger.SetMode(maputil.String(body, "mode")); err != nil {
			return businessError(err)
		}
		return map[string]any{"success": true, "mode": maputil.String(body, "mode")}, nil
	default:
		return map[string]any{"success": false, "error": fmt.Sprintf("unknown vault action %q", action)}, nil
	}
}

// businessError 区分可恢复的业务失败与内部错误。
func businessError(err error) (map[string]any, error) {
	var (
		ve *vault.ValidationError
		fe *vault.InsufficientFundsError
		pe *vault.PersistenceError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &fe), errors.As(err, &pe), errors.Is(err, vault.ErrLiveTrading):
		return map[string]any{"success": false, "error": err.Error()}, nil
	default:
		return nil, err
	}
}
