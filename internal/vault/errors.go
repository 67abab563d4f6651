package vault

import (
	"errors"
	"fmt"
)

// ErrLiveTrading 标记尚未接入真实经纪执行的 live 交易路径。
var ErrLiveTrading = errors.New("live trade execution is not implemented")

// ValidationError 表示调用参数不合法（金额非正、side/mode 未知等）。
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, v ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, v...)}
}

// InsufficientFundsError 表示余额不足，状态保持不变。
type InsufficientFundsError struct {
	Asset string
	Need  float64
	Have  float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance: need %.8f, have %.8f", e.Asset, e.Need, e.Have)
}

// PersistenceError 表示账本文档读写失败。写失败时磁盘状态未变，
// 调用方不应假定任何部分生效。
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("vault %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
