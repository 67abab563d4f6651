package plugin

import (
	"context"
	"sort"
	"sync"

	"aura/internal/vault"
	"aura/internal/workspace"
)

// Capability 是插件后端的处理入口。实现由编译期静态注册提供，
// 注册表只负责把清单绑定到已注册的实现上，不做任何运行时代码加载。
type Capability interface {
	Name() string
	Version() string
	Handle(ctx context.Context, method, action string, wctx *workspace.Context, body map[string]any) (map[string]any, error)
}

// Deps 提供内建插件可用的依赖。
type Deps struct {
	Workspace *workspace.Context
	Vault     *vault.Ledger
}

// Factory 按插件 id 构造后端能力。
type Factory func(deps Deps) (Capability, error)

var (
	builtinMu sync.RWMutex
	builtins  = map[string]Factory{}
)

// RegisterBuiltin 在编译期静态表中登记插件后端。重复登记覆盖旧项。
func RegisterBuiltin(id string, factory Factory) {
	if id == "" || factory == nil {
		return
	}
	builtinMu.Lock()
	builtins[id] = factory
	builtinMu.Unlock()
}

func builtinFactory(id string) (Factory, bool) {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	f, ok := builtins[id]
	return f, ok
}

// BuiltinIDs 返回已登记的后端 id（排序），用于启动摘要。
func BuiltinIDs() []string {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	out := make([]string, 0, len(builtins))
	for id := range builtins {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
