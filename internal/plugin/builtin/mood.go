package builtin

import (
	"context"
	"fmt"

	"aura/internal/plugin"
	"aura/internal/workspace"
)

func init() {
	plugin.RegisterBuiltin("mood", newMoodCapability)
}

// moodCapability 汇总 physique 需求值与 avatar 状态，给仪表盘侧栏用。
type moodCapability struct{}

func newMoodCapability(plugin.Deps) (plugin.Capability, error) {
	return &moodCapability{}, nil
}

func (m *moodCapability) Name() string    { return "mood" }
func (m *moodCapability) Version() string { return "1.0.0" }

func (m *moodCapability) Handle(_ context.Context, method, action string, wctx *workspace.Context, _ map[string]any) (map[string]any, error) {
	if wctx == nil || wctx.Store == nil {
		return nil, fmt.Errorf("mood capability requires a workspace store")
	}
	if method != "GET" {
		return map[string]any{"success": false, "error": "mood only supports GET"}, nil
	}
	switch action {
	case "status", "":
		physique := wctx.Store.LoadDoc(workspace.DocPhysique)
		avatar := wctx.Store.LoadDoc(workspace.DocAvatarState)
		needs, _ := physique["needs"].(map[string]any)
		return map[string]any{
			"success": true,
			"needs":   needs,
			"avatar":  avatar,
		}, nil
	default:
		return map[string]any{"success": false, "error": fmt.Sprintf("unknown mood action %q", action)}, nil
	}
}
