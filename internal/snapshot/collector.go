package snapshot

import (
	"time"

	"aura/internal/logger"
	"aura/internal/pkg/maputil"
	"aura/internal/plugin"
	"aura/internal/vault"
	"aura/internal/workspace"
)

const recentEventCount = 20

// Collector 为仪表盘组装一份新鲜的状态快照。
// 每个文档都容忍缺失/损坏（降级为空值），快照永远可渲染。
type Collector struct {
	store    *workspace.Store
	ledger   *vault.Ledger
	registry *plugin.Registry
}

func NewCollector(store *workspace.Store, ledger *vault.Ledger, registry *plugin.Registry) *Collector {
	return &Collector{store: store, ledger: ledger, registry: registry}
}

// Collect 读取全部文档并合并插件清单列表。
func (c *Collector) Collect() map[string]any {
	snap := map[string]any{
		"generated_at":      time.Now().Format(time.RFC3339),
		"model_config":      maputil.MaskSecrets(c.store.LoadDoc(workspace.DocModelConfig)),
		"simulation_config": c.store.LoadDoc(workspace.DocSimulationConfig),
		"physique":          c.store.LoadDoc(workspace.DocPhysique),
		"avatar_state":      c.store.LoadDoc(workspace.DocAvatarState),
		"social":            c.store.LoadDoc(workspace.DocSocial),
		"recent_events":     c.store.TailLines(workspace.LogEvents, recentEventCount),
	}
	if c.ledger != nil {
		state, err := c.ledger.Status()
		if err != nil {
			logger.Warnf("snapshot: vault status unavailable: %v", err)
		} else {
			snap["vault"] = state
		}
	}
	manifests := []plugin.Manifest{}
	if c.registry != nil {
		manifests = c.registry.Manifests()
	}
	snap["plugins"] = manifests
	return snap
}
