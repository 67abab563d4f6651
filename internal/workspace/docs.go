package workspace

// 工作区文档与日志的逻辑名。物理路径由 Store 决定。
const (
	DocModelConfig      = "model_config"
	DocSimulationConfig = "simulation_config"
	DocPhysique         = "physique"
	DocAvatarState      = "avatar_state"
	DocSocial           = "social"
	DocVaultState       = "vault_state"
	DocTelemetry        = "telemetry"

	LogChanges         = "changes"
	LogReflections     = "reflections"
	LogProposals       = "proposals"
	LogProposalHistory = "proposal_history"
	LogEvents          = "significant_events"
	LogDreams          = "dreams"
	LogServer          = "server"
)

// LegacyWriteDocs 列出允许通过 legacy POST 路径整体覆盖的文档。
func LegacyWriteDocs() map[string]string {
	return map[string]string{
		"/update_model_config":      DocModelConfig,
		"/update_simulation_config": DocSimulationConfig,
		"/update_avatar_state":      DocAvatarState,
		"/update_physique":          DocPhysique,
		"/update_social":            DocSocial,
	}
}
