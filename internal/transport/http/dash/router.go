package dashhttp

import (
	"net/http"
	"strings"

	"aura/internal/bridge"
	"aura/internal/pkg/maputil"
	"aura/internal/plugin"
	"aura/internal/snapshot"
	"aura/internal/store/sqlite"
	"aura/internal/vault"
	"aura/internal/workspace"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	wctx      *workspace.Context
	registry  *plugin.Registry
	ledger    *vault.Ledger
	collector *snapshot.Collector
	bridges   *bridge.Bridges
	audit     *sqlite.AuditStore
	renderer  *renderer
}

// handleAPI 实现 /api 下的两级解析：插件命名空间优先，
// 未处理则回落到核心表；核心表也未命中时返回统一的 unknown endpoint
// 响应体（HTTP 仍为 200，见错误语义约定）。
func (h *handlers) handleAPI(c *gin.Context) {
	path := strings.TrimSuffix(c.Param("apipath"), "/")

	if rest, ok := strings.CutPrefix(path, "/plugins/"); ok {
		id, action, _ := strings.Cut(rest, "/")
		if id != "" {
			body := readBody(c)
			if resp, handled := h.registry.Dispatch(c.Request.Context(), c.Request.Method, id, action, body); handled {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
		// 未知插件/无后端/后端出错：继续尝试核心表
	}
	h.dispatchCore(c, path)
}

// dispatchCore 按固定核心表匹配精确路径与路径前缀。
func (h *handlers) dispatchCore(c *gin.Context, path string) {
	method := c.Request.Method
	switch {
	case path == "/vault/status" && method == http.MethodGet:
		h.coreVaultStatus(c)
	case path == "/vault/trade" && method == http.MethodPost:
		h.coreVaultTrade(c)
	case path == "/vault/deposit" && method == http.MethodPost:
		h.coreVaultDeposit(c)
	case path == "/vault/mode" && method == http.MethodPost:
		h.coreVaultMode(c)
	case strings.HasPrefix(path, "/vault/price/") && method == http.MethodGet:
		h.coreVaultPrice(c, strings.TrimPrefix(path, "/vault/price/"))
	case path == "/vault/chart" && method == http.MethodGet:
		h.coreVaultChart(c)
	case path == "/config/model" && method == http.MethodGet:
		h.coreConfigDoc(c, workspace.DocModelConfig)
	case path == "/config/simulation" && method == http.MethodGet:
		h.coreConfigDoc(c, workspace.DocSimulationConfig)
	case path == "/profiles" && method == http.MethodGet:
		h.coreListDir(c, "profiles")
	case path == "/backups" && method == http.MethodGet:
		h.coreListDir(c, "backups")
	case path == "/telemetry" && method == http.MethodGet:
		h.coreLogTail(c, workspace.DocTelemetry)
	case strings.HasPrefix(path, "/logs/") && method == http.MethodGet:
		h.coreLogTail(c, strings.TrimPrefix(path, "/logs/"))
	case path == "/bridges/health" && method == http.MethodGet:
		h.coreBridgeHealth(c)
	case path == "/avatar/exists" && method == http.MethodGet:
		h.coreAvatarExists(c)
	case path == "/social/add" && method == http.MethodPost:
		h.coreSocialAdd(c)
	case path == "/plugins" && method == http.MethodGet:
		c.JSON(http.StatusOK, gin.H{"success": true, "plugins": h.registry.Manifests()})
	case path == "/audit" && method == http.MethodGet:
		h.coreAuditRecent(c)
	default:
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "unknown endpoint", "path": "/api" + path})
	}
}

// readBody 宽松解析 JSON 请求体；空体或非法 JSON 一律当作空参数。
func readBody(c *gin.Context) map[string]any {
	body := map[string]any{}
	if c.Request.Body == nil {
		return body
	}
	_ = c.ShouldBindJSON(&body)
	return body
}

func (h *handlers) coreVaultStatus(c *gin.Context) {
	state, err := h.ledger.Status()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vault": state})
}

func (h *handlers) coreVaultTrade(c *gin.Context) {
	body := readBody(c)
	tx, err := h.ledger.ExecuteTrade(c.Request.Context(),
		maputil.String(body, "symbol"),
		maputil.Float(body, "amount"),
		maputil.String(body, "side"),
	)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.recordAudit(c, sqlite.KindTrade, tx.Symbol, tx)
	c.JSON(http.StatusOK, gin.H{"success": true, "transaction": tx})
}

func (h *handlers) coreVaultDeposit(c *gin.Context) {
	body := readBody(c)
	amount := maputil.Float(body, "amount")
	balance, err := h.ledger.Deposit(amount)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.recordAudit(c, sqlite.KindDeposit, h.ledger.QuoteCurrency(), gin.H{"amount": amount, "balance": balance})
	c.JSON(http.StatusOK, gin.H{"success": true, "balance": balance})
}

func (h *handlers) coreVaultMode(c *gin.Context) {
	body := readBody(c)
	mode := maputil.String(body, "mode")
	if err := h.ledger.SetMode(mode); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.recordAudit(c, sqlite.KindModeChange, mode, body)
	c.JSON(http.StatusOK, gin.H{"success": true, "mode": mode})
}

func (h *handlers) coreVaultPrice(c *gin.Context, symbol string) {
	price, err := h.ledger.Price(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "symbol": strings.ToUpper(symbol), "price": price})
}

func (h *handlers) coreVaultChart(c *gin.Context) {
	page, err := h.ledger.RenderEquityChart()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// coreConfigDoc 返回配置文档，敏感键脱敏。
func (h *handlers) coreConfigDoc(c *gin.Context, name string) {
	doc := h.wctx.Store.LoadDoc(name)
	c.JSON(http.StatusOK, gin.H{"success": true, "config": maputil.MaskSecrets(doc)})
}

func (h *handlers) coreListDir(c *gin.Context, sub string) {
	files := h.wctx.Store.ListDir(sub)
	if files == nil {
		files = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": files})
}

// coreLogTail 返回行式日志的尾部，支持 ?lines= 与 ?level= 过滤。
func (h *handlers) coreLogTail(c *gin.Context, name string) {
	lines := maputil.Int(map[string]any{"lines": c.Query("lines")}, "lines")
	if lines <= 0 {
		lines = 50
	}
	entries := h.wctx.Store.TailLines(name, lines)
	if level := strings.ToLower(strings.TrimSpace(c.Query("level"))); level != "" {
		filtered := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			if strings.ToLower(maputil.String(entry, "level")) == level {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []map[string]any{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "log": name, "entries": entries})
}

func (h *handlers) coreBridgeHealth(c *gin.Context) {
	if h.bridges == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "bridges are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bridges": h.bridges.Check()})
}

// coreAvatarExists 检查 avatar 状态文档引用的媒体文件是否存在。
func (h *handlers) coreAvatarExists(c *gin.Context) {
	exists := h.wctx.Store.Exists(workspace.DocAvatarState)
	c.JSON(http.StatusOK, gin.H{"success": true, "exists": exists})
}

func (h *handlers) coreSocialAdd(c *gin.Context) {
	entity, err := h.wctx.Store.AddSocialEntity(readBody(c))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entity": entity})
}

func (h *handlers) coreAuditRecent(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "audit store is disabled"})
		return
	}
	limit := maputil.Int(map[string]any{"limit": c.Query("limit")}, "limit")
	records, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	if records == nil {
		records = []sqlite.AuditRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": records})
}

// recordAudit 尽力而为地写审计流水，失败只记日志。
func (h *handlers) recordAudit(c *gin.Context, kind, ref string, payload any) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Record(c.Request.Context(), kind, ref, payload); err != nil {
		logFailedAudit(kind, err)
	}
}
