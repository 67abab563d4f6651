package dashhttp

import (
	"io"
	"net/http"
	"time"

	"aura/internal/logger"
	"aura/internal/pkg/maputil"
	"aura/internal/store/sqlite"
	"aura/internal/workspace"

	"github.com/gin-gonic/gin"
)

const resolveProposalPath = "/resolve_proposal"

// handleLegacy 处理不带 /api 前缀的历史写路径：固定表整体覆盖文档，
// 外加一条 proposal 状态迁移。其余路径才是真正的 404。
func (h *handlers) handleLegacy(c *gin.Context) {
	path := c.Request.URL.Path
	if c.Request.Method == http.MethodPost {
		if doc, ok := workspace.LegacyWriteDocs()[path]; ok {
			h.legacyOverwrite(c, doc)
			return
		}
		if path == resolveProposalPath {
			h.legacyResolveProposal(c)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found", "path": path})
}

// legacyOverwrite 把请求体原样作为文档新内容整体覆盖。
func (h *handlers) legacyOverwrite(c *gin.Context, doc string) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "read body failed"})
		return
	}
	if err := h.wctx.Store.SaveRawDoc(doc, raw); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.recordAudit(c, sqlite.KindLegacyWrite, doc, gin.H{"bytes": len(raw)})
	c.JSON(http.StatusOK, gin.H{"success": true, "document": doc})
}

// legacyResolveProposal 把一条待定提案移入历史日志并打上 resolved 标记。
func (h *handlers) legacyResolveProposal(c *gin.Context) {
	body := readBody(c)
	id := maputil.String(body, "id")
	if id == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "proposal id is required"})
		return
	}
	pending := h.wctx.Store.ReadLines(workspace.LogProposals)
	idx := -1
	for i, entry := range pending {
		if maputil.String(entry, "id") == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "proposal not found", "id": id})
		return
	}
	resolved := pending[idx]
	resolved["resolved"] = true
	resolved["resolved_at"] = time.Now().Format(time.RFC3339)
	if err := h.wctx.Store.AppendLine(workspace.LogProposalHistory, resolved); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	remaining := append(pending[:idx:idx], pending[idx+1:]...)
	if err := h.wctx.Store.WriteLines(workspace.LogProposals, remaining); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.recordAudit(c, sqlite.KindProposal, id, resolved)
	c.JSON(http.StatusOK, gin.H{"success": true, "proposal": resolved})
}

func logFailedAudit(kind string, err error) {
	logger.Warnf("audit record (%s) failed: %v", kind, err)
}
