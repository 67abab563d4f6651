package dashhttp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// stateToken 是模板中被快照 JSON 替换的占位符。
// 渲染只做这一次文本替换，不求值任何模板语言；注入内容经 JSON
// 序列化转义，不可能再含占位符本身。
const stateToken = "__AURA_STATE__"

// renderer 缓存模板内容并以 mtime 失效。touch 会触发一次廉价重读。
type renderer struct {
	path string

	mu      sync.Mutex
	cached  []byte
	modTime time.Time
}

func newRenderer(path string) *renderer {
	return &renderer{path: path}
}

func (r *renderer) template() ([]byte, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return nil, fmt.Errorf("dashboard template unavailable: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil || info.ModTime().After(r.modTime) {
		raw, err := os.ReadFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("read dashboard template failed: %w", err)
		}
		r.cached = raw
		r.modTime = info.ModTime()
	}
	return r.cached, nil
}

// render 把快照序列化后替换进模板。
func (r *renderer) render(snapshot map[string]any) ([]byte, error) {
	tpl, err := r.template()
	if err != nil {
		return nil, err
	}
	state, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode state snapshot failed: %w", err)
	}
	return bytes.ReplaceAll(tpl, []byte(stateToken), state), nil
}

// handleDashboard 采集一份新鲜快照并渲染仪表盘页。
func (h *handlers) handleDashboard(c *gin.Context) {
	page, err := h.renderer.render(h.collector.Collect())
	if err != nil {
		c.String(http.StatusNotFound, "dashboard template not found")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
