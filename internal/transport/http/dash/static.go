package dashhttp

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// contentTypes 是静态资源的固定扩展名表；未列出的扩展名回退到
// 系统 mime 表，再兜底 octet-stream。
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".woff": "font/woff",
}

func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ctype, ok := contentTypes[ext]; ok {
		return ctype
	}
	if ctype := mime.TypeByExtension(ext); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// serveTree 以原始字节流服务目录树下的文件，缺失返回 404。
func (h *handlers) serveTree(base string) gin.HandlerFunc {
	return func(c *gin.Context) {
		serveFileFrom(c, base, c.Param("filepath"))
	}
}

// servePluginAssets 服务插件目录下的前端资源（css/js/图片等）。
func (h *handlers) servePluginAssets(c *gin.Context) {
	rel := c.Param("filepath")
	if _, ok := contentTypes[strings.ToLower(filepath.Ext(rel))]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
		return
	}
	serveFileFrom(c, h.wctx.PluginsDir, rel)
}

func serveFileFrom(c *gin.Context, base, rel string) {
	rel = strings.TrimPrefix(filepath.Clean("/"+rel), "/")
	path := filepath.Join(base, rel)
	// Clean 后再校验，防止 .. 逃出目录树
	if !strings.HasPrefix(path, filepath.Clean(base)+string(os.PathSeparator)) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
		return
	}
	c.Data(http.StatusOK, contentTypeFor(path), raw)
}
