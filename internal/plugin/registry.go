package plugin

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"aura/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Registry 扫描插件目录，解析清单并绑定静态注册的后端能力。
// 单个插件的任何故障（清单非法、后端构造失败、运行期 panic）都被就地
// 隔离，绝不影响扫描其余插件或服务本身。
type Registry struct {
	dir    string
	deps   Deps
	schema *jsonschema.Schema

	mu        sync.RWMutex
	manifests map[string]Manifest
	caps      map[string]Capability // key 为命名空间化的 plugin_<id>
}

func NewRegistry(dir string, deps Deps) (*Registry, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("plugin registry requires a plugins dir")
	}
	schema, err := compileManifestSchema()
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema failed: %w", err)
	}
	return &Registry{
		dir:       dir,
		deps:      deps,
		schema:    schema,
		manifests: map[string]Manifest{},
		caps:      map[string]Capability{},
	}, nil
}

// capKey 为插件后端生成命名空间化标识，避免不同插件同名内部实现冲突。
func capKey(id string) string { return "plugin_" + id }

// Scan 重新扫描插件目录。同 id 重复扫描以最新结果覆盖旧注册。
func (r *Registry) Scan() {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		logger.Warnf("plugins dir %s unreadable: %v", r.dir, err)
		return
	}
	manifests := map[string]Manifest{}
	caps := map[string]Capability{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := r.dir + string(os.PathSeparator) + entry.Name()
		manifest, found, err := readManifest(dir, r.schema)
		if !found {
			// 没有清单的目录不是插件
			continue
		}
		if err != nil {
			logger.Warnf("plugin %s skipped: %v", entry.Name(), err)
			continue
		}
		manifests[manifest.ID] = manifest
		factory, ok := builtinFactory(manifest.ID)
		if !ok {
			logger.Warnf("plugin %s has no registered backend (%s), api calls will be inert", manifest.ID, manifest.BackendEntry)
			continue
		}
		cap, err := factory(r.deps)
		if err != nil {
			logger.Errorf("plugin %s backend load failed: %v", manifest.ID, err)
			continue
		}
		caps[capKey(manifest.ID)] = cap
	}
	r.mu.Lock()
	r.manifests = manifests
	r.caps = caps
	r.mu.Unlock()
	logger.Infof("plugin scan complete: %d manifests, %d backends", len(manifests), len(caps))
}

// Manifests 返回全部成功解析的清单（含无后端的），按 id 排序。
func (r *Registry) Manifests() []Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Manifest, 0, len(r.manifests))
	for _, m := range r.manifests {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Capability 返回指定插件的后端，nil 表示无后端。
func (r *Registry) Capability(id string) Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caps[capKey(id)]
}

// Dispatch 尝试把 /api/plugins/<id>/<action...> 请求交给对应插件处理。
// 返回 handled=false 的情形：未知插件、无后端、后端出错或 panic；
// 调用方应继续走后续路由层级。
func (r *Registry) Dispatch(ctx context.Context, method, id, action string, body map[string]any) (resp map[string]any, handled bool) {
	cap := r.Capability(id)
	if cap == nil {
		return nil, false
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("plugin %s panicked on %s %s: %v", id, method, action, rec)
			resp, handled = nil, false
		}
	}()
	out, err := cap.Handle(ctx, method, action, r.deps.Workspace, body)
	if err != nil {
		logger.Errorf("plugin %s failed on %s %s: %v", id, method, action, err)
		return nil, false
	}
	return out, true
}

// Watch 监听插件目录变化并去抖重扫，直到 ctx 取消。
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create plugins watcher failed: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watch plugins dir failed: %w", err)
	}
	const debounce = 500 * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("plugins watcher error: %v", err)
		case <-timerC:
			timer = nil
			timerC = nil
			logger.Infof("plugins dir changed, rescanning")
			r.Scan()
		}
	}
}
