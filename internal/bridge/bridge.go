package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Health 描述单个桥接脚本的可用性。
type Health struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Present    bool   `json:"present"`
	Executable bool   `json:"executable"`
}

// ExternalProcessError 表示桥接进程非零退出或超时。
type ExternalProcessError struct {
	Script string
	Output string
	Err    error
}

func (e *ExternalProcessError) Error() string {
	return fmt.Sprintf("bridge %s failed: %v (%s)", e.Script, e.Err, strings.TrimSpace(e.Output))
}

func (e *ExternalProcessError) Unwrap() error { return e.Err }

// Bridges 管理命名桥接脚本：健康检查与同步执行。
// 执行是阻塞的，由固定超时约束；不重试、不后台脱管。
type Bridges struct {
	dir        string
	scripts    map[string]string
	runTimeout time.Duration
}

func New(dir string, scripts map[string]string, runTimeout time.Duration) *Bridges {
	if runTimeout <= 0 {
		runTimeout = 2 * time.Minute
	}
	return &Bridges{dir: dir, scripts: scripts, runTimeout: runTimeout}
}

// Check 报告每个脚本的存在性与可执行位，按名称排序。
func (b *Bridges) Check() []Health {
	out := make([]Health, 0, len(b.scripts))
	for name, file := range b.scripts {
		path := filepath.Join(b.dir, file)
		h := Health{Name: name, Path: path}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			h.Present = true
			h.Executable = info.Mode()&0o111 != 0
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Run 同步执行命名脚本并返回 stdout。超时或非零退出都作为
// ExternalProcessError 上抛，stderr 附在错误里。
func (b *Bridges) Run(ctx context.Context, name string, args ...string) (string, error) {
	file, ok := b.scripts[name]
	if !ok {
		return "", fmt.Errorf("unknown bridge script %q", name)
	}
	path := filepath.Join(b.dir, file)
	ctx, cancel := context.WithTimeout(ctx, b.runTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s", b.runTimeout)
		}
		return "", &ExternalProcessError{Script: name, Output: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}
