package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"aura/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCapability struct {
	fail  bool
	panic bool
}

func (e *echoCapability) Name() string    { return "echo" }
func (e *echoCapability) Version() string { return "1.0.0" }

func (e *echoCapability) Handle(_ context.Context, method, action string, _ *workspace.Context, _ map[string]any) (map[string]any, error) {
	if e.panic {
		panic("boom")
	}
	if e.fail {
		return nil, fmt.Errorf("echo backend broken")
	}
	return map[string]any{"success": true, "method": method, "action": action}, nil
}

func writePlugin(t *testing.T, root, id, manifest string) {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifest), 0o644))
}

func newTestRegistry(t *testing.T, dir string) *Registry {
	t.Helper()
	registry, err := NewRegistry(dir, Deps{})
	require.NoError(t, err)
	return registry
}

func TestScanRegistersGoodSkipsBad(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "alpha", `{"name": "Alpha"}`)
	writePlugin(t, dir, "beta", `{"name": "Beta", "version": "2.1.0"}`)
	writePlugin(t, dir, "broken", `{"name": `)
	writePlugin(t, dir, "nameless", `{"version": "1.0.0"}`)
	// 没有清单的目录不是插件
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))

	registry := newTestRegistry(t, dir)
	registry.Scan()

	manifests := registry.Manifests()
	require.Len(t, manifests, 2)
	assert.Equal(t, "alpha", manifests[0].ID)
	assert.Equal(t, "Alpha", manifests[0].Name)
	assert.Equal(t, "1.0.0", manifests[0].Version)
	assert.Equal(t, "beta", manifests[1].ID)
	assert.Equal(t, "2.1.0", manifests[1].Version)
}

func TestScanYAMLManifestFallback(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "gamma")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "manifest.yaml"), []byte("name: Gamma\nversion: 0.3.0\n"), 0o644))

	registry := newTestRegistry(t, dir)
	registry.Scan()

	manifests := registry.Manifests()
	require.Len(t, manifests, 1)
	assert.Equal(t, "gamma", manifests[0].ID)
	assert.Equal(t, "0.3.0", manifests[0].Version)
}

func TestManifestIDAndPathInjected(t *testing.T) {
	dir := t.TempDir()
	// 文件里的 id/path 必须被目录推导值覆盖
	writePlugin(t, dir, "delta", `{"name": "Delta", "id": "spoofed", "path": "/elsewhere"}`)

	registry := newTestRegistry(t, dir)
	registry.Scan()

	manifests := registry.Manifests()
	require.Len(t, manifests, 1)
	assert.Equal(t, "delta", manifests[0].ID)
	assert.Equal(t, filepath.Join(dir, "delta"), manifests[0].Path)
}

func TestDispatchUnknownPluginNotHandled(t *testing.T) {
	registry := newTestRegistry(t, t.TempDir())
	registry.Scan()
	_, handled := registry.Dispatch(context.Background(), "GET", "doesnotexist", "x", nil)
	assert.False(t, handled)
}

func TestDispatchManifestWithoutBackendIsInert(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "ghost", `{"name": "Ghost"}`)
	registry := newTestRegistry(t, dir)
	registry.Scan()

	require.Len(t, registry.Manifests(), 1)
	_, handled := registry.Dispatch(context.Background(), "GET", "ghost", "status", nil)
	assert.False(t, handled)
}

func TestDispatchSuccess(t *testing.T) {
	registry := newTestRegistry(t, t.TempDir())
	registry.caps[capKey("echo")] = &echoCapability{}

	resp, handled := registry.Dispatch(context.Background(), "GET", "echo", "ping/deep", nil)
	require.True(t, handled)
	assert.Equal(t, "ping/deep", resp["action"])
	assert.Equal(t, "GET", resp["method"])
}

func TestDispatchContainsBackendFailures(t *testing.T) {
	registry := newTestRegistry(t, t.TempDir())
	registry.caps[capKey("failing")] = &echoCapability{fail: true}
	registry.caps[capKey("panicking")] = &echoCapability{panic: true}

	_, handled := registry.Dispatch(context.Background(), "GET", "failing", "x", nil)
	assert.False(t, handled)
	_, handled = registry.Dispatch(context.Background(), "GET", "panicking", "x", nil)
	assert.False(t, handled)
}

func TestRescanOverwritesRegistration(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "alpha", `{"name": "Alpha", "version": "1.0.0"}`)
	registry := newTestRegistry(t, dir)
	registry.Scan()
	require.Equal(t, "1.0.0", registry.Manifests()[0].Version)

	writePlugin(t, dir, "alpha", `{"name": "Alpha", "version": "1.1.0"}`)
	registry.Scan()
	manifests := registry.Manifests()
	require.Len(t, manifests, 1)
	assert.Equal(t, "1.1.0", manifests[0].Version)
}

func TestBuiltinFactoryErrorLeavesManifest(t *testing.T) {
	dir := t.TempDir()
	writePlugin(t, dir, "flaky", `{"name": "Flaky"}`)
	RegisterBuiltin("flaky", func(Deps) (Capability, error) {
		return nil, fmt.Errorf("missing dependency")
	})
	t.Cleanup(func() {
		builtinMu.Lock()
		delete(builtins, "flaky")
		builtinMu.Unlock()
	})

	registry := newTestRegistry(t, dir)
	registry.Scan()

	require.Len(t, registry.Manifests(), 1)
	assert.Nil(t, registry.Capability("flaky"))
}
