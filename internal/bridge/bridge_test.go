package bridge

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReportsMissingAndPresentScripts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "voice.py"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vision.py"), []byte("#!/bin/sh\n"), 0o644))

	b := New(dir, map[string]string{
		"voice":  "voice.py",
		"vision": "vision.py",
		"motion": "motion.py",
	}, time.Second)

	checks := b.Check()
	require.Len(t, checks, 3)
	// 按名称排序：motion, vision, voice
	assert.Equal(t, "motion", checks[0].Name)
	assert.False(t, checks[0].Present)
	assert.Equal(t, "vision", checks[1].Name)
	assert.True(t, checks[1].Present)
	assert.False(t, checks[1].Executable)
	assert.Equal(t, "voice", checks[2].Name)
	assert.True(t, checks[2].Present)
	assert.True(t, checks[2].Executable)
}

func TestRunUnknownScript(t *testing.T) {
	b := New(t.TempDir(), map[string]string{}, time.Second)
	_, err := b.Run(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown bridge script")
}

func TestRunCapturesStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not portable to windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "echo.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho hello $1\n"), 0o755))

	b := New(dir, map[string]string{"echo": "echo.sh"}, time.Second)
	out, err := b.Run(context.Background(), "echo", "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestRunFailureWrapsStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not portable to windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0o755))

	b := New(dir, map[string]string{"fail": "fail.sh"}, time.Second)
	_, err := b.Run(context.Background(), "fail")
	require.Error(t, err)
	var procErr *ExternalProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "fail", procErr.Script)
	assert.Contains(t, procErr.Output, "boom")
}

func TestRunTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not portable to windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "slow.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o755))

	b := New(dir, map[string]string{"slow": "slow.sh"}, 100*time.Millisecond)
	_, err := b.Run(context.Background(), "slow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
