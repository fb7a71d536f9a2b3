package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"workbench/internal/config"
	"workbench/internal/log"
	"workbench/internal/security"

	"github.com/stretchr/testify/require"
)

// testKit builds a Kit rooted at a fresh temp directory, with docker
// disabled so filesystem and git tests never touch a daemon.
func testKit(t *testing.T) (*Kit, string) {
	t.Helper()
	root := t.TempDir()

	cfg := &config.Config{}
	cfg.Workspace.Root = root
	cfg.Sandbox.Enabled = true
	cfg.Dispatch.Timeout = 10 * time.Second
	cfg.Limits.MaxReadBytes = 1 << 20
	cfg.Limits.MaxBatchFiles = 10
	cfg.Limits.MaxListEntries = 500
	cfg.Log.Level = "info"

	sandbox, err := security.NewSandbox(root, true)
	require.NoError(t, err)

	return &Kit{
		Log:     log.NewNop(),
		Cfg:     cfg,
		Sandbox: sandbox,
	}, root
}

// testDispatcher wires a full registry around a test kit.
func testDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	kit, root := testKit(t)
	reg := NewRegistry()
	require.NoError(t, RegisterAll(reg))
	return NewDispatcher(reg, kit, kit.Cfg.Dispatch.Timeout), root
}

// invoke runs a handler through the full dispatch path and returns the
// envelope.
func invoke(t *testing.T, d *Dispatcher, category, op string, args map[string]any) Result {
	t.Helper()
	return d.Dispatch(context.Background(), category, op, args)
}

// requireSuccess asserts a success envelope and returns its data decoded
// through the wire format, so tests see what a client would.
func requireSuccess(t *testing.T, res Result) map[string]any {
	t.Helper()
	require.True(t, res.Success, "expected success, got %s: %s", res.ErrorCode, res.Error)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var decoded Result
	require.NoError(t, json.Unmarshal(raw, &decoded))
	if decoded.Data == nil {
		return nil
	}
	data, ok := decoded.Data.(map[string]any)
	require.True(t, ok, "data is %T, want object", decoded.Data)
	return data
}

// requireFailure asserts a failure envelope with the given code.
func requireFailure(t *testing.T, res Result, code Code) {
	t.Helper()
	require.False(t, res.Success, "expected failure %s, got success", code)
	require.Equal(t, code, res.ErrorCode, "error: %s", res.Error)
	require.NotEmpty(t, res.Error)
}
