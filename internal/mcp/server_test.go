package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"workbench/internal/config"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace.Root = t.TempDir()
	cfg.Sandbox.Enabled = true
	cfg.Docker.Enabled = false
	cfg.Dispatch.Timeout = 5 * time.Second
	return cfg
}

func TestNewServerValidation(t *testing.T) {
	app := testAppConfig(t)

	_, err := NewServer(Config{Version: "1.0.0", App: app})
	assert.ErrorContains(t, err, "name")

	_, err = NewServer(Config{Name: "workbench", App: app})
	assert.ErrorContains(t, err, "version")

	_, err = NewServer(Config{Name: "workbench", Version: "1.0.0"})
	assert.ErrorContains(t, err, "config")
}

func TestNewServer(t *testing.T) {
	s, err := NewServer(Config{
		Name:    "workbench",
		Version: "1.0.0",
		App:     testAppConfig(t),
	})
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.kit.Close()
}

func TestCallRendersEnvelope(t *testing.T) {
	s, err := NewServer(Config{
		Name:    "workbench",
		Version: "1.0.0",
		App:     testAppConfig(t),
	})
	require.NoError(t, err)
	defer s.kit.Close()

	res, _, err := s.call(context.Background(), "system_ops", CallInput{
		Operation: "current_time",
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcpSdk.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	assert.Equal(t, true, envelope["success"])
	assert.Contains(t, envelope, "data")
}

func TestCallUnknownOperation(t *testing.T) {
	s, err := NewServer(Config{
		Name:    "workbench",
		Version: "1.0.0",
		App:     testAppConfig(t),
	})
	require.NoError(t, err)
	defer s.kit.Close()

	res, _, err := s.call(context.Background(), "system_ops", CallInput{
		Operation: "explode",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	text := res.Content[0].(*mcpSdk.TextContent)
	var envelope map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &envelope))
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "UNKNOWN_OPERATION", envelope["error_code"])
}
