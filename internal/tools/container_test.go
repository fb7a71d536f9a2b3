package tools

import (
	"context"
	"testing"

	"github.com/docker/docker/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The test kit is built without a Docker client, so every docker
// operation must fail closed with UNAVAILABLE instead of panicking or
// leaking a nil-pointer error.
func TestDockerOpsUnavailable(t *testing.T) {
	d, _ := testDispatcher(t)

	cases := []struct {
		operation string
		args      map[string]any
	}{
		{"list_containers", nil},
		{"inspect_container", map[string]any{"container": "web"}},
		{"create_container", map[string]any{"image": "alpine"}},
		{"start_container", map[string]any{"container": "web"}},
		{"stop_container", map[string]any{"container": "web"}},
		{"restart_container", map[string]any{"container": "web"}},
		{"remove_container", map[string]any{"container": "web"}},
		{"container_logs", map[string]any{"container": "web"}},
		{"container_stats", map[string]any{"container": "web"}},
		{"container_exec", map[string]any{"container": "web", "command": []any{"ls"}}},
		{"list_images", nil},
		{"build_image", map[string]any{"path": "ctx"}},
		{"inspect_image", map[string]any{"image": "alpine"}},
		{"pull_image", map[string]any{"image": "alpine"}},
		{"remove_image", map[string]any{"image": "alpine"}},
		{"prune_images", nil},
		{"list_networks", nil},
		{"create_network", map[string]any{"name": "net0"}},
		{"remove_network", map[string]any{"network": "net0"}},
		{"list_volumes", nil},
		{"create_volume", map[string]any{"name": "vol0"}},
		{"remove_volume", map[string]any{"volume": "vol0"}},
	}
	for _, tc := range cases {
		t.Run(tc.operation, func(t *testing.T) {
			res := invoke(t, d, CategoryDocker, tc.operation, tc.args)
			requireFailure(t, res, CodeUnavailable)
			assert.Contains(t, res.Error, "docker")
		})
	}
}

// Exercises the real daemon when one is reachable.
func TestListContainersLive(t *testing.T) {
	kit, _ := testKit(t)
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client unavailable: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		_ = cli.Close()
		t.Skipf("docker daemon unreachable: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })
	kit.Docker = cli

	data, err := handleListContainers(context.Background(), kit, map[string]any{"all": true})
	require.NoError(t, err)
	out, ok := data.(map[string]any)
	require.True(t, ok, "data is %T", data)
	assert.Contains(t, out, "containers")
}

// Parameter validation runs before the handler, so bad arguments are
// rejected with their own codes even without a daemon.
func TestDockerOpsValidation(t *testing.T) {
	d, _ := testDispatcher(t)

	res := invoke(t, d, CategoryDocker, "inspect_container", nil)
	requireFailure(t, res, CodeMissingParameter)

	res = invoke(t, d, CategoryDocker, "stop_container",
		map[string]any{"container": "web", "timeout_seconds": "soon"})
	requireFailure(t, res, CodeInvalidParameter)

	res = invoke(t, d, CategoryDocker, "container_exec",
		map[string]any{"container": "web"})
	requireFailure(t, res, CodeMissingParameter)
}
