package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// ContainerSummary is the wire form of one container listing row.
type ContainerSummary struct {
	ID     string   `json:"id"`
	Names  []string `json:"names"`
	Image  string   `json:"image"`
	State  string   `json:"state"`
	Status string   `json:"status"`
}

// dockerErr maps daemon errors to taxonomy codes. The daemon being down
// is UNAVAILABLE, a missing container is NOT_FOUND, and daemon-side
// precondition failures are CONFLICT.
func dockerErr(err error) error {
	switch {
	case client.IsErrConnectionFailed(err):
		return Errf(CodeUnavailable, "docker daemon is unreachable")
	case client.IsErrNotFound(err):
		return &OpError{Code: CodeNotFound, Message: trimDockerMessage(err)}
	case cerrdefs.IsConflict(err):
		return &OpError{Code: CodeConflict, Message: trimDockerMessage(err)}
	case cerrdefs.IsPermissionDenied(err), cerrdefs.IsUnauthorized(err):
		return &OpError{Code: CodePermissionDenied, Message: trimDockerMessage(err)}
	case cerrdefs.IsInvalidArgument(err):
		return &OpError{Code: CodeInvalidParameter, Message: trimDockerMessage(err)}
	default:
		return err
	}
}

// trimDockerMessage drops the "Error response from daemon:" prefix the
// daemon puts on most errors.
func trimDockerMessage(err error) string {
	msg := err.Error()
	if _, rest, found := strings.Cut(msg, "Error response from daemon: "); found {
		return rest
	}
	return msg
}

func handleListContainers(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	all := boolArg(args, "all")
	list, err := cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, dockerErr(err)
	}

	out := make([]ContainerSummary, 0, len(list))
	for _, c := range list {
		names := make([]string, 0, len(c.Names))
		for _, n := range c.Names {
			names = append(names, strings.TrimPrefix(n, "/"))
		}
		out = append(out, ContainerSummary{
			ID:     shortID(c.ID),
			Names:  names,
			Image:  c.Image,
			State:  string(c.State),
			Status: c.Status,
		})
	}
	return map[string]any{"containers": out, "count": len(out)}, nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func handleInspectContainer(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")
	info, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, dockerErr(err)
	}

	out := map[string]any{
		"id":      shortID(info.ID),
		"name":    strings.TrimPrefix(info.Name, "/"),
		"created": info.Created,
	}
	if info.State != nil {
		out["state"] = info.State.Status
		out["running"] = info.State.Running
		out["exit_code"] = info.State.ExitCode
		out["started_at"] = info.State.StartedAt
	}
	if info.Config != nil {
		out["image"] = info.Config.Image
		out["cmd"] = []string(info.Config.Cmd)
		out["env_count"] = len(info.Config.Env)
		out["labels"] = info.Config.Labels
	}
	if info.HostConfig != nil {
		out["restart_policy"] = string(info.HostConfig.RestartPolicy.Name)
	}
	if info.NetworkSettings != nil {
		networks := make([]string, 0, len(info.NetworkSettings.Networks))
		for name := range info.NetworkSettings.Networks {
			networks = append(networks, name)
		}
		out["networks"] = networks
	}
	return out, nil
}

func handleCreateContainer(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	image := stringArg(args, "image")
	if image == "" {
		return nil, InvalidParam("image", "must not be empty")
	}

	cfg := &container.Config{
		Image: image,
		Cmd:   stringsArg(args, "command"),
		Env:   stringsArg(args, "env"),
	}
	hostCfg := &container.HostConfig{
		AutoRemove: boolArg(args, "auto_remove"),
	}

	resp, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, stringArg(args, "name"))
	if err != nil {
		return nil, dockerErr(err)
	}

	out := map[string]any{"id": shortID(resp.ID), "created": true}
	if len(resp.Warnings) > 0 {
		out["warnings"] = resp.Warnings
	}

	if boolArg(args, "start") {
		if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
			return nil, dockerErr(err)
		}
		out["started"] = true
	}
	return out, nil
}

func handleStartContainer(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")
	if err := cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return nil, dockerErr(err)
	}
	return map[string]any{"container": id, "started": true}, nil
}

func handleStopContainer(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")
	opts := container.StopOptions{}
	if timeout := intArg(args, "timeout_seconds"); timeout > 0 {
		opts.Timeout = &timeout
	}
	if err := cli.ContainerStop(ctx, id, opts); err != nil {
		return nil, dockerErr(err)
	}
	return map[string]any{"container": id, "stopped": true}, nil
}

func handleRestartContainer(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")
	opts := container.StopOptions{}
	if timeout := intArg(args, "timeout_seconds"); timeout > 0 {
		opts.Timeout = &timeout
	}
	if err := cli.ContainerRestart(ctx, id, opts); err != nil {
		return nil, dockerErr(err)
	}
	return map[string]any{"container": id, "restarted": true}, nil
}

func handleRemoveContainer(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")
	force := boolArg(args, "force")

	// Check the running state up front so the refusal is deterministic
	// rather than dependent on the daemon's error text.
	info, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, dockerErr(err)
	}
	if info.State != nil && info.State.Running && !force {
		return nil, Errf(CodeConflict, "container is running, stop it or set force")
	}

	opts := container.RemoveOptions{
		Force:         force,
		RemoveVolumes: boolArg(args, "remove_volumes"),
	}
	if err := cli.ContainerRemove(ctx, id, opts); err != nil {
		return nil, dockerErr(err)
	}
	return map[string]any{"container": id, "removed": true}, nil
}

func handleContainerLogs(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")
	tail := intArg(args, "tail")
	if tail < 1 {
		return nil, InvalidParam("tail", "must be positive")
	}

	info, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return nil, dockerErr(err)
	}

	reader, err := cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       fmt.Sprintf("%d", tail),
		Timestamps: boolArg(args, "timestamps"),
	})
	if err != nil {
		return nil, dockerErr(err)
	}
	defer reader.Close()

	var logs string
	if info.Config != nil && info.Config.Tty {
		data, err := io.ReadAll(io.LimitReader(reader, kit.Cfg.Limits.MaxReadBytes))
		if err != nil {
			return nil, err
		}
		logs = string(data)
	} else {
		// Non-TTY streams are multiplexed; demux stdout and stderr into
		// one transcript.
		var buf bytes.Buffer
		if _, err := stdcopy.StdCopy(&buf, &buf, io.LimitReader(reader, kit.Cfg.Limits.MaxReadBytes)); err != nil {
			return nil, err
		}
		logs = buf.String()
	}

	return map[string]any{"container": id, "logs": logs}, nil
}

func handleContainerStats(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")

	resp, err := cli.ContainerStatsOneShot(ctx, id)
	if err != nil {
		return nil, dockerErr(err)
	}
	defer resp.Body.Close()

	var stats container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decoding stats: %w", err)
	}

	cpuPercent := 0.0
	cpuDelta := float64(stats.CPUStats.CPUUsage.TotalUsage - stats.PreCPUStats.CPUUsage.TotalUsage)
	sysDelta := float64(stats.CPUStats.SystemUsage - stats.PreCPUStats.SystemUsage)
	if sysDelta > 0 && cpuDelta >= 0 {
		cpuPercent = cpuDelta / sysDelta * float64(stats.CPUStats.OnlineCPUs) * 100.0
	}

	memPercent := 0.0
	if stats.MemoryStats.Limit > 0 {
		memPercent = float64(stats.MemoryStats.Usage) / float64(stats.MemoryStats.Limit) * 100.0
	}

	return map[string]any{
		"container":      id,
		"cpu_percent":    cpuPercent,
		"memory_usage":   stats.MemoryStats.Usage,
		"memory_limit":   stats.MemoryStats.Limit,
		"memory_percent": memPercent,
		"pids":           stats.PidsStats.Current,
	}, nil
}

func handleContainerExec(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	id := stringArg(args, "container")
	cmd := stringsArg(args, "command")
	if len(cmd) == 0 {
		return nil, InvalidParam("command", "must not be empty")
	}

	created, err := cli.ContainerExecCreate(ctx, id, container.ExecOptions{
		Cmd:          cmd,
		Env:          stringsArg(args, "env"),
		WorkingDir:   stringArg(args, "working_dir"),
		User:         stringArg(args, "user"),
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, dockerErr(err)
	}

	attach, err := cli.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, dockerErr(err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, io.LimitReader(attach.Reader, kit.Cfg.Limits.MaxReadBytes)); err != nil {
		return nil, fmt.Errorf("reading exec output: %w", err)
	}

	inspect, err := cli.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return nil, dockerErr(err)
	}

	return map[string]any{
		"container": id,
		"exit_code": inspect.ExitCode,
		"stdout":    stdout.String(),
		"stderr":    stderr.String(),
	}, nil
}
