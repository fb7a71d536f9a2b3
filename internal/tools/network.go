package tools

import (
	"context"

	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
)

func handleListNetworks(ctx context.Context, kit *Kit, _ map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	list, err := cli.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, dockerErr(err)
	}

	out := make([]map[string]any, 0, len(list))
	for _, n := range list {
		out = append(out, map[string]any{
			"id":       shortID(n.ID),
			"name":     n.Name,
			"driver":   n.Driver,
			"scope":    n.Scope,
			"internal": n.Internal,
		})
	}
	return map[string]any{"networks": out, "count": len(out)}, nil
}

func handleCreateNetwork(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	name := stringArg(args, "name")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	opts := network.CreateOptions{
		Driver:   stringArg(args, "driver"),
		Internal: boolArg(args, "internal"),
	}
	resp, err := cli.NetworkCreate(ctx, name, opts)
	if err != nil {
		return nil, dockerErr(err)
	}

	out := map[string]any{"name": name, "id": shortID(resp.ID), "created": true}
	if resp.Warning != "" {
		out["warning"] = resp.Warning
	}
	return out, nil
}

func handleRemoveNetwork(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	name := stringArg(args, "network")
	if err := cli.NetworkRemove(ctx, name); err != nil {
		return nil, dockerErr(err)
	}
	return map[string]any{"network": name, "removed": true}, nil
}

func handleListVolumes(ctx context.Context, kit *Kit, _ map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	resp, err := cli.VolumeList(ctx, volume.ListOptions{})
	if err != nil {
		return nil, dockerErr(err)
	}

	out := make([]map[string]any, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		out = append(out, map[string]any{
			"name":       v.Name,
			"driver":     v.Driver,
			"mountpoint": v.Mountpoint,
			"created":    v.CreatedAt,
		})
	}
	result := map[string]any{"volumes": out, "count": len(out)}
	if len(resp.Warnings) > 0 {
		result["warnings"] = resp.Warnings
	}
	return result, nil
}

func handleCreateVolume(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	name := stringArg(args, "name")
	if name == "" {
		return nil, InvalidParam("name", "must not be empty")
	}

	vol, err := cli.VolumeCreate(ctx, volume.CreateOptions{
		Name:   name,
		Driver: stringArg(args, "driver"),
	})
	if err != nil {
		return nil, dockerErr(err)
	}
	return map[string]any{
		"name":       vol.Name,
		"driver":     vol.Driver,
		"mountpoint": vol.Mountpoint,
		"created":    true,
	}, nil
}

func handleRemoveVolume(ctx context.Context, kit *Kit, args map[string]any) (any, error) {
	cli, err := kit.docker()
	if err != nil {
		return nil, err
	}
	name := stringArg(args, "volume")
	if err := cli.VolumeRemove(ctx, name, boolArg(args, "force")); err != nil {
		// In-use volumes come back as a daemon conflict.
		return nil, dockerErr(err)
	}
	return map[string]any{"volume": name, "removed": true}, nil
}
