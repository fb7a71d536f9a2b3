package tools

import (
	"context"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gopsnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessInfo is one row of a list_processes response.
type ProcessInfo struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float32 `json:"memory_percent"`
	Username      string  `json:"username,omitempty"`
}

func handleHostInfo(ctx context.Context, _ *Kit, _ map[string]any) (any, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"hostname":         info.Hostname,
		"os":               info.OS,
		"platform":         info.Platform,
		"platform_version": info.PlatformVersion,
		"kernel_version":   info.KernelVersion,
		"arch":             info.KernelArch,
		"uptime_seconds":   info.Uptime,
		"boot_time":        time.Unix(int64(info.BootTime), 0).UTC().Format(time.RFC3339),
		"processes":        info.Procs,
	}, nil
}

func handleCPUInfo(ctx context.Context, _ *Kit, _ map[string]any) (any, error) {
	out := map[string]any{}

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		out["model"] = infos[0].ModelName
		out["mhz"] = infos[0].Mhz
	}
	if logical, err := cpu.CountsWithContext(ctx, true); err == nil {
		out["logical_cores"] = logical
	}
	if physical, err := cpu.CountsWithContext(ctx, false); err == nil {
		out["physical_cores"] = physical
	}

	// A short sampling window; the dispatch timeout comfortably covers it.
	percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
	if err != nil {
		return nil, err
	}
	if len(percents) > 0 {
		out["usage_percent"] = percents[0]
	}
	return out, nil
}

func handleMemoryInfo(ctx context.Context, _ *Kit, _ map[string]any) (any, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"total":        vm.Total,
		"available":    vm.Available,
		"used":         vm.Used,
		"used_percent": vm.UsedPercent,
	}
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		out["swap_total"] = swap.Total
		out["swap_used"] = swap.Used
	}
	return out, nil
}

func handleDiskUsage(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	// Rooted at a specific mount when given, otherwise all partitions.
	if path := stringArg(args, "path"); path != "" {
		usage, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"path":         usage.Path,
			"total":        usage.Total,
			"free":         usage.Free,
			"used":         usage.Used,
			"used_percent": usage.UsedPercent,
		}, nil
	}

	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	var disks []map[string]any
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue
		}
		disks = append(disks, map[string]any{
			"device":       p.Device,
			"mountpoint":   p.Mountpoint,
			"fstype":       p.Fstype,
			"total":        usage.Total,
			"free":         usage.Free,
			"used_percent": usage.UsedPercent,
		})
	}
	return map[string]any{"partitions": disks, "count": len(disks)}, nil
}

func handleNetworkInterfaces(ctx context.Context, _ *Kit, _ map[string]any) (any, error) {
	ifaces, err := gopsnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}
		out = append(out, map[string]any{
			"name":      iface.Name,
			"mtu":       iface.MTU,
			"mac":       iface.HardwareAddr,
			"flags":     iface.Flags,
			"addresses": addrs,
		})
	}
	return map[string]any{"interfaces": out, "count": len(out)}, nil
}

func handleListProcesses(ctx context.Context, _ *Kit, args map[string]any) (any, error) {
	limit := intArg(args, "limit")
	if limit < 1 {
		return nil, InvalidParam("limit", "must be positive")
	}
	nameFilter := strings.ToLower(stringArg(args, "filter"))
	sortKey := stringArg(args, "sort")

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // process exited during the scan
		}
		if nameFilter != "" && !strings.Contains(strings.ToLower(name), nameFilter) {
			continue
		}
		info := ProcessInfo{PID: p.Pid, Name: name}
		if cpuPct, err := p.CPUPercentWithContext(ctx); err == nil {
			info.CPUPercent = cpuPct
		}
		if memPct, err := p.MemoryPercentWithContext(ctx); err == nil {
			info.MemoryPercent = memPct
		}
		if statuses, err := p.StatusWithContext(ctx); err == nil && len(statuses) > 0 {
			info.Status = statuses[0]
		}
		if user, err := p.UsernameWithContext(ctx); err == nil {
			info.Username = user
		}
		infos = append(infos, info)
	}

	switch sortKey {
	case "cpu":
		sort.Slice(infos, func(i, j int) bool { return infos[i].CPUPercent > infos[j].CPUPercent })
	case "memory":
		sort.Slice(infos, func(i, j int) bool { return infos[i].MemoryPercent > infos[j].MemoryPercent })
	case "name":
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	default: // pid
		sort.Slice(infos, func(i, j int) bool { return infos[i].PID < infos[j].PID })
	}

	total := len(infos)
	if len(infos) > limit {
		infos = infos[:limit]
	}
	return map[string]any{"processes": infos, "count": len(infos), "total": total}, nil
}

func handleResourceUsage(ctx context.Context, _ *Kit, _ map[string]any) (any, error) {
	out := map[string]any{}

	if percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(percents) > 0 {
		out["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out["memory_percent"] = vm.UsedPercent
		out["memory_used"] = vm.Used
		out["memory_total"] = vm.Total
	}
	if usage, err := disk.UsageWithContext(ctx, "/"); err == nil {
		out["disk_percent"] = usage.UsedPercent
		out["disk_free"] = usage.Free
	}
	if counters, err := gopsnet.IOCountersWithContext(ctx, false); err == nil && len(counters) > 0 {
		out["net_bytes_sent"] = counters[0].BytesSent
		out["net_bytes_recv"] = counters[0].BytesRecv
	}
	return out, nil
}

// sensitiveEnvMarkers flags variables whose values must never cross the
// wire.
var sensitiveEnvMarkers = []string{
	"TOKEN", "SECRET", "KEY", "PASSWORD", "PASSWD", "CREDENTIAL", "AUTH",
}

func handleEnvironmentInfo(_ context.Context, _ *Kit, _ map[string]any) (any, error) {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		name, value, found := strings.Cut(kv, "=")
		if !found {
			continue
		}
		if sensitiveEnv(name) {
			value = "********"
		}
		env[name] = value
	}

	return map[string]any{
		"go_version":  runtime.Version(),
		"goos":        runtime.GOOS,
		"goarch":      runtime.GOARCH,
		"num_cpu":     runtime.NumCPU(),
		"environment": env,
		"masked_note": "values of credential-like variables are masked",
	}, nil
}

func sensitiveEnv(name string) bool {
	upper := strings.ToUpper(name)
	for _, marker := range sensitiveEnvMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

func handleCurrentTime(_ context.Context, _ *Kit, _ map[string]any) (any, error) {
	now := time.Now()
	zone, offset := now.Zone()
	return map[string]any{
		"utc":            now.UTC().Format(time.RFC3339),
		"local":          now.Format(time.RFC3339),
		"unix":           now.Unix(),
		"timezone":       zone,
		"offset_seconds": offset,
	}, nil
}
