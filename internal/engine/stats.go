package engine

import (
	"context"
	"encoding/json"

	"github.com/docker/docker/api/types/container"
)

// StatsSnapshot is a point-in-time resource usage view of one container.
type StatsSnapshot struct {
	ID            string
	CPUPercent    float64
	MemoryUsage   uint64
	MemoryLimit   uint64
	MemoryPercent float64
	NetworkRx     uint64
	NetworkTx     uint64
}

// ContainerStats fetches a single usage snapshot. A non-streaming read
// carries the previous CPU sample in PreCPUStats, so one call suffices
// for the delta computation.
func (c *Client) ContainerStats(ctx context.Context, id string) (StatsSnapshot, error) {
	resp, err := c.api.ContainerStats(ctx, id, false)
	if err != nil {
		return StatsSnapshot{}, classify("fetch container stats", "container", id, err)
	}
	defer resp.Body.Close()

	var raw container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return StatsSnapshot{}, &EngineError{Op: "decode container stats", Err: err}
	}

	snap := StatsSnapshot{
		ID:          ShortID(id),
		CPUPercent:  cpuPercent(raw),
		MemoryUsage: memoryUsage(raw.MemoryStats),
		MemoryLimit: raw.MemoryStats.Limit,
	}
	if snap.MemoryLimit > 0 {
		snap.MemoryPercent = float64(snap.MemoryUsage) / float64(snap.MemoryLimit) * 100
	}
	for _, nw := range raw.Networks {
		snap.NetworkRx += nw.RxBytes
		snap.NetworkTx += nw.TxBytes
	}
	return snap, nil
}

// cpuPercent derives CPU usage from two cumulative counter samples the
// way the docker CLI does. A zero or negative delta in either counter
// yields 0 — never a division fault or a negative rate.
func cpuPercent(s container.StatsResponse) float64 {
	cpuDelta := float64(s.CPUStats.CPUUsage.TotalUsage) - float64(s.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(s.CPUStats.SystemUsage) - float64(s.PreCPUStats.SystemUsage)
	if cpuDelta <= 0 || systemDelta <= 0 {
		return 0
	}

	cpus := float64(s.CPUStats.OnlineCPUs)
	if cpus == 0 {
		cpus = float64(len(s.CPUStats.CPUUsage.PercpuUsage))
	}
	if cpus == 0 {
		cpus = 1
	}
	return cpuDelta / systemDelta * cpus * 100
}

// memoryUsage excludes the page cache the way `docker stats` does,
// handling both cgroup v1 and v2 stat keys.
func memoryUsage(m container.MemoryStats) uint64 {
	usage := m.Usage
	if v, ok := m.Stats["total_inactive_file"]; ok && v < usage {
		return usage - v
	}
	if v, ok := m.Stats["inactive_file"]; ok && v < usage {
		return usage - v
	}
	return usage
}
