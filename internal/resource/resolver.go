package resource

import (
	"context"
	"fmt"

	"stevedore/internal/engine"
)

// Resolver serves resource reads against a connected engine client.
type Resolver struct {
	client *engine.Client
}

func NewResolver(client *engine.Client) *Resolver {
	return &Resolver{client: client}
}

// Entry describes one advertised resource address.
type Entry struct {
	URI         string
	Name        string
	Description string
}

// List advertises two addresses per running container. Stopped
// containers still resolve by address; they are just not advertised.
func (r *Resolver) List(ctx context.Context) ([]Entry, error) {
	containers, err := r.client.ListContainers(ctx, engine.ContainerListOptions{})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, 2*len(containers))
	for _, ctr := range containers {
		entries = append(entries,
			Entry{
				URI:         Address{ID: ctr.ID, Facet: FacetStats}.URI(),
				Name:        ctr.Name + " stats",
				Description: fmt.Sprintf("Live resource usage of container %s", ctr.Name),
			},
			Entry{
				URI:         Address{ID: ctr.ID, Facet: FacetLogs}.URI(),
				Name:        ctr.Name + " logs",
				Description: fmt.Sprintf("Recent log lines of container %s", ctr.Name),
			},
		)
	}
	return entries, nil
}

// Resolve reads the facet behind an address. The payload is a plain map
// ready for JSON encoding by the transport layer.
func (r *Resolver) Resolve(ctx context.Context, uri string) (map[string]any, error) {
	addr, err := ParseAddress(uri)
	if err != nil {
		return nil, err
	}
	if addr.Facet == FacetLogs {
		lines, err := r.client.ContainerLogs(ctx, addr.ID, engine.LogsOptions{})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"id":    addr.ID,
			"tail":  engine.DefaultLogTail,
			"lines": lines,
		}, nil
	}
	stats, err := r.client.ContainerStats(ctx, addr.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":             stats.ID,
		"cpu_percent":    stats.CPUPercent,
		"memory_usage":   stats.MemoryUsage,
		"memory_limit":   stats.MemoryLimit,
		"memory_percent": stats.MemoryPercent,
		"network_rx":     stats.NetworkRx,
		"network_tx":     stats.NetworkTx,
	}, nil
}
