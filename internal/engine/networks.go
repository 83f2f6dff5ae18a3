package engine

import (
	"context"

	"github.com/docker/docker/api/types/network"
)

// NetworkSummary is one entry of a network listing.
type NetworkSummary struct {
	ID       string
	Name     string
	Driver   string
	Scope    string
	Internal bool
	Labels   map[string]string
}

func (c *Client) ListNetworks(ctx context.Context, labels map[string]string) ([]NetworkSummary, error) {
	list, err := c.api.NetworkList(ctx, network.ListOptions{Filters: labelArgs(labels)})
	if err != nil {
		return nil, &EngineError{Op: "list networks", Err: err}
	}

	out := make([]NetworkSummary, 0, len(list))
	for _, nw := range list {
		out = append(out, NetworkSummary{
			ID:       ShortID(nw.ID),
			Name:     nw.Name,
			Driver:   nw.Driver,
			Scope:    nw.Scope,
			Internal: nw.Internal,
			Labels:   nw.Labels,
		})
	}
	return out, nil
}

// NetworkSpec describes a network to create.
type NetworkSpec struct {
	Name     string
	Driver   string
	Internal bool
	Labels   map[string]string
}

// CreateNetwork creates a network from spec and returns its id. The
// driver defaults to bridge when unset.
func (c *Client) CreateNetwork(ctx context.Context, spec NetworkSpec) (string, error) {
	driver := spec.Driver
	if driver == "" {
		driver = "bridge"
	}
	resp, err := c.api.NetworkCreate(ctx, spec.Name, network.CreateOptions{
		Driver:   driver,
		Internal: spec.Internal,
		Labels:   spec.Labels,
	})
	if err != nil {
		return "", &EngineError{Op: "create network", Err: err}
	}
	return resp.ID, nil
}

func (c *Client) RemoveNetwork(ctx context.Context, id string) error {
	return classify("remove network", "network", id, c.api.NetworkRemove(ctx, id))
}
