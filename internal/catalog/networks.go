package catalog

import (
	"context"

	"stevedore/internal/engine"
	"stevedore/internal/policy"
)

func (c *Catalog) networkOps() []Operation {
	return []Operation{
		{
			Name:        "list_networks",
			Description: "List networks",
			Params:      map[string]policy.Param{},
			handler:     c.listNetworks,
		},
		{
			Name:        "create_network",
			Description: "Create a network",
			Params:      policy.NetworkParams,
			Guarded:     true,
			handler:     c.createNetwork,
		},
		{
			Name:        "remove_network",
			Description: "Remove a network",
			Params: map[string]policy.Param{
				"network_id": {Type: "string", Required: true, Description: "network id or name"},
			},
			handler: c.removeNetwork,
		},
	}
}

func (c *Catalog) listNetworks(ctx context.Context, _ map[string]any) (any, error) {
	list, err := c.client.ListNetworks(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, nw := range list {
		out = append(out, map[string]any{
			"id":     nw.ID,
			"name":   nw.Name,
			"driver": nw.Driver,
			"scope":  nw.Scope,
		})
	}
	return out, nil
}

func (c *Catalog) createNetwork(ctx context.Context, args map[string]any) (any, error) {
	const op = "create_network"
	spec, err := policy.SanitizeNetwork(op, args)
	if err != nil {
		return nil, convertPolicyError(op, err)
	}
	id, err := c.client.CreateNetwork(ctx, spec)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": engine.ShortID(id), "name": spec.Name, "status": "created"}, nil
}

func (c *Catalog) removeNetwork(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "network_id")
	if err := c.client.RemoveNetwork(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "status": "removed"}, nil
}
