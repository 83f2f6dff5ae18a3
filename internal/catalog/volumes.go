package catalog

import (
	"context"

	"stevedore/internal/policy"
)

func (c *Catalog) volumeOps() []Operation {
	return []Operation{
		{
			Name:        "list_volumes",
			Description: "List volumes",
			Params:      map[string]policy.Param{},
			handler:     c.listVolumes,
		},
		{
			Name:        "create_volume",
			Description: "Create a volume",
			Params:      policy.VolumeParams,
			Guarded:     true,
			handler:     c.createVolume,
		},
		{
			Name:        "remove_volume",
			Description: "Remove a volume",
			Params: map[string]policy.Param{
				"volume_name": {Type: "string", Required: true, Description: "volume name"},
				"force":       {Type: "boolean", Description: "remove even if in use"},
			},
			handler: c.removeVolume,
		},
	}
}

func (c *Catalog) listVolumes(ctx context.Context, _ map[string]any) (any, error) {
	list, err := c.client.ListVolumes(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, vol := range list {
		out = append(out, map[string]any{
			"name":       vol.Name,
			"driver":     vol.Driver,
			"mountpoint": vol.Mountpoint,
		})
	}
	return out, nil
}

func (c *Catalog) createVolume(ctx context.Context, args map[string]any) (any, error) {
	const op = "create_volume"
	spec, err := policy.SanitizeVolume(op, args)
	if err != nil {
		return nil, convertPolicyError(op, err)
	}
	name, err := c.client.CreateVolume(ctx, spec)
	if err != nil {
		return nil, err
	}
	return map[string]any{"name": name, "status": "created"}, nil
}

func (c *Catalog) removeVolume(ctx context.Context, args map[string]any) (any, error) {
	name := stringArg(args, "volume_name")
	if err := c.client.RemoveVolume(ctx, name, boolArg(args, "force")); err != nil {
		return nil, err
	}
	return map[string]any{"name": name, "status": "removed"}, nil
}
