package catalog

import (
	"context"
	"maps"

	"stevedore/internal/engine"
	"stevedore/internal/policy"
	"stevedore/internal/project"
)

func (c *Catalog) containerOps() []Operation {
	containerID := policy.Param{Type: "string", Required: true, Description: "container id or name"}
	return []Operation{
		{
			Name:        "list_containers",
			Description: "List containers in engine order, optionally including stopped ones",
			Params: map[string]policy.Param{
				"all": {Type: "boolean", Description: "include stopped containers"},
			},
			handler: c.listContainers,
		},
		{
			Name:        "create_container",
			Description: "Create a container without starting it",
			Params:      policy.ContainerParams,
			Guarded:     true,
			handler:     c.createContainer,
		},
		{
			Name:        "run_container",
			Description: "Create and start a container, pulling the image if missing",
			Params:      policy.ContainerParams,
			Guarded:     true,
			handler:     c.runContainer,
		},
		{
			Name:        "recreate_container",
			Description: "Replace a container with a fresh one built from its current configuration plus overrides",
			Params:      policy.RecreateParams,
			Guarded:     true,
			handler:     c.recreateContainer,
		},
		{
			Name:        "start_container",
			Description: "Start a stopped container",
			Params:      map[string]policy.Param{"container_id": containerID},
			handler:     c.startContainer,
		},
		{
			Name:        "stop_container",
			Description: "Stop a running container",
			Params: map[string]policy.Param{
				"container_id": containerID,
				"timeout":      {Type: "integer", Description: "seconds to wait before killing"},
			},
			handler: c.stopContainer,
		},
		{
			Name:        "remove_container",
			Description: "Remove a container",
			Params: map[string]policy.Param{
				"container_id": containerID,
				"force":        {Type: "boolean", Description: "remove even if running"},
			},
			handler: c.removeContainer,
		},
		{
			Name:        "fetch_container_logs",
			Description: "Fetch the tail of a container's logs, oldest line first",
			Params: map[string]policy.Param{
				"container_id": containerID,
				"tail":         {Type: "integer", Description: "number of lines, default 100, max 1000"},
				"since":        {Type: "string", Description: "only lines after this RFC3339 time or relative duration like 10m"},
				"until":        {Type: "string", Description: "only lines before this RFC3339 time or relative duration"},
			},
			handler: c.fetchContainerLogs,
		},
	}
}

func (c *Catalog) listContainers(ctx context.Context, args map[string]any) (any, error) {
	list, err := c.client.ListContainers(ctx, engine.ContainerListOptions{All: boolArg(args, "all")})
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		out = append(out, map[string]any{
			"id":     item.ID,
			"name":   item.Name,
			"image":  item.Image,
			"state":  item.State,
			"status": item.Status,
		})
	}
	return out, nil
}

func (c *Catalog) createContainer(ctx context.Context, args map[string]any) (any, error) {
	const op = "create_container"
	spec, err := policy.SanitizeContainer(op, args)
	if err != nil {
		return nil, convertPolicyError(op, err)
	}
	id, err := c.client.CreateContainer(ctx, spec)
	if err != nil {
		return nil, err
	}
	return containerResult(id, spec.Name, "created"), nil
}

func (c *Catalog) runContainer(ctx context.Context, args map[string]any) (any, error) {
	const op = "run_container"
	spec, err := policy.SanitizeContainer(op, args)
	if err != nil {
		return nil, convertPolicyError(op, err)
	}
	id, err := c.client.RunContainer(ctx, spec)
	if err != nil {
		return nil, err
	}
	return containerResult(id, spec.Name, "started"), nil
}

// recreateContainer captures the target's configuration, tears it down,
// and brings up a replacement with caller overrides applied. Failures
// before the teardown abort cleanly; once remove has succeeded, a later
// failure is reported as partial — the container is gone and not
// replaced, and the result must say so.
func (c *Catalog) recreateContainer(ctx context.Context, args map[string]any) (any, error) {
	const op = "recreate_container"
	id := stringArg(args, "container_id")

	info, err := c.client.InspectContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	captured := engine.SpecFromInspect(info)

	overrides := maps.Clone(args)
	delete(overrides, "container_id")
	override, err := policy.SanitizeContainer(op, overrides)
	if err != nil {
		return nil, convertPolicyError(op, err)
	}
	spec := mergeSpec(captured, override, overrides)

	if err := c.client.StopContainer(ctx, id, nil); err != nil {
		return nil, err
	}
	if err := c.client.RemoveContainer(ctx, id, true); err != nil {
		return nil, err
	}

	completed := []string{"stop", "remove"}
	newID, err := c.client.CreateContainer(ctx, spec)
	if err != nil {
		return nil, &PartialFailureError{Op: op, Completed: completed, FailedStep: "create", Err: err}
	}
	completed = append(completed, "create")
	if err := c.client.StartContainer(ctx, newID); err != nil {
		return nil, &PartialFailureError{Op: op, Completed: completed, FailedStep: "start", Err: err}
	}
	return containerResult(newID, spec.Name, "recreated"), nil
}

// mergeSpec lays caller overrides over the captured configuration, keyed
// on which arguments were actually supplied — an absent key keeps the
// captured value, it is not zeroed.
func mergeSpec(base, override engine.ContainerSpec, supplied map[string]any) engine.ContainerSpec {
	if _, ok := supplied["image"]; ok {
		base.Image = override.Image
	}
	if _, ok := supplied["name"]; ok {
		base.Name = override.Name
	}
	if _, ok := supplied["command"]; ok {
		base.Command = override.Command
	}
	if _, ok := supplied["entrypoint"]; ok {
		base.Entrypoint = override.Entrypoint
	}
	if _, ok := supplied["environment"]; ok {
		base.Env = override.Env
	}
	if _, ok := supplied["ports"]; ok {
		base.Ports = override.Ports
	}
	if _, ok := supplied["volumes"]; ok {
		base.Mounts = override.Mounts
	}
	if _, ok := supplied["network"]; ok {
		base.Network = override.Network
	}
	if _, ok := supplied["restart"]; ok {
		base.Restart = override.Restart
	}
	if _, ok := supplied["memory"]; ok {
		base.MemoryBytes = override.MemoryBytes
	}
	if _, ok := supplied["cpus"]; ok {
		base.NanoCPUs = override.NanoCPUs
	}
	if _, ok := supplied["labels"]; ok {
		base.Labels = override.Labels
	} else if _, ok := supplied["project"]; ok {
		if base.Labels == nil {
			base.Labels = make(map[string]string, 1)
		}
		base.Labels[project.Label] = override.Labels[project.Label]
	}
	return base
}

func (c *Catalog) startContainer(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "container_id")
	if err := c.client.StartContainer(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "status": "started"}, nil
}

func (c *Catalog) stopContainer(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "container_id")
	var timeout *int
	if v, ok := intArgOK(args, "timeout"); ok {
		timeout = &v
	}
	if err := c.client.StopContainer(ctx, id, timeout); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "status": "stopped"}, nil
}

func (c *Catalog) removeContainer(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "container_id")
	if err := c.client.RemoveContainer(ctx, id, boolArg(args, "force")); err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "status": "removed"}, nil
}

func (c *Catalog) fetchContainerLogs(ctx context.Context, args map[string]any) (any, error) {
	id := stringArg(args, "container_id")
	lines, err := c.client.ContainerLogs(ctx, id, engine.LogsOptions{
		Tail:  intArg(args, "tail"),
		Since: stringArg(args, "since"),
		Until: stringArg(args, "until"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "lines": lines}, nil
}
