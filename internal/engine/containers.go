package engine

import (
	"context"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
)

// ContainerSummary is one entry of a container listing, normalized for
// output: short id, name without the leading slash.
type ContainerSummary struct {
	ID     string
	Name   string
	Image  string
	State  string
	Status string
	Labels map[string]string
}

// ContainerListOptions narrows a listing. Labels filters on exact
// key=value pairs.
type ContainerListOptions struct {
	All    bool
	Labels map[string]string
}

// ListContainers returns containers in the engine's listing order.
func (c *Client) ListContainers(ctx context.Context, opts ContainerListOptions) ([]ContainerSummary, error) {
	list, err := c.api.ContainerList(ctx, container.ListOptions{
		All:     opts.All,
		Filters: labelArgs(opts.Labels),
	})
	if err != nil {
		return nil, &EngineError{Op: "list containers", Err: err}
	}

	out := make([]ContainerSummary, 0, len(list))
	for _, ctr := range list {
		name := ""
		if len(ctr.Names) > 0 {
			name = strings.TrimPrefix(ctr.Names[0], "/")
		}
		out = append(out, ContainerSummary{
			ID:     ShortID(ctr.ID),
			Name:   name,
			Image:  ctr.Image,
			State:  ctr.State,
			Status: ctr.Status,
			Labels: ctr.Labels,
		})
	}
	return out, nil
}

// MountType distinguishes bind mounts from named volumes.
type MountType string

const (
	MountBind   MountType = "bind"
	MountVolume MountType = "volume"
)

// MountSpec is one sanitized mount of a container creation request.
type MountSpec struct {
	Type     MountType
	Source   string
	Target   string
	ReadOnly bool
}

// ContainerSpec is the sanitized configuration a container is created
// from. Only the sanitizer produces these for caller-supplied input.
type ContainerSpec struct {
	Image       string
	Name        string
	Command     []string
	Entrypoint  []string
	Env         []string
	Ports       []nat.PortMapping
	Mounts      []MountSpec
	Network     string
	Labels      map[string]string
	Restart     string
	MemoryBytes int64
	NanoCPUs    int64
}

// CreateContainer creates a container without starting it. The image must
// already be present. Create failures keep the engine's message verbatim:
// a not-found here can mean the image or the named network, and the
// engine says which.
func (c *Client) CreateContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	cc, hc, nc := containerConfigs(spec)
	resp, err := c.api.ContainerCreate(ctx, cc, hc, nc, nil, spec.Name)
	if err != nil {
		return "", &EngineError{Op: "create container", Err: err}
	}
	return resp.ID, nil
}

// RunContainer creates and starts a container. A locally missing image is
// pulled once and the create retried — the one deliberate two-step on the
// creation path.
func (c *Client) RunContainer(ctx context.Context, spec ContainerSpec) (string, error) {
	cc, hc, nc := containerConfigs(spec)
	resp, err := c.api.ContainerCreate(ctx, cc, hc, nc, nil, spec.Name)
	if err != nil {
		if !errdefs.IsNotFound(err) {
			return "", &EngineError{Op: "create container", Err: err}
		}
		if err := c.PullImage(ctx, spec.Image); err != nil {
			return "", err
		}
		resp, err = c.api.ContainerCreate(ctx, cc, hc, nc, nil, spec.Name)
		if err != nil {
			return "", &EngineError{Op: "create container after pull", Err: err}
		}
	}

	if err := c.api.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", &EngineError{Op: "start container", Err: err}
	}
	return resp.ID, nil
}

func (c *Client) StartContainer(ctx context.Context, id string) error {
	err := c.api.ContainerStart(ctx, id, container.StartOptions{})
	return classify("start container", "container", id, err)
}

// StopContainer stops a container. timeoutSeconds overrides the engine's
// default grace period when non-nil.
func (c *Client) StopContainer(ctx context.Context, id string, timeoutSeconds *int) error {
	err := c.api.ContainerStop(ctx, id, container.StopOptions{Timeout: timeoutSeconds})
	return classify("stop container", "container", id, err)
}

func (c *Client) RemoveContainer(ctx context.Context, id string, force bool) error {
	err := c.api.ContainerRemove(ctx, id, container.RemoveOptions{Force: force})
	return classify("remove container", "container", id, err)
}

// InspectContainer returns the engine's full view of one container.
func (c *Client) InspectContainer(ctx context.Context, id string) (container.InspectResponse, error) {
	info, err := c.api.ContainerInspect(ctx, id)
	if err != nil {
		return container.InspectResponse{}, classify("inspect container", "container", id, err)
	}
	return info, nil
}

// SpecFromInspect captures a running container's configuration as a
// creation spec, used to rebuild the container during recreate.
func SpecFromInspect(info container.InspectResponse) ContainerSpec {
	spec := ContainerSpec{}
	if info.Name != "" {
		spec.Name = strings.TrimPrefix(info.Name, "/")
	}

	if cfg := info.Config; cfg != nil {
		spec.Image = cfg.Image
		spec.Command = cfg.Cmd
		spec.Entrypoint = cfg.Entrypoint
		spec.Env = cfg.Env
		spec.Labels = cfg.Labels
	}

	if hc := info.HostConfig; hc != nil {
		spec.Restart = string(hc.RestartPolicy.Name)
		spec.MemoryBytes = hc.Resources.Memory
		spec.NanoCPUs = hc.Resources.NanoCPUs
		for port, bindings := range hc.PortBindings {
			for _, b := range bindings {
				spec.Ports = append(spec.Ports, nat.PortMapping{Port: port, Binding: b})
			}
		}
	}

	for _, m := range info.Mounts {
		ms := MountSpec{Target: m.Destination, ReadOnly: !m.RW}
		switch m.Type {
		case mount.TypeVolume:
			ms.Type = MountVolume
			ms.Source = m.Name
		default:
			ms.Type = MountBind
			ms.Source = m.Source
		}
		spec.Mounts = append(spec.Mounts, ms)
	}

	if info.NetworkSettings != nil {
		for name := range info.NetworkSettings.Networks {
			if name != "bridge" {
				spec.Network = name
				break
			}
		}
	}
	return spec
}

func containerConfigs(spec ContainerSpec) (*container.Config, *container.HostConfig, *network.NetworkingConfig) {
	cc := &container.Config{
		Image:      spec.Image,
		Cmd:        spec.Command,
		Entrypoint: spec.Entrypoint,
		Env:        spec.Env,
		Labels:     spec.Labels,
	}

	hc := &container.HostConfig{
		RestartPolicy: restartPolicy(spec.Restart),
		Resources: container.Resources{
			Memory:   spec.MemoryBytes,
			NanoCPUs: spec.NanoCPUs,
		},
	}

	if len(spec.Ports) > 0 {
		exposed := make(nat.PortSet, len(spec.Ports))
		bindings := make(nat.PortMap, len(spec.Ports))
		for _, p := range spec.Ports {
			exposed[p.Port] = struct{}{}
			bindings[p.Port] = append(bindings[p.Port], p.Binding)
		}
		cc.ExposedPorts = exposed
		hc.PortBindings = bindings
	}

	for _, m := range spec.Mounts {
		mt := mount.TypeBind
		if m.Type == MountVolume {
			mt = mount.TypeVolume
		}
		hc.Mounts = append(hc.Mounts, mount.Mount{
			Type:     mt,
			Source:   m.Source,
			Target:   m.Target,
			ReadOnly: m.ReadOnly,
		})
	}

	var nc *network.NetworkingConfig
	if spec.Network != "" {
		nc = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {},
			},
		}
	}
	return cc, hc, nc
}

func restartPolicy(name string) container.RestartPolicy {
	switch name {
	case "always":
		return container.RestartPolicy{Name: container.RestartPolicyAlways}
	case "on-failure":
		return container.RestartPolicy{Name: container.RestartPolicyOnFailure}
	case "unless-stopped":
		return container.RestartPolicy{Name: container.RestartPolicyUnlessStopped}
	default:
		return container.RestartPolicy{Name: container.RestartPolicyDisabled}
	}
}

func labelArgs(labels map[string]string) filters.Args {
	args := filters.NewArgs()
	for key, value := range labels {
		args.Add("label", key+"="+value)
	}
	return args
}
