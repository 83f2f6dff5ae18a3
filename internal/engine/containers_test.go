package engine

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeDocker records calls and returns configured responses.
// Embeds client.APIClient so unused methods panic if called.
type fakeDocker struct {
	client.APIClient

	listResult  []container.Summary
	listErr     error
	listOptions container.ListOptions

	inspectResult container.InspectResponse
	inspectErr    error

	createResult container.CreateResponse
	createErrs   []error
	createConfig *container.Config
	createHost   *container.HostConfig
	createNet    *network.NetworkingConfig
	createName   string

	startErr  error
	stopErr   error
	removeErr error

	logsBody    io.ReadCloser
	logsErr     error
	logsOptions container.LogsOptions

	statsBody io.ReadCloser
	statsErr  error

	pullErr error
	pingErr error

	calls []string
}

func (f *fakeDocker) ContainerList(_ context.Context, options container.ListOptions) ([]container.Summary, error) {
	f.calls = append(f.calls, "List")
	f.listOptions = options
	return f.listResult, f.listErr
}

func (f *fakeDocker) ContainerInspect(_ context.Context, _ string) (container.InspectResponse, error) {
	f.calls = append(f.calls, "Inspect")
	return f.inspectResult, f.inspectErr
}

func (f *fakeDocker) ContainerCreate(_ context.Context, config *container.Config, hostConfig *container.HostConfig, networking *network.NetworkingConfig, _ *ocispec.Platform, name string) (container.CreateResponse, error) {
	f.calls = append(f.calls, "Create")
	f.createConfig = config
	f.createHost = hostConfig
	f.createNet = networking
	f.createName = name
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return container.CreateResponse{}, err
		}
	}
	return f.createResult, nil
}

func (f *fakeDocker) ContainerStart(_ context.Context, _ string, _ container.StartOptions) error {
	f.calls = append(f.calls, "Start")
	return f.startErr
}

func (f *fakeDocker) ContainerStop(_ context.Context, _ string, _ container.StopOptions) error {
	f.calls = append(f.calls, "Stop")
	return f.stopErr
}

func (f *fakeDocker) ContainerRemove(_ context.Context, _ string, _ container.RemoveOptions) error {
	f.calls = append(f.calls, "Remove")
	return f.removeErr
}

func (f *fakeDocker) ContainerLogs(_ context.Context, _ string, options container.LogsOptions) (io.ReadCloser, error) {
	f.calls = append(f.calls, "Logs")
	f.logsOptions = options
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logsBody, nil
}

func (f *fakeDocker) ContainerStats(_ context.Context, _ string, _ bool) (container.StatsResponseReader, error) {
	f.calls = append(f.calls, "Stats")
	if f.statsErr != nil {
		return container.StatsResponseReader{}, f.statsErr
	}
	return container.StatsResponseReader{Body: f.statsBody}, nil
}

func (f *fakeDocker) ImagePull(_ context.Context, _ string, _ image.PullOptions) (io.ReadCloser, error) {
	f.calls = append(f.calls, "Pull")
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeDocker) Ping(_ context.Context) (types.Ping, error) {
	f.calls = append(f.calls, "Ping")
	return types.Ping{}, f.pingErr
}

func (f *fakeDocker) Close() error { return nil }

func TestListContainers_FiltersAndNormalizes(t *testing.T) {
	docker := &fakeDocker{
		listResult: []container.Summary{
			{
				ID:     "8c2df32914aa0e4786d11c01c68e6328a8a29e6ad3fcf3708f0aa060ab0bbdea",
				Names:  []string{"/shop-web"},
				Image:  "nginx:1.27",
				State:  "running",
				Status: "Up 2 hours",
				Labels: map[string]string{"stevedore.project": "shop"},
			},
		},
	}
	c := NewFromAPI(docker, "")

	list, err := c.ListContainers(context.Background(), ContainerListOptions{
		All:    true,
		Labels: map[string]string{"stevedore.project": "shop"},
	})
	if err != nil {
		t.Fatalf("ListContainers: %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("got %d containers, want 1", len(list))
	}
	got := list[0]
	if got.Name != "shop-web" {
		t.Errorf("Name = %q, want %q", got.Name, "shop-web")
	}
	if got.ID != "8c2df32914aa" {
		t.Errorf("ID = %q, want the short id", got.ID)
	}
	if !docker.listOptions.All {
		t.Error("listing should include stopped containers")
	}
	wantFilter := []string{"stevedore.project=shop"}
	if labels := docker.listOptions.Filters.Get("label"); !slices.Equal(labels, wantFilter) {
		t.Errorf("label filter = %v, want %v", labels, wantFilter)
	}
}

func TestRunContainer_PullsMissingImage(t *testing.T) {
	docker := &fakeDocker{
		createErrs:   []error{errdefs.ErrNotFound},
		createResult: container.CreateResponse{ID: "abc123"},
	}
	c := NewFromAPI(docker, "")

	id, err := c.RunContainer(context.Background(), ContainerSpec{Image: "nginx:1.27", Name: "web"})
	if err != nil {
		t.Fatalf("RunContainer: %v", err)
	}
	if id != "abc123" {
		t.Errorf("id = %q, want %q", id, "abc123")
	}

	// Create fails with not-found, so pull, create again, start.
	want := []string{"Create", "Pull", "Create", "Start"}
	if !slices.Equal(docker.calls, want) {
		t.Errorf("calls = %v, want %v", docker.calls, want)
	}
}

func TestRunContainer_CreateFailurePassesThrough(t *testing.T) {
	createErr := errors.New("conflict: name already in use")
	docker := &fakeDocker{createErrs: []error{createErr}}
	c := NewFromAPI(docker, "")

	_, err := c.RunContainer(context.Background(), ContainerSpec{Image: "nginx:1.27"})
	if err == nil {
		t.Fatal("RunContainer should return an error")
	}
	if !errors.Is(err, createErr) {
		t.Errorf("got %v, want wrapped %v", err, createErr)
	}

	// No pull on errors other than a missing image.
	want := []string{"Create"}
	if !slices.Equal(docker.calls, want) {
		t.Errorf("calls = %v, want %v", docker.calls, want)
	}
}

func TestStopContainer_NotFound(t *testing.T) {
	docker := &fakeDocker{stopErr: errdefs.ErrNotFound}
	c := NewFromAPI(docker, "")

	err := c.StopContainer(context.Background(), "gone", nil)

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want *NotFoundError", err)
	}
	if nf.Kind != "container" || nf.Ref != "gone" {
		t.Errorf("NotFoundError = %+v, want container %q", nf, "gone")
	}
}

func TestCreateContainer_KeepsEngineMessage(t *testing.T) {
	docker := &fakeDocker{createErrs: []error{errdefs.ErrNotFound}}
	c := NewFromAPI(docker, "")

	_, err := c.CreateContainer(context.Background(), ContainerSpec{Image: "nginx:1.27"})

	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("got %v, want *EngineError", err)
	}
	// A create-time not-found can mean the image or the named network;
	// the engine's wording stays, unclassified.
	var nf *NotFoundError
	if errors.As(err, &nf) {
		t.Errorf("got %v, want it left unclassified", err)
	}
}

func TestCreateContainer_BuildsConfigs(t *testing.T) {
	docker := &fakeDocker{createResult: container.CreateResponse{ID: "abc"}}
	c := NewFromAPI(docker, "")

	spec := ContainerSpec{
		Image:   "ghcr.io/acme/api:1.4",
		Name:    "api",
		Command: []string{"serve", "--port", "8080"},
		Env:     []string{"MODE=prod"},
		Ports:   []nat.PortMapping{{Port: "8080/tcp", Binding: nat.PortBinding{HostPort: "80"}}},
		Mounts: []MountSpec{
			{Type: MountVolume, Source: "api-data", Target: "/var/lib/api"},
			{Type: MountBind, Source: "/srv/api/cfg", Target: "/etc/api", ReadOnly: true},
		},
		Network:     "acme-net",
		Labels:      map[string]string{"stevedore.project": "acme"},
		Restart:     "unless-stopped",
		MemoryBytes: 256 * 1024 * 1024,
		NanoCPUs:    500_000_000,
	}
	if _, err := c.CreateContainer(context.Background(), spec); err != nil {
		t.Fatalf("CreateContainer: %v", err)
	}

	if docker.createName != "api" {
		t.Errorf("name = %q, want %q", docker.createName, "api")
	}
	cc := docker.createConfig
	if cc.Image != spec.Image {
		t.Errorf("Image = %q, want %q", cc.Image, spec.Image)
	}
	if !slices.Equal(cc.Cmd, spec.Command) {
		t.Errorf("Cmd = %v, want %v", cc.Cmd, spec.Command)
	}
	if _, ok := cc.ExposedPorts["8080/tcp"]; !ok {
		t.Error("port 8080/tcp should be exposed")
	}

	hc := docker.createHost
	if got := hc.PortBindings["8080/tcp"]; len(got) != 1 || got[0].HostPort != "80" {
		t.Errorf("PortBindings = %v, want host port 80", got)
	}
	if hc.RestartPolicy.Name != container.RestartPolicyUnlessStopped {
		t.Errorf("RestartPolicy = %q, want unless-stopped", hc.RestartPolicy.Name)
	}
	if hc.Resources.Memory != spec.MemoryBytes {
		t.Errorf("Memory = %d, want %d", hc.Resources.Memory, spec.MemoryBytes)
	}
	if hc.Resources.NanoCPUs != spec.NanoCPUs {
		t.Errorf("NanoCPUs = %d, want %d", hc.Resources.NanoCPUs, spec.NanoCPUs)
	}
	if len(hc.Mounts) != 2 {
		t.Fatalf("got %d mounts, want 2", len(hc.Mounts))
	}
	if hc.Mounts[0].Type != mount.TypeVolume || hc.Mounts[0].Source != "api-data" {
		t.Errorf("first mount = %+v, want the api-data volume", hc.Mounts[0])
	}
	if hc.Mounts[1].Type != mount.TypeBind || !hc.Mounts[1].ReadOnly {
		t.Errorf("second mount = %+v, want a read-only bind", hc.Mounts[1])
	}

	if docker.createNet == nil {
		t.Fatal("networking config should be set")
	}
	if _, ok := docker.createNet.EndpointsConfig["acme-net"]; !ok {
		t.Errorf("EndpointsConfig = %v, want acme-net", docker.createNet.EndpointsConfig)
	}
}

func TestSpecFromInspect(t *testing.T) {
	info := container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			Name: "/shop-web",
			HostConfig: &container.HostConfig{
				RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyAlways},
				Resources:     container.Resources{Memory: 512 * 1024 * 1024, NanoCPUs: 1_500_000_000},
				PortBindings:  nat.PortMap{"80/tcp": {{HostPort: "8080"}}},
			},
		},
		Config: &container.Config{
			Image:  "nginx:1.27",
			Cmd:    []string{"nginx", "-g", "daemon off;"},
			Env:    []string{"TZ=UTC"},
			Labels: map[string]string{"stevedore.project": "shop"},
		},
		Mounts: []container.MountPoint{
			{Type: mount.TypeVolume, Name: "web-data", Destination: "/usr/share/nginx/html", RW: true},
			{Type: mount.TypeBind, Source: "/srv/nginx.conf", Destination: "/etc/nginx/nginx.conf", RW: false},
		},
		NetworkSettings: &container.NetworkSettings{
			Networks: map[string]*network.EndpointSettings{
				"bridge":   {},
				"shop-net": {},
			},
		},
	}

	spec := SpecFromInspect(info)

	if spec.Name != "shop-web" {
		t.Errorf("Name = %q, want %q", spec.Name, "shop-web")
	}
	if spec.Image != "nginx:1.27" {
		t.Errorf("Image = %q, want %q", spec.Image, "nginx:1.27")
	}
	if spec.Restart != "always" {
		t.Errorf("Restart = %q, want %q", spec.Restart, "always")
	}
	if spec.MemoryBytes != 512*1024*1024 {
		t.Errorf("MemoryBytes = %d, want %d", spec.MemoryBytes, 512*1024*1024)
	}
	if len(spec.Ports) != 1 || spec.Ports[0].Port != "80/tcp" || spec.Ports[0].Binding.HostPort != "8080" {
		t.Errorf("Ports = %+v, want 80/tcp to host 8080", spec.Ports)
	}
	if len(spec.Mounts) != 2 {
		t.Fatalf("got %d mounts, want 2", len(spec.Mounts))
	}
	if spec.Mounts[0].Type != MountVolume || spec.Mounts[0].Source != "web-data" || spec.Mounts[0].ReadOnly {
		t.Errorf("first mount = %+v, want the web-data volume read-write", spec.Mounts[0])
	}
	if spec.Mounts[1].Type != MountBind || !spec.Mounts[1].ReadOnly {
		t.Errorf("second mount = %+v, want a read-only bind", spec.Mounts[1])
	}
	if spec.Network != "shop-net" {
		t.Errorf("Network = %q, want %q", spec.Network, "shop-net")
	}
}
