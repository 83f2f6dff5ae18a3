package engine

import (
	"context"

	"github.com/docker/docker/api/types/volume"
)

// VolumeSummary is one entry of a volume listing.
type VolumeSummary struct {
	Name       string
	Driver     string
	Mountpoint string
	Scope      string
	Labels     map[string]string
}

func (c *Client) ListVolumes(ctx context.Context, labels map[string]string) ([]VolumeSummary, error) {
	resp, err := c.api.VolumeList(ctx, volume.ListOptions{Filters: labelArgs(labels)})
	if err != nil {
		return nil, &EngineError{Op: "list volumes", Err: err}
	}

	out := make([]VolumeSummary, 0, len(resp.Volumes))
	for _, vol := range resp.Volumes {
		if vol == nil {
			continue
		}
		out = append(out, VolumeSummary{
			Name:       vol.Name,
			Driver:     vol.Driver,
			Mountpoint: vol.Mountpoint,
			Scope:      vol.Scope,
			Labels:     vol.Labels,
		})
	}
	return out, nil
}

// VolumeSpec describes a volume to create.
type VolumeSpec struct {
	Name   string
	Driver string
	Labels map[string]string
}

// CreateVolume creates a volume from spec and returns its name. The
// engine picks the name when spec.Name is empty.
func (c *Client) CreateVolume(ctx context.Context, spec VolumeSpec) (string, error) {
	vol, err := c.api.VolumeCreate(ctx, volume.CreateOptions{
		Name:   spec.Name,
		Driver: spec.Driver,
		Labels: spec.Labels,
	})
	if err != nil {
		return "", &EngineError{Op: "create volume", Err: err}
	}
	return vol.Name, nil
}

func (c *Client) RemoveVolume(ctx context.Context, name string, force bool) error {
	return classify("remove volume", "volume", name, c.api.VolumeRemove(ctx, name, force))
}
