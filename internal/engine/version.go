package engine

import "context"

// EngineVersion describes the engine a client is connected to.
type EngineVersion struct {
	Version    string
	APIVersion string
	OS         string
	Arch       string
}

func (c *Client) Version(ctx context.Context) (EngineVersion, error) {
	v, err := c.api.ServerVersion(ctx)
	if err != nil {
		return EngineVersion{}, &EngineError{Op: "read engine version", Err: err}
	}
	return EngineVersion{
		Version:    v.Version,
		APIVersion: v.APIVersion,
		OS:         v.Os,
		Arch:       v.Arch,
	}, nil
}
