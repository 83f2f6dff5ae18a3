package policy

import (
	"stevedore/internal/engine"
)

// SanitizeNetwork narrows a raw network-creation payload to the
// allow-list and parses it into a typed spec.
func SanitizeNetwork(op string, raw map[string]any) (engine.NetworkSpec, error) {
	if err := checkAllowed(op, raw, NetworkParams); err != nil {
		return engine.NetworkSpec{}, err
	}

	var spec engine.NetworkSpec
	var err error
	if spec.Name, err = stringField(raw, "name"); err != nil {
		return engine.NetworkSpec{}, err
	}
	if spec.Driver, err = stringField(raw, "driver"); err != nil {
		return engine.NetworkSpec{}, err
	}
	if spec.Internal, err = boolField(raw, "internal"); err != nil {
		return engine.NetworkSpec{}, err
	}
	if spec.Labels, err = labelsWithProject(raw); err != nil {
		return engine.NetworkSpec{}, err
	}
	return spec, nil
}
