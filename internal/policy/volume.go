package policy

import (
	"stevedore/internal/engine"
)

// SanitizeVolume narrows a raw volume-creation payload to the allow-list
// and parses it into a typed spec.
func SanitizeVolume(op string, raw map[string]any) (engine.VolumeSpec, error) {
	if err := checkAllowed(op, raw, VolumeParams); err != nil {
		return engine.VolumeSpec{}, err
	}

	var spec engine.VolumeSpec
	var err error
	if spec.Name, err = stringField(raw, "volume_name"); err != nil {
		return engine.VolumeSpec{}, err
	}
	if spec.Driver, err = stringField(raw, "driver"); err != nil {
		return engine.VolumeSpec{}, err
	}
	if spec.Labels, err = labelsWithProject(raw); err != nil {
		return engine.VolumeSpec{}, err
	}
	return spec, nil
}
