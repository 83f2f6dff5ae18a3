package policy

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/distribution/reference"
	"github.com/docker/go-connections/nat"
	"github.com/docker/go-units"

	"stevedore/internal/engine"
	"stevedore/internal/project"
)

// SanitizeContainer narrows a raw container-creation payload to the
// allow-list and parses it into a typed spec. op names the operation for
// error reporting; recreate overrides pass through here too, with the
// target id already stripped by the caller.
func SanitizeContainer(op string, raw map[string]any) (engine.ContainerSpec, error) {
	if err := checkAllowed(op, raw, ContainerParams); err != nil {
		return engine.ContainerSpec{}, err
	}

	var spec engine.ContainerSpec
	var err error
	if spec.Image, err = imageField(raw, "image"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Name, err = stringField(raw, "name"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Command, err = argvField(raw, "command"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Entrypoint, err = argvField(raw, "entrypoint"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Env, err = envField(raw, "environment"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Ports, err = portsField(raw, "ports"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Mounts, err = mountsField(op, raw, "volumes"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Network, err = stringField(raw, "network"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Restart, err = restartField(raw, "restart"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.MemoryBytes, err = memoryField(raw, "memory"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.NanoCPUs, err = cpusField(raw, "cpus"); err != nil {
		return engine.ContainerSpec{}, err
	}
	if spec.Labels, err = labelsWithProject(raw); err != nil {
		return engine.ContainerSpec{}, err
	}
	return spec, nil
}

// labelsWithProject merges the labels map with the project label. The
// caller's map is cloned before injection.
func labelsWithProject(raw map[string]any) (map[string]string, error) {
	labels, err := stringMapField(raw, "labels")
	if err != nil {
		return nil, err
	}
	proj, err := stringField(raw, "project")
	if err != nil {
		return nil, err
	}
	if proj != "" {
		if labels == nil {
			labels = make(map[string]string, 1)
		}
		labels[project.Label] = proj
	}
	return labels, nil
}

func imageField(raw map[string]any, key string) (string, error) {
	s, err := stringField(raw, key)
	if err != nil || s == "" {
		return s, err
	}
	if _, err := reference.ParseNormalizedNamed(s); err != nil {
		return "", &ValueError{Key: key, Reason: fmt.Sprintf("invalid image reference %q: %v", s, err)}
	}
	return s, nil
}

func portsField(raw map[string]any, key string) ([]nat.PortMapping, error) {
	specs, err := stringSliceField(raw, key)
	if err != nil || len(specs) == 0 {
		return nil, err
	}
	var out []nat.PortMapping
	for _, s := range specs {
		mappings, err := nat.ParsePortSpec(s)
		if err != nil {
			return nil, &ValueError{Key: key, Reason: fmt.Sprintf("invalid port mapping %q: %v", s, err)}
		}
		out = append(out, mappings...)
	}
	return out, nil
}

func mountsField(op string, raw map[string]any, key string) ([]engine.MountSpec, error) {
	specs, err := stringSliceField(raw, key)
	if err != nil || len(specs) == 0 {
		return nil, err
	}
	var out []engine.MountSpec
	for _, s := range specs {
		m, err := parseMount(key, s)
		if err != nil {
			return nil, err
		}
		if m.Type == engine.MountBind {
			if p := sensitiveHostPath(m.Source); p != "" {
				return nil, &RejectionError{
					Op:     op,
					Keys:   []string{key},
					Reason: fmt.Sprintf("bind mount of sensitive host path %q", p),
				}
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// parseMount splits source:target[:ro|rw]. An absolute source is a bind
// mount; anything else is a named volume.
func parseMount(key, spec string) (engine.MountSpec, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return engine.MountSpec{}, &ValueError{Key: key, Reason: fmt.Sprintf("invalid mount %q, want source:target[:ro]", spec)}
	}
	source, target := parts[0], parts[1]
	if source == "" || target == "" {
		return engine.MountSpec{}, &ValueError{Key: key, Reason: fmt.Sprintf("invalid mount %q, want source:target[:ro]", spec)}
	}
	if !strings.HasPrefix(target, "/") {
		return engine.MountSpec{}, &ValueError{Key: key, Reason: fmt.Sprintf("mount target %q must be absolute", target)}
	}

	m := engine.MountSpec{Type: engine.MountVolume, Source: source, Target: target}
	if strings.HasPrefix(source, "/") {
		m.Type = engine.MountBind
	} else if strings.HasPrefix(source, ".") {
		return engine.MountSpec{}, &ValueError{Key: key, Reason: fmt.Sprintf("bind source %q must be absolute", source)}
	}
	if len(parts) == 3 {
		switch parts[2] {
		case "ro":
			m.ReadOnly = true
		case "rw":
		default:
			return engine.MountSpec{}, &ValueError{Key: key, Reason: fmt.Sprintf("unknown mount option %q", parts[2])}
		}
	}
	return m, nil
}

func restartField(raw map[string]any, key string) (string, error) {
	s, err := stringField(raw, key)
	if err != nil || s == "" {
		return s, err
	}
	if !slices.Contains(ContainerParams[key].Enum, s) {
		return "", &ValueError{Key: key, Reason: fmt.Sprintf("unknown restart policy %q", s)}
	}
	return s, nil
}

func memoryField(raw map[string]any, key string) (int64, error) {
	s, err := stringField(raw, key)
	if err != nil || s == "" {
		return 0, err
	}
	bytes, err := units.RAMInBytes(s)
	if err != nil {
		return 0, &ValueError{Key: key, Reason: fmt.Sprintf("invalid memory limit %q: %v", s, err)}
	}
	return bytes, nil
}

func cpusField(raw map[string]any, key string) (int64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, nil
	}
	var cpus float64
	switch n := v.(type) {
	case float64:
		cpus = n
	case int:
		cpus = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, &ValueError{Key: key, Reason: fmt.Sprintf("invalid cpu count %q", n)}
		}
		cpus = parsed
	default:
		return 0, &ValueError{Key: key, Reason: "must be a number"}
	}
	if cpus < 0 {
		return 0, &ValueError{Key: key, Reason: "must not be negative"}
	}
	return int64(cpus * 1e9), nil
}

func envField(raw map[string]any, key string) ([]string, error) {
	m, err := stringMapField(raw, key)
	if err != nil || len(m) == 0 {
		return nil, err
	}
	env := make([]string, 0, len(m))
	for k, v := range m {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env, nil
}

func stringField(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValueError{Key: key, Reason: "must be a string"}
	}
	return s, nil
}

// argvField accepts an argv array or a plain string, which is split on
// whitespace.
func argvField(raw map[string]any, key string) ([]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch arg := v.(type) {
	case string:
		return strings.Fields(arg), nil
	case []string:
		return slices.Clone(arg), nil
	case []any:
		argv := make([]string, 0, len(arg))
		for _, item := range arg {
			s, ok := item.(string)
			if !ok {
				return nil, &ValueError{Key: key, Reason: "must be an array of strings"}
			}
			argv = append(argv, s)
		}
		return argv, nil
	default:
		return nil, &ValueError{Key: key, Reason: "must be an array of strings"}
	}
}

func stringSliceField(raw map[string]any, key string) ([]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch s := v.(type) {
	case string:
		return []string{s}, nil
	case []string:
		return slices.Clone(s), nil
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, &ValueError{Key: key, Reason: "must be an array of strings"}
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, &ValueError{Key: key, Reason: "must be an array of strings"}
	}
}

func stringMapField(raw map[string]any, key string) (map[string]string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]string:
		return maps.Clone(m), nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, item := range m {
			s, ok := item.(string)
			if !ok {
				return nil, &ValueError{Key: key, Reason: fmt.Sprintf("value of %q must be a string", k)}
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, &ValueError{Key: key, Reason: "must be a map of strings"}
	}
}

func boolField(raw map[string]any, key string) (bool, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, &ValueError{Key: key, Reason: "must be a boolean"}
	}
	return b, nil
}
