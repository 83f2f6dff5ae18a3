// Package policy is the safety boundary between caller-supplied
// configuration and the engine. Each creation operation has a declarative
// allow-list of parameters; a key outside the list rejects the whole
// request naming every offender, and permitted values are parsed into
// typed engine specs here so handlers never touch raw payloads. Every
// creation path routes through exactly one Sanitize call.
package policy

import "slices"

// Param declares one permitted argument of an operation: its wire type,
// whether it is required, and an optional closed value set. The same
// table drives argument validation and the advertised JSON schema, so
// the audit surface and the published contract are one artifact.
type Param struct {
	Type        string
	Description string
	Required    bool
	Enum        []string
}

// ContainerParams is the exhaustive allow-list for container creation.
// Privileged mode, capability changes, device access and the like are
// not absent by accident: an unknown key is a rejection, never a
// pass-through.
var ContainerParams = map[string]Param{
	"image":       {Type: "string", Required: true, Description: "image reference, e.g. nginx:1.27"},
	"name":        {Type: "string", Description: "container name"},
	"command":     {Type: "array", Description: "command argv; a plain string is split on whitespace"},
	"entrypoint":  {Type: "array", Description: "entrypoint argv override"},
	"environment": {Type: "object", Description: "environment variables, name to value"},
	"ports":       {Type: "array", Description: "port mappings, e.g. 8080:80 or 127.0.0.1:8443:443/tcp"},
	"volumes":     {Type: "array", Description: "mounts, e.g. data:/var/lib/data or /srv/cfg:/etc/cfg:ro"},
	"network":     {Type: "string", Description: "network to attach the container to"},
	"labels":      {Type: "object", Description: "labels, key to value"},
	"restart":     {Type: "string", Enum: []string{"no", "on-failure", "always", "unless-stopped"}, Description: "restart policy"},
	"memory":      {Type: "string", Description: "memory limit, e.g. 512m or 2g"},
	"cpus":        {Type: "number", Description: "cpu limit in cores, e.g. 1.5"},
	"project":     {Type: "string", Description: "project label for later resume"},
}

// RecreateParams is ContainerParams demoted to optional overrides plus
// the target container. The captured configuration of the existing
// container fills whatever the caller leaves out.
var RecreateParams = recreateParams()

func recreateParams() map[string]Param {
	params := map[string]Param{
		"container_id": {Type: "string", Required: true, Description: "container to recreate"},
	}
	for key, p := range ContainerParams {
		p.Required = false
		params[key] = p
	}
	return params
}

// NetworkParams is the allow-list for network creation.
var NetworkParams = map[string]Param{
	"name":     {Type: "string", Required: true, Description: "network name"},
	"driver":   {Type: "string", Description: "network driver, default bridge"},
	"internal": {Type: "boolean", Description: "restrict external access"},
	"labels":   {Type: "object", Description: "labels, key to value"},
	"project":  {Type: "string", Description: "project label for later resume"},
}

// VolumeParams is the allow-list for volume creation. Driver options are
// not accepted; `device=` reaches arbitrary host paths.
var VolumeParams = map[string]Param{
	"volume_name": {Type: "string", Required: true, Description: "volume name"},
	"driver":      {Type: "string", Description: "volume driver, default local"},
	"labels":      {Type: "object", Description: "labels, key to value"},
	"project":     {Type: "string", Description: "project label for later resume"},
}

// checkAllowed is the allow-list gate. Every key outside params rejects
// the request, all offenders named at once.
func checkAllowed(op string, raw map[string]any, params map[string]Param) error {
	var unknown []string
	for key := range raw {
		if _, ok := params[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return &RejectionError{Op: op, Keys: unknown}
}
