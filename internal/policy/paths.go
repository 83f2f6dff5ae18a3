package policy

import (
	"path"
	"strings"
)

// sensitiveHostPaths are bind-mount sources refused regardless of the
// read-only flag, matched by equality or path prefix.
var sensitiveHostPaths = []string{
	"/",
	"/boot",
	"/dev",
	"/etc",
	"/proc",
	"/run/docker.sock",
	"/sys",
	"/var/run/docker.sock",
}

// sensitiveHostPath returns the reject-list entry source falls under,
// empty when the path is acceptable.
func sensitiveHostPath(source string) string {
	cleaned := path.Clean(source)
	for _, p := range sensitiveHostPaths {
		if cleaned == p {
			return p
		}
		if p != "/" && strings.HasPrefix(cleaned, p+"/") {
			return p
		}
	}
	return ""
}
