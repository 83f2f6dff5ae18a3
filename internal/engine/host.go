package engine

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// sshLookup reads one key for an alias from the ssh client configuration.
// The production lookup consults ~/.ssh/config and /etc/ssh/ssh_config;
// tests substitute a decoded fixture.
type sshLookup func(alias, key string) (string, error)

func userSSHConfig(alias, key string) (string, error) {
	return ssh_config.DefaultUserSettings.GetStrict(alias, key)
}

// resolveTarget normalizes a connection target into a form the SDK can
// dial. Bare user@host shorthand becomes an ssh:// URL and absolute paths
// become unix:// URLs. ssh:// URLs without an explicit user are treated as
// config aliases and resolved through lookup; an alias the ssh config
// cannot resolve to a hostname is a ConfigError, not a dial failure.
func resolveTarget(raw string, lookup sshLookup) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", nil
	}

	if strings.HasPrefix(target, "/") {
		return "unix://" + target, nil
	}
	if !strings.Contains(target, "://") && strings.Contains(target, "@") {
		target = "ssh://" + target
	}
	if !strings.HasPrefix(target, "ssh://") {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", &ConfigError{Detail: fmt.Sprintf("invalid host url %q: %v", target, err)}
	}
	if u.User != nil {
		// Explicit user@host — nothing to resolve.
		return target, nil
	}
	return resolveSSHAlias(u, lookup)
}

// resolveSSHAlias rewrites ssh://<alias>[:port] using the ssh client
// configuration. The port from the URL wins over the configured one, and
// the default port 22 is elided from the rewritten URL.
func resolveSSHAlias(u *url.URL, lookup sshLookup) (string, error) {
	alias := u.Hostname()
	if alias == "" {
		return "", &ConfigError{Detail: "ssh host url has no host"}
	}

	hostname, err := lookup(alias, "HostName")
	if err != nil {
		return "", &ConfigError{Detail: fmt.Sprintf("read ssh config for %q: %v", alias, err)}
	}
	if hostname == "" {
		return "", &ConfigError{Detail: fmt.Sprintf("ssh alias %q does not resolve to a hostname in the ssh config", alias)}
	}

	user, err := lookup(alias, "User")
	if err != nil {
		return "", &ConfigError{Detail: fmt.Sprintf("read ssh config for %q: %v", alias, err)}
	}
	port := u.Port()
	if port == "" {
		port, err = lookup(alias, "Port")
		if err != nil {
			return "", &ConfigError{Detail: fmt.Sprintf("read ssh config for %q: %v", alias, err)}
		}
	}

	resolved := "ssh://"
	if user != "" {
		resolved += user + "@"
	}
	resolved += hostname
	if port != "" && port != "22" {
		resolved += ":" + port
	}
	return resolved, nil
}

// hostFromEnv returns the engine target from the environment, empty when
// unset. The SDK would apply the same variable itself, but resolving it
// here keeps alias rewriting and diagnostics on one path.
func hostFromEnv() string {
	return strings.TrimSpace(os.Getenv("DOCKER_HOST"))
}
