// Package config handles CLI context configuration for reaching Docker
// engines.
//
// Config is stored at $XDG_CONFIG_HOME/stevedore/config.yaml (defaults to
// ~/.config/stevedore/config.yaml) and follows the kubeconfig pattern:
// named contexts with a current-context selector.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Context describes how to reach one Docker engine.
type Context struct {
	// Host is the engine reference: empty for the default local socket,
	// unix:///path, tcp://host:port, or ssh://[user@]host[:port] where
	// host may be an ssh config alias.
	Host string `yaml:"host,omitempty"`

	// AcceptNewHostKeys lets the ssh transport trust hosts that are not
	// in known_hosts yet on first connect.
	AcceptNewHostKeys bool `yaml:"accept-new-host-keys,omitempty"`
}

// Config holds named engine contexts and the current selection.
type Config struct {
	CurrentContext string             `yaml:"current-context"`
	Contexts       map[string]Context `yaml:"contexts"`
}

// Path returns the config file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/stevedore/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "stevedore", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "stevedore", "config.yaml")
}

// Load reads the config file. If the file does not exist, an empty Config
// is returned (not an error).
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{Contexts: make(map[string]Context)}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]Context)
	}
	return &cfg, nil
}

// Save writes the config to disk, creating directories as needed.
func (c *Config) Save() error {
	p := Path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Current returns the current context name and value.
// The bool is false when no current context is set.
func (c *Config) Current() (string, Context, bool) {
	if c.CurrentContext == "" {
		return "", Context{}, false
	}
	ctx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return "", Context{}, false
	}
	return c.CurrentContext, ctx, true
}

// Use sets the current context. It returns an error if the name doesn't exist.
func (c *Config) Use(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return nil
}

// Set adds or updates a named context.
func (c *Config) Set(name string, ctx Context) {
	c.Contexts[name] = ctx
}

// Remove deletes a context. If it was the current context, current-context
// is cleared. Returns an error if the name doesn't exist.
func (c *Config) Remove(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return nil
}

// Resolve picks the engine context for a run: an explicit --context name
// wins, then the saved current context, then the zero Context (default
// local socket). An explicit name that does not exist is an error; a
// missing current context is not.
func Resolve(contextName string) (Context, error) {
	cfg, err := Load()
	if err != nil {
		return Context{}, err
	}
	if contextName != "" {
		ctx, ok := cfg.Contexts[contextName]
		if !ok {
			return Context{}, fmt.Errorf("context %q not found", contextName)
		}
		return ctx, nil
	}
	if _, ctx, ok := cfg.Current(); ok {
		return ctx, nil
	}
	return Context{}, nil
}
