package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileIsEmptyConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Contexts) != 0 || cfg.CurrentContext != "" {
		t.Errorf("got %+v, want an empty config", cfg)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Set("builder", Context{Host: "ssh://deploy@builder", AcceptNewHostKeys: true})
	cfg.Set("local", Context{})
	if err := cfg.Use("builder"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	name, ctx, ok := loaded.Current()
	if !ok || name != "builder" {
		t.Fatalf("Current = %q %v %v, want builder", name, ctx, ok)
	}
	if ctx.Host != "ssh://deploy@builder" || !ctx.AcceptNewHostKeys {
		t.Errorf("context = %+v, want the saved values", ctx)
	}
}

func TestConfig_FileShape(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := &Config{Contexts: map[string]Context{
		"builder": {Host: "ssh://builder", AcceptNewHostKeys: true},
	}}
	cfg.CurrentContext = "builder"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stevedore", "config.yaml"))
	if err != nil {
		t.Fatalf("read config file: %v", err)
	}
	for _, want := range []string{"current-context: builder", "accept-new-host-keys: true", "host: ssh://builder"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q:\n%s", want, data)
		}
	}
}

func TestUse_UnknownContext(t *testing.T) {
	cfg := &Config{Contexts: map[string]Context{}}

	if err := cfg.Use("ghost"); err == nil {
		t.Fatal("Use should fail for an unknown name")
	}
}

func TestRemove_ClearsCurrent(t *testing.T) {
	cfg := &Config{
		CurrentContext: "builder",
		Contexts:       map[string]Context{"builder": {Host: "ssh://builder"}},
	}

	if err := cfg.Remove("builder"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cfg.CurrentContext != "" {
		t.Errorf("CurrentContext = %q, want cleared", cfg.CurrentContext)
	}
	if err := cfg.Remove("builder"); err == nil {
		t.Error("second Remove should fail")
	}
}

func TestResolve_Precedence(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Set("builder", Context{Host: "ssh://builder"})
	cfg.Set("registry", Context{Host: "tcp://registry:2376"})
	if err := cfg.Use("builder"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Explicit name wins over the current context.
	ctx, err := Resolve("registry")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ctx.Host != "tcp://registry:2376" {
		t.Errorf("Host = %q, want the named context", ctx.Host)
	}

	// No name falls back to the current context.
	ctx, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ctx.Host != "ssh://builder" {
		t.Errorf("Host = %q, want the current context", ctx.Host)
	}

	// Unknown explicit name is an error.
	if _, err := Resolve("ghost"); err == nil {
		t.Error("Resolve should fail for an unknown name")
	}
}

func TestResolve_NoConfigIsDefaultEngine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	ctx, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ctx != (Context{}) {
		t.Errorf("context = %+v, want the zero default", ctx)
	}
}
