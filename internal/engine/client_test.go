package engine

import (
	"context"
	"errors"
	"testing"
)

func TestConnect_UnresolvableAliasFailsBeforeDialing(t *testing.T) {
	lookup := fixtureLookup(t)

	_, err := Connect(context.Background(), WithHost("ssh://nameless"), withSSHLookup(lookup))

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want *ConfigError", err)
	}
}

func TestPing_WrapsFailure(t *testing.T) {
	pingErr := errors.New("engine unreachable")
	docker := &fakeDocker{pingErr: pingErr}
	c := NewFromAPI(docker, "tcp://10.0.0.5:2376")

	err := c.Ping(context.Background())

	var engErr *EngineError
	if !errors.As(err, &engErr) {
		t.Fatalf("got %v, want *EngineError", err)
	}
	if !errors.Is(err, pingErr) {
		t.Errorf("got %v, want wrapped %v", err, pingErr)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"sha256:8c2df32914aa0e4786d11c01c68e6328a8a29e6ad3fcf3708f0aa060ab0bbdea", "8c2df32914aa"},
		{"8c2df32914aa0e4786d11c01c68e6328a8a29e6ad3fcf3708f0aa060ab0bbdea", "8c2df32914aa"},
		{"8c2df3", "8c2df3"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortID(tt.id); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
