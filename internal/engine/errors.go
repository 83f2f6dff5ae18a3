package engine

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// ConnectionError reports that the engine was unreachable when the handle
// was established. It is fatal to the request and never retried.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	host := e.Host
	if host == "" {
		host = "default socket"
	}
	return fmt.Sprintf("connect to docker engine at %s: %v", host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ConfigError reports invalid connection configuration, such as an ssh
// alias with no entry in the ssh client config. Distinct from
// ConnectionError: nothing was dialed.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string {
	return "engine configuration: " + e.Detail
}

// NotFoundError reports that a referenced entity does not exist on the
// engine. Kind is one of "container", "image", "network", "volume".
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

// EngineError reports that the engine failed executing an otherwise valid
// request. The engine's own message is preserved in the cause.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// classify translates an SDK error at the facade boundary: missing
// entities become NotFoundError, everything else EngineError.
func classify(op, kind, ref string, err error) error {
	if err == nil {
		return nil
	}
	if errdefs.IsNotFound(err) {
		return &NotFoundError{Kind: kind, Ref: ref}
	}
	return &EngineError{Op: op, Err: err}
}
