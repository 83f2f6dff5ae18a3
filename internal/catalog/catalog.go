// Package catalog is the static operation registry: nineteen named
// operations bound to handlers at construction, dispatched by exact name.
// Arguments are validated against each operation's declared parameters
// before any handler runs; creation payloads additionally pass the policy
// sanitizer, which owns unknown-key rejection for them.
package catalog

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"stevedore/internal/engine"
	"stevedore/internal/policy"
)

// Operation is one catalog entry: the parameter table that drives both
// validation and the advertised schema, and the bound handler. Guarded
// operations delegate unknown-key enforcement to the sanitizer so a
// disallowed key surfaces as a rejection, not an invalid argument.
type Operation struct {
	Name        string
	Description string
	Params      map[string]policy.Param
	Guarded     bool

	handler func(ctx context.Context, args map[string]any) (any, error)
}

// Catalog dispatches named operations against one engine client. The
// operation table is built once by New and immutable afterwards.
type Catalog struct {
	client *engine.Client
	ops    map[string]Operation
	names  []string
}

func New(client *engine.Client) *Catalog {
	c := &Catalog{client: client, ops: make(map[string]Operation)}
	c.register(c.containerOps())
	c.register(c.imageOps())
	c.register(c.networkOps())
	c.register(c.volumeOps())
	return c
}

func (c *Catalog) register(ops []Operation) {
	for _, op := range ops {
		c.ops[op.Name] = op
		c.names = append(c.names, op.Name)
	}
}

// Operations returns the catalog in registration order.
func (c *Catalog) Operations() []Operation {
	out := make([]Operation, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.ops[name])
	}
	return out
}

// Dispatch validates args against the named operation and runs its
// handler. Unknown names and argument violations are caller contract
// errors; everything past validation belongs to the handler.
func (c *Catalog) Dispatch(ctx context.Context, name string, args map[string]any) (any, error) {
	op, ok := c.ops[name]
	if !ok {
		return nil, &UnknownOperationError{Name: name}
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArgs(op, args); err != nil {
		return nil, err
	}
	return op.handler(ctx, args)
}

func validateArgs(op Operation, args map[string]any) error {
	if !op.Guarded {
		for _, key := range slices.Sorted(maps.Keys(args)) {
			if _, ok := op.Params[key]; !ok {
				return &InvalidArgumentsError{Op: op.Name, Field: key, Reason: "unknown argument"}
			}
		}
	}
	for _, name := range slices.Sorted(maps.Keys(op.Params)) {
		p := op.Params[name]
		v, present := args[name]
		if !present || v == nil {
			if p.Required {
				return &InvalidArgumentsError{Op: op.Name, Field: name, Reason: "required"}
			}
			continue
		}
		if !typeConforms(p.Type, v) {
			return &InvalidArgumentsError{Op: op.Name, Field: name, Reason: "must be a " + p.Type}
		}
		if len(p.Enum) > 0 {
			s, _ := v.(string)
			if !slices.Contains(p.Enum, s) {
				return &InvalidArgumentsError{Op: op.Name, Field: name, Reason: "must be one of " + strings.Join(p.Enum, ", ")}
			}
		}
	}
	return nil
}

// typeConforms checks a raw value against a declared wire type. Arrays
// admit a bare string and numbers admit numeric strings; the sanitizer
// and argument accessors perform the same coercions.
func typeConforms(typ string, v any) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "integer":
		switch n := v.(type) {
		case int:
			return true
		case float64:
			return n == float64(int64(n))
		}
		return false
	case "number":
		switch v.(type) {
		case int, float64, string:
			return true
		}
		return false
	case "array":
		switch v.(type) {
		case []any, []string, string:
			return true
		}
		return false
	case "object":
		switch v.(type) {
		case map[string]any, map[string]string:
			return true
		}
		return false
	}
	return true
}

// convertPolicyError maps sanitizer value failures onto the
// invalid-arguments contract; rejections pass through untouched.
func convertPolicyError(op string, err error) error {
	var ve *policy.ValueError
	if errors.As(err, &ve) {
		return &InvalidArgumentsError{Op: op, Field: ve.Key, Reason: ve.Reason}
	}
	return err
}

func containerResult(id, name, status string) map[string]any {
	return map[string]any{
		"id":     engine.ShortID(id),
		"name":   name,
		"status": status,
	}
}
