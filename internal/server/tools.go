package server

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"stevedore/internal/catalog"
	"stevedore/internal/engine"
	"stevedore/internal/mcp"
	"stevedore/internal/policy"
	"stevedore/internal/telemetry"
)

func (s *Server) listTools() mcp.ToolsListResult {
	ops := s.catalog.Operations()
	tools := make([]mcp.Tool, 0, len(ops))
	for _, op := range ops {
		tools = append(tools, mcp.Tool{
			Name:        op.Name,
			Description: op.Description,
			InputSchema: schemaFor(op.Params),
		})
	}
	return mcp.ToolsListResult{Tools: tools}
}

// schemaFor renders declarative params as a JSON schema object.
func schemaFor(params map[string]policy.Param) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string
	for _, name := range slices.Sorted(maps.Keys(params)) {
		p := params[name]
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		switch p.Type {
		case "array":
			prop["items"] = map[string]any{"type": "string"}
		case "object":
			prop["additionalProperties"] = map[string]any{"type": "string"}
		}
		properties[name] = prop
		if p.Required {
			required = append(required, name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, *mcp.Error) {
	var p mcp.ToolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "tools/call params: %v", err)
	}
	if p.Name == "" {
		return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "tools/call params: missing tool name")
	}

	var result any
	err := telemetry.Step(ctx, s.tracer, "tool."+p.Name, func(ctx context.Context) error {
		var err error
		result, err = s.catalog.Dispatch(ctx, p.Name, p.Arguments)
		return err
	})
	if err != nil {
		var unknown *catalog.UnknownOperationError
		if errors.As(err, &unknown) {
			// A name outside the catalog is a protocol-level mistake, not
			// a failed tool run.
			return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "%v", unknown)
		}
		return mcp.ToolCallResult{IsError: true, Content: mcp.TextContent(toolErrorText(err))}, nil
	}

	text, mcpErr := jsonText(result)
	if mcpErr != nil {
		return nil, mcpErr
	}
	return mcp.ToolCallResult{Content: mcp.TextContent(text)}, nil
}

// toolErrorText prefixes the failure category so the calling model can
// react to the class of failure without parsing Go types.
func toolErrorText(err error) string {
	var (
		rejection  *policy.RejectionError
		invalid    *catalog.InvalidArgumentsError
		partial    *catalog.PartialFailureError
		notFound   *engine.NotFoundError
		connection *engine.ConnectionError
		config     *engine.ConfigError
	)
	category := "engine"
	switch {
	case errors.As(err, &rejection):
		category = "rejected"
	case errors.As(err, &invalid):
		category = "invalid arguments"
	case errors.As(err, &partial):
		category = "partial failure"
	case errors.As(err, &notFound):
		category = "not found"
	case errors.As(err, &connection):
		category = "connection"
	case errors.As(err, &config):
		category = "config"
	}
	return category + ": " + err.Error()
}
