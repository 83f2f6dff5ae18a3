// Package server binds the operation catalog, the resource resolver and
// the project query onto the MCP wire surface.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"stevedore/internal/catalog"
	"stevedore/internal/engine"
	"stevedore/internal/mcp"
	"stevedore/internal/resource"
	"stevedore/internal/support/buildinfo"
	"stevedore/internal/telemetry"
)

// Server answers MCP requests against one connected engine client.
type Server struct {
	client   *engine.Client
	catalog  *catalog.Catalog
	resolver *resource.Resolver
	tracer   trace.Tracer
}

func New(client *engine.Client, tp *telemetry.Provider) *Server {
	return &Server{
		client:   client,
		catalog:  catalog.New(client),
		resolver: resource.NewResolver(client),
		tracer:   tp.Tracer("stevedore/server"),
	}
}

// Handle implements mcp.Handler.
func (s *Server) Handle(ctx context.Context, method string, params json.RawMessage) (any, *mcp.Error) {
	switch method {
	case "initialize":
		return s.initialize(params)
	case "notifications/initialized":
		return nil, nil
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return s.listTools(), nil
	case "tools/call":
		return s.callTool(ctx, params)
	case "resources/list":
		return s.listResources(ctx)
	case "resources/read":
		return s.readResource(ctx, params)
	case "prompts/list":
		return s.listPrompts(), nil
	case "prompts/get":
		return s.getPrompt(ctx, params)
	}
	return nil, mcp.Errorf(mcp.ErrCodeMethodNotFound, "method %q not found", method)
}

func (s *Server) initialize(params json.RawMessage) (any, *mcp.Error) {
	var p mcp.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "initialize params: %v", err)
		}
	}
	slog.Info("Client initialized.", "client", p.ClientInfo.Name, "clientVersion", p.ClientInfo.Version, "protocol", p.ProtocolVersion)

	return mcp.InitializeResult{
		ProtocolVersion: mcp.ProtocolVersion,
		Capabilities: mcp.Capabilities{
			Tools:     &mcp.ToolsCapability{},
			Resources: &mcp.ResourcesCapability{},
			Prompts:   &mcp.PromptsCapability{},
		},
		ServerInfo: mcp.ServerInfo{Name: "stevedore", Version: buildinfo.Version},
	}, nil
}

func jsonText(v any) (string, *mcp.Error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", mcp.Errorf(mcp.ErrCodeInternal, "encode result: %v", err)
	}
	return string(payload), nil
}
