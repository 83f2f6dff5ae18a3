package server

import (
	"context"
	"encoding/json"
	"errors"

	"stevedore/internal/engine"
	"stevedore/internal/mcp"
	"stevedore/internal/resource"
)

const resourceMimeType = "application/json"

func (s *Server) listResources(ctx context.Context) (any, *mcp.Error) {
	entries, err := s.resolver.List(ctx)
	if err != nil {
		return nil, mcp.Errorf(mcp.ErrCodeInternal, "list resources: %v", err)
	}
	resources := make([]mcp.Resource, 0, len(entries))
	for _, e := range entries {
		resources = append(resources, mcp.Resource{
			URI:         e.URI,
			Name:        e.Name,
			Description: e.Description,
			MimeType:    resourceMimeType,
		})
	}
	return mcp.ResourcesListResult{Resources: resources}, nil
}

func (s *Server) readResource(ctx context.Context, params json.RawMessage) (any, *mcp.Error) {
	var p mcp.ResourceReadParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "resources/read params: %v", err)
	}

	payload, err := s.resolver.Resolve(ctx, p.URI)
	if err != nil {
		var unsupported *resource.UnsupportedResourceError
		if errors.As(err, &unsupported) {
			return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "%v", unsupported)
		}
		var notFound *engine.NotFoundError
		if errors.As(err, &notFound) {
			return nil, mcp.Errorf(mcp.ErrCodeResourceNotFound, "%v", notFound)
		}
		return nil, mcp.Errorf(mcp.ErrCodeInternal, "read resource: %v", err)
	}

	text, mcpErr := jsonText(payload)
	if mcpErr != nil {
		return nil, mcpErr
	}
	return mcp.ResourceReadResult{
		Contents: []mcp.ResourceContent{{URI: p.URI, MimeType: resourceMimeType, Text: text}},
	}, nil
}
