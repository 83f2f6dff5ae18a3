package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stevedore/internal/mcp"
	"stevedore/internal/project"
)

const composePromptName = "docker_compose"

func (s *Server) listPrompts() mcp.PromptsListResult {
	return mcp.PromptsListResult{Prompts: []mcp.Prompt{{
		Name:        composePromptName,
		Description: "Bring up or resume a labeled multi-container project",
		Arguments: []mcp.PromptArgument{
			{Name: "project", Description: "project name, used as the label value on every created resource", Required: true},
			{Name: "instructions", Description: "what the project should look like when done"},
		},
	}}}
}

func (s *Server) getPrompt(ctx context.Context, params json.RawMessage) (any, *mcp.Error) {
	var p mcp.PromptGetParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "prompts/get params: %v", err)
	}
	if p.Name != composePromptName {
		return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "unknown prompt %q", p.Name)
	}
	name := strings.TrimSpace(p.Arguments["project"])
	if name == "" {
		return nil, mcp.Errorf(mcp.ErrCodeInvalidParams, "prompt %q requires a project argument", composePromptName)
	}

	summary, err := project.Resume(ctx, s.client, name)
	if err != nil {
		return nil, mcp.Errorf(mcp.ErrCodeInternal, "resume project %q: %v", name, err)
	}

	return mcp.PromptGetResult{
		Description: fmt.Sprintf("Container project %q", name),
		Messages: []mcp.PromptMessage{{
			Role:    "user",
			Content: mcp.ContentBlock{Type: "text", Text: renderComposePrompt(summary, p.Arguments["instructions"])},
		}},
	}, nil
}

func renderComposePrompt(summary project.Summary, instructions string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You manage the container project %q through the available tools.\n", summary.Name)
	fmt.Fprintf(&b, "Pass project=%q when creating containers, networks or volumes so they carry the %s label.\n", summary.Name, project.Label)
	b.WriteString("Check current state with the listing tools before changing anything.\n\n")

	if summary.Empty() {
		b.WriteString("No resources carry this project label yet; you are starting fresh.\n")
	} else {
		b.WriteString("Current project state:\n")
		for _, c := range summary.Containers {
			fmt.Fprintf(&b, "- container %s (%s, %s)\n", c.Name, c.ID, c.State)
		}
		for _, n := range summary.Networks {
			fmt.Fprintf(&b, "- network %s (%s)\n", n.Name, n.ID)
		}
		for _, v := range summary.Volumes {
			fmt.Fprintf(&b, "- volume %s\n", v.Name)
		}
	}

	if instructions := strings.TrimSpace(instructions); instructions != "" {
		fmt.Fprintf(&b, "\nGoal:\n%s\n", instructions)
	}
	return b.String()
}
