package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListOrgsTool handles the list_orgs MCP tool.
type ListOrgsTool struct {
	deps Deps
}

// NewListOrgsTool creates a ListOrgsTool.
func NewListOrgsTool(deps Deps) *ListOrgsTool {
	return &ListOrgsTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *ListOrgsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_orgs",
		mcp.WithDescription(
			"List all orgs connected to CumulusCI, including scratch orgs "+
				"and their expiration. Use this before operations that need "+
				"an org name the user hasn't specified.",
		),
	)
}

// Handle processes the list_orgs tool call.
func (t *ListOrgsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res, ok := t.deps.gate(ctx); !ok {
		return res, nil
	}
	return t.deps.run(ctx, "List connected orgs", "org:list", "", "org", "list")
}
