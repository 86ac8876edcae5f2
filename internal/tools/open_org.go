package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// OpenOrgTool handles the open_org MCP tool.
type OpenOrgTool struct {
	deps Deps
}

// NewOpenOrgTool creates an OpenOrgTool.
func NewOpenOrgTool(deps Deps) *OpenOrgTool {
	return &OpenOrgTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *OpenOrgTool) Definition() mcp.Tool {
	return mcp.NewTool("open_org",
		mcp.WithDescription(
			"Open the specified org in a browser. If the user hasn't named "+
				"an org, call list_orgs first so they can choose one.",
		),
		mcp.WithString("org_name",
			mcp.Required(),
			mcp.Description("Name of the org to open."),
		),
	)
}

// Handle processes the open_org tool call.
func (t *OpenOrgTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgName := req.GetString("org_name", "")
	if orgName == "" {
		return mcp.NewToolResultError("'org_name' is required — use list_orgs to see available orgs"), nil
	}
	if !orgNameRe.MatchString(orgName) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid org_name %q", orgName)), nil
	}

	if res, ok := t.deps.gate(ctx); !ok {
		return res, nil
	}
	return t.deps.run(ctx, fmt.Sprintf("Open org %q in browser", orgName),
		"org:browser", orgName,
		"org", "browser", "--org", orgName)
}
