package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RetrieveChangesTool handles the retrieve_changes MCP tool. It pulls
// all metadata changed in the org since the last retrieval into the
// local project.
type RetrieveChangesTool struct {
	deps Deps
}

// NewRetrieveChangesTool creates a RetrieveChangesTool.
func NewRetrieveChangesTool(deps Deps) *RetrieveChangesTool {
	return &RetrieveChangesTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *RetrieveChangesTool) Definition() mcp.Tool {
	return mcp.NewTool("retrieve_changes",
		mcp.WithDescription(
			"Retrieve metadata changes from the specified org into the local "+
				"project — everything changed in the org since the last "+
				"retrieval. If the user hasn't named an org, call list_orgs "+
				"first so they can choose one.",
		),
		mcp.WithString("org_name",
			mcp.Required(),
			mcp.Description("Name of the org to retrieve changes from."),
		),
	)
}

// Handle processes the retrieve_changes tool call.
func (t *RetrieveChangesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	return t.deps.run(ctx, fmt.Sprintf("Retrieve changes from org %q", orgName),
		"retrieve_changes", orgName,
		"task", "run", "retrieve_changes", "--org", orgName)
}
