package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// DeployTool handles the deploy MCP tool.
type DeployTool struct {
	deps Deps
}

// NewDeployTool creates a DeployTool.
func NewDeployTool(deps Deps) *DeployTool {
	return &DeployTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *DeployTool) Definition() mcp.Tool {
	return mcp.NewTool("deploy",
		mcp.WithDescription(
			"Deploy local metadata to the specified org. "+
				"If the user hasn't named an org, call list_orgs first so "+
				"they can choose one.",
		),
		mcp.WithString("org_name",
			mcp.Required(),
			mcp.Description("Name of the org to deploy to."),
		),
		mcp.WithString("path",
			mcp.Description("Directory containing the metadata to deploy. Must be a directory, not a file. Omit to deploy the project default source."),
		),
		mcp.WithBoolean("check_only",
			mcp.Description("When true, performs a validation-only deploy (simulation) without saving anything to the org."),
		),
	)
}

// Handle processes the deploy tool call.
func (t *DeployTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgName := req.GetString("org_name", "")
	if orgName == "" {
		return mcp.NewToolResultError("'org_name' is required — use list_orgs to see available orgs"), nil
	}
	if !orgNameRe.MatchString(orgName) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid org_name %q", orgName)), nil
	}
	path := req.GetString("path", "")
	checkOnly := req.GetBool("check_only", false)

	if res, ok := t.deps.gate(ctx); !ok {
		return res, nil
	}

	args := []string{"task", "run", "deploy", "--org", orgName,
		"--check_only", strconv.FormatBool(checkOnly)}
	if path != "" {
		args = append(args, "--path", path)
	}

	purpose := fmt.Sprintf("Deploy metadata to org %q", orgName)
	if checkOnly {
		purpose = fmt.Sprintf("Validate deployment to org %q (check only)", orgName)
	}
	return t.deps.run(ctx, purpose, "deploy", orgName, args...)
}
