package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// RunTestsTool handles the run_tests MCP tool. It runs the project's
// full test suite — Apex, Jest and Flow unit tests plus PMD, ESLint
// and Flow Scanner static scans — via the run_all_tests_locally task.
type RunTestsTool struct {
	deps Deps
}

// NewRunTestsTool creates a RunTestsTool.
func NewRunTestsTool(deps Deps) *RunTestsTool {
	return &RunTestsTool{deps: deps}
}

// Definition returns the MCP tool definition for registration.
func (t *RunTestsTool) Definition() mcp.Tool {
	return mcp.NewTool("run_tests",
		mcp.WithDescription(
			"Run ALL unit tests and static code scans in a CumulusCI org: "+
				"Apex, Jest and Flow tests plus PMD, ESLint and Flow Scanner. "+
				"Use this when the user wants the whole suite; for one specific "+
				"test task, use run_generic_cci_task to find the right task.",
		),
		mcp.WithString("org_name",
			mcp.Description("Name of the org to run tests in. Defaults to \"dev\"."),
			mcp.DefaultString("dev"),
		),
	)
}

// Handle processes the run_tests tool call.
func (t *RunTestsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgName := req.GetString("org_name", "dev")
	if !orgNameRe.MatchString(orgName) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid org_name %q", orgName)), nil
	}

	if res, ok := t.deps.gate(ctx); !ok {
		return res, nil
	}
	return t.deps.run(ctx, fmt.Sprintf("Run all tests in org %q", orgName),
		"run_all_tests_locally", orgName,
		"task", "run", "run_all_tests_locally", "--org", orgName)
}
