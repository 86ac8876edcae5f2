package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// CheckInstallationTool handles the check_cci_installation MCP tool.
// It reports the cached environment verdict, or re-probes on request.
type CheckInstallationTool struct {
	probe Prober
}

// NewCheckInstallationTool creates a CheckInstallationTool.
func NewCheckInstallationTool(probe Prober) *CheckInstallationTool {
	return &CheckInstallationTool{probe: probe}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckInstallationTool) Definition() mcp.Tool {
	return mcp.NewTool("check_cci_installation",
		mcp.WithDescription(
			"Check whether CumulusCI and its devenv are installed and usable. "+
				"Returns the installed version when ready, or the ordered "+
				"remediation commands when not. Run this first if any CCI "+
				"operation reports a missing tool.",
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Bypass the cached verdict and probe the environment again. Use after running remediation commands."),
		),
	)
}

// Handle processes the check_cci_installation tool call.
func (t *CheckInstallationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	check := t.probe.Check
	if req.GetBool("refresh", false) {
		check = t.probe.Refresh
	}

	state, err := check(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !state.Ready {
		return mcp.NewToolResultText(formatEnvNotReady(state)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# CCI Environment Ready\n\n"+
			"**CumulusCI version:** %s\n"+
			"**Checked at:** %s\n\n"+
			"All CCI operations are available.\n",
		state.ToolVersion, state.CheckedAt.Format("2006-01-02 15:04:05"),
	)), nil
}
