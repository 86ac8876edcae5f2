package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sfcore/th-dev/internal/history"
)

// RunHistoryTool handles the cci_run_history MCP tool. It reads the
// local archive of executions this server has performed — useful for
// "what did we run against prod yesterday" questions.
type RunHistoryTool struct {
	store *history.Store
}

// NewRunHistoryTool creates a RunHistoryTool.
func NewRunHistoryTool(store *history.Store) *RunHistoryTool {
	return &RunHistoryTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *RunHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("cci_run_history",
		mcp.WithDescription(
			"Show recent CCI executions performed through this server: task, "+
				"org, exit code and duration. This reads a local archive — it "+
				"never contacts an org.",
		),
		mcp.WithString("task_name",
			mcp.Description("Only show runs of this task. Omit for all tasks."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs to show. Defaults to 20."),
		),
	)
}

// Handle processes the cci_run_history tool call.
func (t *RunHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskName := req.GetString("task_name", "")
	limit := req.GetInt("limit", 20)

	runs, err := t.store.Recent(ctx, taskName, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reading run history: %v", err)), nil
	}

	if len(runs) == 0 {
		return mcp.NewToolResultText("No recorded CCI runs yet.\n"), nil
	}

	var sb strings.Builder
	sb.WriteString("# Recent CCI Runs\n\n")
	sb.WriteString("| When (UTC) | Task | Org | Result | Duration |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, r := range runs {
		result := "ok"
		if !r.Succeeded {
			result = fmt.Sprintf("exit %d", r.ExitCode)
		}
		org := r.Org
		if org == "" {
			org = "—"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %dms |\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.TaskName, org, result, r.DurationMs)
	}

	for _, r := range runs {
		if !r.Succeeded && strings.TrimSpace(r.Stderr) != "" {
			fmt.Fprintf(&sb, "\n## stderr of failed %s (%s)\n\n```\n%s\n```\n",
				r.TaskName, r.CreatedAt.Format("2006-01-02 15:04"), strings.TrimSpace(r.Stderr))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
