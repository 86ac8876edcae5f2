package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sfcore/th-dev/internal/cci"
)

// TaskBroker is the broker surface this tool depends on.
type TaskBroker interface {
	Run(ctx context.Context, req cci.InvocationRequest) (cci.Outcome, error)
}

// GenericTaskTool handles the run_generic_cci_task MCP tool — the path
// for any CCI task without a dedicated tool. The broker discovers the
// task, fetches its parameter contract, resolves supplied parameters,
// and executes; each failure class comes back as its own structured
// payload for the caller to act on.
type GenericTaskTool struct {
	broker       TaskBroker
	projectTasks []string // from cumulusci.yml; shown on TASK_NOT_FOUND
}

// NewGenericTaskTool creates a GenericTaskTool. projectTasks may be nil
// when the server runs outside a CumulusCI project root.
func NewGenericTaskTool(broker TaskBroker, projectTasks []string) *GenericTaskTool {
	return &GenericTaskTool{broker: broker, projectTasks: projectTasks}
}

// Definition returns the MCP tool definition for registration.
func (t *GenericTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("run_generic_cci_task",
		mcp.WithDescription(
			"Run any CCI task that doesn't have a dedicated tool. The server "+
				"checks that the task exists, reads its parameter contract, and "+
				"runs it with the supplied parameters. If required parameters "+
				"are missing, the response lists them — ask the user for the "+
				"values and call this tool again with the full parameter set.",
		),
		mcp.WithString("task_name",
			mcp.Required(),
			mcp.Description("Name of the CCI task to run (e.g. 'update_dependencies')."),
		),
		mcp.WithString("parameters",
			mcp.Description("Task parameters as a JSON object of name→value pairs, e.g. {\"path\": \"force-app\", \"check_only\": false}. Omit for tasks without parameters."),
		),
		mcp.WithString("org_name",
			mcp.Description("Target org for the task. Omit for tasks that don't touch an org."),
		),
	)
}

// Handle processes the run_generic_cci_task tool call.
func (t *GenericTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskName := strings.TrimSpace(req.GetString("task_name", ""))
	if taskName == "" {
		return mcp.NewToolResultError("'task_name' is required"), nil
	}
	orgName := req.GetString("org_name", "")
	if orgName != "" && !orgNameRe.MatchString(orgName) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid org_name %q", orgName)), nil
	}

	params, err := parseParameters(req.GetString("parameters", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid 'parameters': %v", err)), nil
	}

	outcome, err := t.broker.Run(ctx, cci.InvocationRequest{
		TaskName:   taskName,
		Parameters: params,
		Org:        orgName,
	})
	if err != nil {
		// ProbeMechanismUnavailable or an unspawnable introspection call:
		// hard failure, still delivered as a structured result.
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(t.formatOutcome(taskName, outcome)), nil
}

// parseParameters decodes the caller's JSON parameter object into the
// string map cci expects. Non-string values (booleans, numbers) are
// rendered the way cci accepts them on the command line.
func parseParameters(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}

	params := make(map[string]string, len(decoded))
	for name, value := range decoded {
		switch v := value.(type) {
		case string:
			params[name] = v
		case bool:
			if v {
				params[name] = "True"
			} else {
				params[name] = "False"
			}
		case float64:
			params[name] = strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
		case nil:
			return nil, fmt.Errorf("parameter %q is null", name)
		default:
			return nil, fmt.Errorf("parameter %q must be a string, bool or number", name)
		}
	}
	return params, nil
}

// formatOutcome renders each terminal broker state as its caller-facing
// payload.
func (t *GenericTaskTool) formatOutcome(taskName string, o cci.Outcome) string {
	switch o.Kind {
	case cci.OutcomeEnvNotReady:
		return formatEnvNotReady(*o.Env)

	case cci.OutcomeTaskNotFound:
		var sb strings.Builder
		fmt.Fprintf(&sb, "# Task %q Not Found\n\n", taskName)
		sb.WriteString("The task is not in the available CCI tasks.")
		if len(o.Suggestions) > 0 {
			sb.WriteString(" Did you mean one of these?\n\n")
			for _, name := range o.Suggestions {
				fmt.Fprintf(&sb, "- `%s`\n", name)
			}
		} else {
			sb.WriteString("\n")
		}
		if len(t.projectTasks) > 0 {
			sb.WriteString("\nTasks defined in this project's cumulusci.yml:\n\n")
			for _, name := range t.projectTasks {
				fmt.Fprintf(&sb, "- `%s`\n", name)
			}
		}
		sb.WriteString("\nIf none of these fit, contact the devops architect team to create a task for this purpose.\n")
		return sb.String()

	case cci.OutcomeParametersIncomplete:
		var sb strings.Builder
		fmt.Fprintf(&sb, "# Missing Parameters for %q\n\n", o.Prompt.TaskName)
		sb.WriteString("I need the following values to run this task. Ask the user, then call run_generic_cci_task again with the full parameter set:\n\n")
		for _, spec := range o.Prompt.Missing {
			desc := spec.Description
			if desc == "" {
				desc = "(no description provided by cci)"
			}
			fmt.Fprintf(&sb, "- **%s**: %s\n", spec.Name, desc)
		}
		return sb.String()

	case cci.OutcomeExecutionFailed:
		return formatResult(fmt.Sprintf("Task %q", taskName), []string{"task", "run", taskName}, *o.Result)

	default: // OutcomeDone
		return formatResult(fmt.Sprintf("Task %q", taskName), []string{"task", "run", taskName}, *o.Result)
	}
}
