// Package tools implements the MCP tool handlers that expose CumulusCI
// operations.
//
// Each tool is a struct that receives its dependencies via constructor
// and exposes a Definition()/Handle() pair for registration. Dedicated
// tools run a fixed command template; run_generic_cci_task routes
// through the cci.Broker. Every tool consults the environment probe
// before doing anything else, and every failure mode is returned as a
// structured text result — never as an opaque error to the caller.
package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sfcore/th-dev/internal/cci"
)

// Prober is the probe surface the tools need: the cached check plus a
// forced re-check.
type Prober interface {
	Check(ctx context.Context) (cci.EnvironmentState, error)
	Refresh(ctx context.Context) (cci.EnvironmentState, error)
}

// Deps bundles the collaborators shared by every dedicated tool: the
// probe gate, the executor, the optional run recorder, and the
// execution time budget.
type Deps struct {
	Probe    Prober
	Runner   cci.Runner
	Recorder cci.Recorder // nil disables history
	Timeout  time.Duration
}

// gate checks environment readiness. When the environment is not ready
// it returns the remediation payload to hand straight back to the
// caller; ok is false and the tool must stop without spawning anything.
func (d Deps) gate(ctx context.Context) (res *mcp.CallToolResult, ok bool) {
	state, err := d.Probe.Check(ctx)
	if err != nil {
		// ProbeMechanismUnavailable: hard failure, but still structured.
		return mcp.NewToolResultError(err.Error()), false
	}
	if !state.Ready {
		return mcp.NewToolResultText(formatEnvNotReady(state)), false
	}
	return nil, true
}

// run executes one fixed-template command, records it, and formats the
// outcome. taskLabel and org are what the history records, not part of
// the argument vector.
func (d Deps) run(ctx context.Context, purpose, taskLabel, org string, args ...string) (*mcp.CallToolResult, error) {
	res, err := d.Runner.Run(ctx, d.Timeout, args...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("running cci: %v", err)), nil
	}
	if d.Recorder != nil {
		d.Recorder.RecordRun(ctx, taskLabel, org, res)
	}
	return mcp.NewToolResultText(formatResult(purpose, args, res)), nil
}

// formatEnvNotReady renders the remediation payload: the ordered shell
// commands that take the host to a ready state.
func formatEnvNotReady(state cci.EnvironmentState) string {
	var sb strings.Builder
	sb.WriteString("# CCI Environment Not Ready\n\n")
	sb.WriteString("CumulusCI is not usable on this host. Run these commands in order, then retry:\n\n")
	for i, cmd := range state.Remediation {
		fmt.Fprintf(&sb, "%d. `%s`\n", i+1, cmd)
	}
	sb.WriteString("\nIf any command fails, stop and contact the devops architect team — do not improvise alternatives.\n")
	return sb.String()
}

// formatResult renders an ExecutionResult. Failure payloads carry the
// exit code and stderr verbatim so the caller sees exactly what cci said.
func formatResult(purpose string, args []string, res cci.ExecutionResult) string {
	var sb strings.Builder
	cmdline := "cci " + strings.Join(args, " ")

	if res.Succeeded {
		fmt.Fprintf(&sb, "# %s — succeeded\n\n", purpose)
		fmt.Fprintf(&sb, "**Command:** `%s` (%s)\n\n", cmdline, res.Duration.Round(time.Millisecond))
		if out := strings.TrimSpace(res.Stdout); out != "" {
			fmt.Fprintf(&sb, "## Output\n\n```\n%s\n```\n", out)
		} else {
			sb.WriteString("The command produced no output.\n")
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "# %s — failed\n\n", purpose)
	fmt.Fprintf(&sb, "**Command:** `%s`\n", cmdline)
	if res.ExitCode == cci.TimedOutExitCode {
		fmt.Fprintf(&sb, "**Result:** timed out after %s\n\n", res.Duration.Round(time.Second))
	} else {
		fmt.Fprintf(&sb, "**Exit code:** %d\n\n", res.ExitCode)
	}
	if errOut := strings.TrimSpace(res.Stderr); errOut != "" {
		fmt.Fprintf(&sb, "## stderr\n\n```\n%s\n```\n", errOut)
	}
	if out := strings.TrimSpace(res.Stdout); out != "" {
		fmt.Fprintf(&sb, "## stdout\n\n```\n%s\n```\n", out)
	}
	sb.WriteString("\nThis CCI operation failed. Contact the devops architect team before retrying — a repeated run may duplicate side effects.\n")
	return sb.String()
}
