package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// orgNameRe keeps org aliases shell-safe and cci-valid.
var orgNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ScratchOrgTool creates a scratch org through one of the project's
// org-building flows. The three registered variants differ only in the
// flow they run and the default org name:
//
//	create_dev_scratch_org     → dev_org        (default org "dev")
//	create_feature_scratch_org → ci_feature_2gp (default org "feature")
//	create_beta_scratch_org    → regression_org (default org "beta")
//
// If an org with the requested name already exists, the tool stops and
// asks for confirmation; the caller re-invokes with replace=true to
// remove the old org first. The guard is stateless — it is re-derived
// from `cci org list` on every attempt, so there is no server-held
// conversation state.
type ScratchOrgTool struct {
	deps       Deps
	toolName   string
	flow       string
	defaultOrg string
	purpose    string
}

// NewDevScratchOrgTool creates the development variant (flow dev_org).
func NewDevScratchOrgTool(deps Deps) *ScratchOrgTool {
	return &ScratchOrgTool{
		deps:       deps,
		toolName:   "create_dev_scratch_org",
		flow:       "dev_org",
		defaultOrg: "dev",
		purpose:    "Create development scratch org",
	}
}

// NewFeatureScratchOrgTool creates the QA/feature variant
// (flow ci_feature_2gp), used to test a feature branch before merge.
func NewFeatureScratchOrgTool(deps Deps) *ScratchOrgTool {
	return &ScratchOrgTool{
		deps:       deps,
		toolName:   "create_feature_scratch_org",
		flow:       "ci_feature_2gp",
		defaultOrg: "feature",
		purpose:    "Create feature scratch org",
	}
}

// NewBetaScratchOrgTool creates the regression/beta variant
// (flow regression_org).
func NewBetaScratchOrgTool(deps Deps) *ScratchOrgTool {
	return &ScratchOrgTool{
		deps:       deps,
		toolName:   "create_beta_scratch_org",
		flow:       "regression_org",
		defaultOrg: "beta",
		purpose:    "Create beta scratch org",
	}
}

// Definition returns the MCP tool definition for registration.
func (t *ScratchOrgTool) Definition() mcp.Tool {
	return mcp.NewTool(t.toolName,
		mcp.WithDescription(fmt.Sprintf(
			"Create a CumulusCI scratch org using the %s flow. "+
				"If an org with the same name already exists, the tool stops and "+
				"asks whether to replace it; call again with replace=true to "+
				"remove the existing org first. Scratch org creation is slow — "+
				"expect it to run for many minutes.", t.flow,
		)),
		mcp.WithString("org_name",
			mcp.Description(fmt.Sprintf("Name of the org to create. Defaults to %q.", t.defaultOrg)),
			mcp.DefaultString(t.defaultOrg),
		),
		mcp.WithBoolean("replace",
			mcp.Description("Remove an existing org with the same name before creating. Only set this after the user confirmed the replacement."),
		),
	)
}

// Handle processes the scratch org tool call.
func (t *ScratchOrgTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	orgName := strings.TrimSpace(req.GetString("org_name", t.defaultOrg))
	if orgName == "" {
		orgName = t.defaultOrg
	}
	if !orgNameRe.MatchString(orgName) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid org_name %q — use letters, digits, '-' or '_'", orgName)), nil
	}
	replace := req.GetBool("replace", false)

	if res, ok := t.deps.gate(ctx); !ok {
		return res, nil
	}

	exists, err := t.orgExists(ctx, orgName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if exists && !replace {
		return mcp.NewToolResultText(fmt.Sprintf(
			"# Org %q Already Exists\n\n"+
				"A connected org named %q already exists. Creating it again would "+
				"destroy the current one.\n\n"+
				"Ask the user whether to delete it and create a fresh org. If they "+
				"confirm, call `%s` again with org_name=%q and replace=true. "+
				"Otherwise, stop and report that org creation was cancelled.\n",
			orgName, orgName, t.toolName, orgName,
		)), nil
	}

	if exists {
		removeRes, err := t.deps.Runner.Run(ctx, t.deps.Timeout, "org", "remove", "--org", orgName)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("running cci org remove: %v", err)), nil
		}
		if !removeRes.Succeeded {
			return mcp.NewToolResultText(formatResult("Remove existing org "+orgName, []string{"org", "remove", "--org", orgName}, removeRes)), nil
		}
	}

	return t.deps.run(ctx, fmt.Sprintf("%s %q", t.purpose, orgName), "flow:"+t.flow, orgName,
		"flow", "run", t.flow, "--org", orgName)
}

// orgExists checks `cci org list` for the given alias. The org listing
// is semi-structured text: an org row starts with the alias.
func (t *ScratchOrgTool) orgExists(ctx context.Context, orgName string) (bool, error) {
	res, err := t.deps.Runner.Run(ctx, t.deps.Timeout, "org", "list")
	if err != nil {
		return false, fmt.Errorf("running cci org list: %w", err)
	}
	if !res.Succeeded {
		return false, fmt.Errorf("cci org list exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return orgListed(res.Stdout, orgName), nil
}

// orgListed reports whether an org alias appears as a row in `cci org
// list` output. Tolerant of table decoration; only the first field of
// a row counts, so an org named "dev" doesn't match "devhub".
func orgListed(out, orgName string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.NewReplacer("│", " ", "┼", " ", "─", " ").Replace(line))
		if len(fields) > 0 && fields[0] == orgName {
			return true
		}
	}
	return false
}
