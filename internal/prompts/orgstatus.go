package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OrgStatusPrompt handles the cci-org-status MCP prompt.
// It instructs the AI to list connected orgs and summarize their state.
type OrgStatusPrompt struct{}

// NewOrgStatusPrompt creates an OrgStatusPrompt.
func NewOrgStatusPrompt() *OrgStatusPrompt {
	return &OrgStatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OrgStatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("cci-org-status",
		mcp.WithPromptDescription(
			"List the connected CumulusCI orgs and summarize which are "+
				"scratch orgs, which have expired, and which is the default.",
		),
	)
}

// Handle processes the cci-org-status prompt request.
func (p *OrgStatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Connected org overview",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `list_orgs` and summarize the output:\n\n" +
						"1. Group orgs into scratch orgs and persistent orgs\n" +
						"2. Flag any scratch org that has expired or expires today\n" +
						"3. Tell me which org is the default, if any\n" +
						"4. Suggest `create_dev_scratch_org` if no usable dev org exists",
				),
			},
		},
	}, nil
}
