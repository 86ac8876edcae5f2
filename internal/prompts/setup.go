// Package prompts implements MCP prompt handlers for CCI workflows.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// SetupPrompt handles the cci-setup MCP prompt.
// It guides the AI through verifying and repairing the CCI environment.
type SetupPrompt struct{}

// NewSetupPrompt creates a SetupPrompt.
func NewSetupPrompt() *SetupPrompt {
	return &SetupPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *SetupPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("cci-setup",
		mcp.WithPromptDescription(
			"Verify the CumulusCI environment and walk through any "+
				"remediation needed to make it ready: devenv creation, "+
				"tool installation, and verification.",
		),
	)
}

// Handle processes the cci-setup prompt request.
func (p *SetupPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "CCI environment setup",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please verify my CumulusCI environment.\n\n" +
						"1. Run `check_cci_installation`\n" +
						"2. If the environment is ready, confirm the installed version and stop\n" +
						"3. If it is not ready, show me the remediation commands in order and " +
						"ask before running each one with your shell tool\n" +
						"4. After remediation, run `check_cci_installation` again with refresh=true " +
						"to confirm the environment is now ready",
				),
			},
		},
	}, nil
}
