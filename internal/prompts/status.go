package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the readygate-status MCP prompt.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("readygate-status",
		mcp.WithPromptDescription(
			"Summarize the active questioning session: phase, confidence "+
				"against target, open questions, and what to do next.",
		),
	)
}

// Handle processes the readygate-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Questioning session status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Show me where the active questioning session stands.\n\n" +
						"Please:\n" +
						"1. Run `rg_session_status`\n" +
						"2. Summarize the phase, confidence vs target, and the trend\n" +
						"3. List the open questions and open gaps, most severe first\n" +
						"4. Tell me the single most valuable question to answer next, and why",
				),
			},
		},
	}, nil
}
