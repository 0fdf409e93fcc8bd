// Package prompts implements the MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the readygate-start MCP prompt.
// It guides the AI through opening a questioning session and answering
// its way to the confidence target before writing any code.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("readygate-start",
		mcp.WithPromptDescription(
			"Start a questioning session for a unit of work. "+
				"Walks through describing the task, answering the triage "+
				"questions, and closing gaps until confidence reaches the "+
				"target and implementation may begin.",
		),
		mcp.WithArgument("task",
			mcp.ArgumentDescription("Short description of the unit of work"),
		),
	)
}

// Handle processes the readygate-start prompt request.
func (p *StartPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	taskDesc := "the task I'm about to describe"
	if args := req.Params.Arguments; args != nil {
		if v, ok := args["task"]; ok && v != "" {
			taskDesc = fmt.Sprintf("'%s'", v)
		}
	}

	return &mcp.GetPromptResult{
		Description: "Start a questioning session",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to reach implementation readiness for %s before writing any code.\n\n"+
						"Please:\n"+
						"1. Ask me for any business context, technical context, domain, complexity, and stakeholders I can provide\n"+
						"2. Run `rg_session_start` with the task description and whatever context I gave\n"+
						"3. Present the triage questions to me one at a time; submit each of my answers with `rg_session_answer`\n"+
						"4. After each answer, show me the confidence, open gaps, and any new questions\n"+
						"5. Keep going until the session reports COMPLETION, or recommend `rg_session_pause` if progress stalls\n"+
						"6. When complete, render the audit report with `rg_session_report`\n\n"+
						"Do not start implementing until the session completes.",
					taskDesc,
				)),
			},
		},
	}, nil
}
