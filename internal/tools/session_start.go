package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/session"
	"github.com/readygate/readygate/internal/task"
)

// SessionStartTool handles the rg_session_start MCP tool.
// It opens a questioning session for a unit of work and returns the first
// round of questions.
type SessionStartTool struct {
	cfg config.Store
}

// NewSessionStartTool creates a SessionStartTool.
func NewSessionStartTool(cfg config.Store) *SessionStartTool {
	return &SessionStartTool{cfg: cfg}
}

// validComplexities contains the allowed complexity values.
var validComplexities = map[string]bool{
	"":       true,
	"low":    true,
	"medium": true,
	"high":   true,
}

// Definition returns the MCP tool definition for registration.
func (t *SessionStartTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_session_start",
		mcp.WithDescription(
			"Start a questioning session for a unit of work. "+
				"Computes an initial confidence estimate from the task context; "+
				"if it already meets the target the session completes immediately, "+
				"otherwise you get the first round of triage questions to answer "+
				"with rg_session_answer.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the unit of work should accomplish."),
		),
		mcp.WithString("business_context",
			mcp.Description("Business background: who needs this and why."),
		),
		mcp.WithString("technical_context",
			mcp.Description("Technical background: systems, constraints, integrations."),
		),
		mcp.WithString("domain",
			mcp.Description("Problem domain, e.g. 'billing' or 'auth'."),
		),
		mcp.WithString("complexity",
			mcp.Description("Estimated complexity: low, medium, or high."),
			mcp.Enum("low", "medium", "high"),
		),
		mcp.WithString("stakeholders",
			mcp.Description("Comma-separated stakeholder roles."),
		),
		mcp.WithNumber("target_confidence",
			mcp.Description("Completion threshold 0-100. Defaults to the configured target."),
		),
	)
}

// Handle processes the rg_session_start tool call.
func (t *SessionStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if strings.TrimSpace(description) == "" {
		return mcp.NewToolResultError("'description' is required — describe the unit of work"), nil
	}
	complexity := req.GetString("complexity", "")
	if !validComplexities[complexity] {
		return mcp.NewToolResultError(fmt.Sprintf(
			"invalid complexity %q: must be one of: low, medium, high", complexity)), nil
	}

	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	tc := taskContextFromRequest(req, description, complexity)
	sess, err := env.engine().Start(tc, req.GetFloat("target_confidence", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := env.DB.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Session %s started.\n", sess.ID)
	fmt.Fprintf(&out, "Initial confidence: %.1f%% (target %.1f%%)\n", sess.Confidence, sess.Target)
	if sess.Status == session.StatusCompleted {
		out.WriteString("\nInitial confidence already meets the target: the session is COMPLETE. No questioning needed.\n")
		return mcp.NewToolResultText(out.String()), nil
	}

	fmt.Fprintf(&out, "Phase: %s\n\nTriage questions:\n", sess.Phase)
	for _, q := range sess.Questions {
		fmt.Fprintf(&out, "- [%s] (%s) %s\n", q.ID, q.Type, q.Text)
	}
	out.WriteString("\nAnswer each with rg_session_answer (question_id + answer).\n")
	return mcp.NewToolResultText(out.String()), nil
}

func taskContextFromRequest(req mcp.CallToolRequest, description, complexity string) task.TaskContext {
	return task.TaskContext{
		Description:      description,
		BusinessContext:  req.GetString("business_context", ""),
		TechnicalContext: req.GetString("technical_context", ""),
		Domain:           req.GetString("domain", ""),
		Complexity:       complexity,
		Stakeholders:     splitCSV(req.GetString("stakeholders", "")),
	}
}
