package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/store"
)

// SessionStatusTool handles the rg_session_status MCP tool.
type SessionStatusTool struct {
	cfg config.Store
}

// NewSessionStatusTool creates a SessionStatusTool.
func NewSessionStatusTool(cfg config.Store) *SessionStatusTool {
	return &SessionStatusTool{cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *SessionStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_session_status",
		mcp.WithDescription(
			"Show a questioning session's state: phase, confidence history, "+
				"open questions, and gaps. With no session_id, shows the active "+
				"session; with list=true, lists recent sessions instead.",
		),
		mcp.WithString("session_id",
			mcp.Description("Session to inspect. Defaults to the active session."),
		),
		mcp.WithBoolean("list",
			mcp.Description("List recent sessions instead of one session's detail."),
		),
	)
}

// Handle processes the rg_session_status tool call.
func (t *SessionStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	if req.GetBool("list", false) {
		summaries, err := env.DB.ListSessions(20)
		if err != nil {
			return nil, err
		}
		if len(summaries) == 0 {
			return mcp.NewToolResultText("No sessions recorded yet."), nil
		}
		var out strings.Builder
		out.WriteString("Recent sessions:\n")
		for _, sm := range summaries {
			fmt.Fprintf(&out, "- %s [%s/%s] %.1f%%/%.1f%% — %s\n",
				sm.ID, sm.Phase, sm.Status, sm.Confidence, sm.Target, sm.Description)
		}
		return mcp.NewToolResultText(out.String()), nil
	}

	sess, err := env.resolveSession(req.GetString("session_id", ""))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError("no matching session — start one with rg_session_start"), nil
		}
		return nil, err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Session %s\n", sess.ID)
	fmt.Fprintf(&out, "Task: %s\n", sess.Context.Description)
	fmt.Fprintf(&out, "Phase: %s | Status: %s\n", sess.Phase, sess.Status)
	fmt.Fprintf(&out, "Confidence: %.1f%% (target %.1f%%)\n", sess.Confidence, sess.Target)
	if a := sess.Assessment; a != nil {
		fmt.Fprintf(&out, "Threshold: %.1f%% | Risk: %s | Trend: %s | Recommendation: %s\n",
			a.Threshold, a.Risk, a.Trend, a.Recommendation)
	}

	fmt.Fprintf(&out, "History:")
	for i, v := range sess.History {
		if i > 0 {
			out.WriteString(" ->")
		}
		fmt.Fprintf(&out, " %.1f", v)
	}
	out.WriteString("\n")

	if open := sess.OpenQuestions(); len(open) > 0 {
		fmt.Fprintf(&out, "\nOpen questions (%d):\n", len(open))
		for _, q := range open {
			fmt.Fprintf(&out, "- [%s] (%s) %s\n", q.ID, q.Type, q.Text)
		}
	}
	if open := sess.OpenGaps(); len(open) > 0 {
		fmt.Fprintf(&out, "\nOpen gaps (%d):\n", len(open))
		for _, g := range open {
			fmt.Fprintf(&out, "- [%s] %s: %s\n", g.ID, g.Severity, g.Description)
		}
	}
	return mcp.NewToolResultText(out.String()), nil
}
