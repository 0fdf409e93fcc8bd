package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/session"
	"github.com/readygate/readygate/internal/store"
)

// SessionAnswerTool handles the rg_session_answer MCP tool.
// It records one answer, runs the detection/scoring round, and returns the
// updated state plus any follow-up questions.
type SessionAnswerTool struct {
	cfg config.Store
}

// NewSessionAnswerTool creates a SessionAnswerTool.
func NewSessionAnswerTool(cfg config.Store) *SessionAnswerTool {
	return &SessionAnswerTool{cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *SessionAnswerTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_session_answer",
		mcp.WithDescription(
			"Answer an open question of a questioning session. "+
				"Records the answer, scans it for ambiguities and gaps, "+
				"recomputes confidence, advances the phase when its exit "+
				"condition is met, and returns any new questions.",
		),
		mcp.WithString("question_id",
			mcp.Required(),
			mcp.Description("ID of the open question being answered, e.g. Q-003."),
		),
		mcp.WithString("answer",
			mcp.Required(),
			mcp.Description("The answer text. Specific, quantified answers raise confidence faster."),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to answer. Defaults to the active session."),
		),
	)
}

// Handle processes the rg_session_answer tool call.
func (t *SessionAnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	questionID := req.GetString("question_id", "")
	answer := req.GetString("answer", "")
	if strings.TrimSpace(questionID) == "" {
		return mcp.NewToolResultError("'question_id' is required"), nil
	}
	if strings.TrimSpace(answer) == "" {
		return mcp.NewToolResultError("'answer' is required"), nil
	}

	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	sess, err := env.resolveSession(req.GetString("session_id", ""))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError("no matching session — start one with rg_session_start"), nil
		}
		return nil, err
	}

	newQuestions, err := env.engine().ProcessAnswer(sess, questionID, answer, nil)
	switch {
	case errors.Is(err, session.ErrUnknownQuestion),
		errors.Is(err, session.ErrSessionTerminal),
		errors.Is(err, session.ErrSessionPaused):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		// Scoring anomalies land here: a defect, not a usage error.
		return nil, err
	}
	if err := env.DB.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	if sess.Status == session.StatusTimedOut {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Session %s exceeded its time budget and is TIMED_OUT. The answer was not recorded; start a new session.",
			sess.ID)), nil
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Answer to %s recorded.\n", questionID)
	fmt.Fprintf(&out, "Confidence: %.1f%% (target %.1f%%) | Phase: %s | Status: %s\n",
		sess.Confidence, sess.Target, sess.Phase, sess.Status)
	if a := sess.Assessment; a != nil {
		fmt.Fprintf(&out, "Risk: %s | Trend: %s | Recommendation: %s\n", a.Risk, a.Trend, a.Recommendation)
		if a.DiminishingReturns {
			out.WriteString("Further questioning is yielding diminishing returns — consider pausing for human clarification.\n")
		}
	}

	if open := sess.OpenGaps(); len(open) > 0 {
		fmt.Fprintf(&out, "\nOpen gaps (%d):\n", len(open))
		for _, g := range open {
			fmt.Fprintf(&out, "- [%s] %s: %s\n", g.ID, g.Severity, g.Description)
		}
	}

	if sess.Status == session.StatusCompleted {
		out.WriteString("\nTarget reached: the session is COMPLETE. Implementation may begin.\n")
		return mcp.NewToolResultText(out.String()), nil
	}

	if len(newQuestions) > 0 {
		fmt.Fprintf(&out, "\nNew questions (%d):\n", len(newQuestions))
		for _, q := range newQuestions {
			fmt.Fprintf(&out, "- [%s] (%s) %s\n", q.ID, q.Type, q.Text)
		}
	} else if open := sess.OpenQuestions(); len(open) > 0 {
		fmt.Fprintf(&out, "\n%d questions still open.\n", len(open))
	}
	return mcp.NewToolResultText(out.String()), nil
}
