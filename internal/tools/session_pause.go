package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/session"
	"github.com/readygate/readygate/internal/store"
)

// SessionPauseTool handles the rg_session_pause MCP tool: pausing a
// session for human clarification and resuming it afterwards.
type SessionPauseTool struct {
	cfg config.Store
}

// NewSessionPauseTool creates a SessionPauseTool.
func NewSessionPauseTool(cfg config.Store) *SessionPauseTool {
	return &SessionPauseTool{cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *SessionPauseTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_session_pause",
		mcp.WithDescription(
			"Pause an active questioning session (e.g. to wait for a "+
				"stakeholder decision), or resume a paused one. Completed and "+
				"timed-out sessions cannot be reopened.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Either 'pause' or 'resume'."),
			mcp.Enum("pause", "resume"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to act on. Defaults to the active session."),
		),
	)
}

// Handle processes the rg_session_pause tool call.
func (t *SessionPauseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := req.GetString("action", "")
	if action != "pause" && action != "resume" {
		return mcp.NewToolResultError("'action' must be 'pause' or 'resume'"), nil
	}

	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	sess, err := env.resolveSession(req.GetString("session_id", ""))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError("no matching session"), nil
		}
		return nil, err
	}

	eng := env.engine()
	if action == "pause" {
		err = eng.Pause(sess)
	} else {
		err = eng.Resume(sess)
	}
	if errors.Is(err, session.ErrSessionTerminal) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}
	if err := env.DB.SaveSession(sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s is now %s.", sess.ID, sess.Status)), nil
}
