package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/report"
	"github.com/readygate/readygate/internal/store"
)

// SessionReportTool handles the rg_session_report MCP tool.
// It renders the markdown audit report for a session.
type SessionReportTool struct {
	cfg      config.Store
	renderer *report.Renderer
}

// NewSessionReportTool creates a SessionReportTool.
func NewSessionReportTool(cfg config.Store, renderer *report.Renderer) *SessionReportTool {
	return &SessionReportTool{cfg: cfg, renderer: renderer}
}

// Definition returns the MCP tool definition for registration.
func (t *SessionReportTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_session_report",
		mcp.WithDescription(
			"Render a markdown audit report for a questioning session: "+
				"confidence history, answered and open questions, gaps, and "+
				"edge cases. Suitable for pasting into a design document.",
		),
		mcp.WithString("session_id",
			mcp.Description("Session to report on. Defaults to the active session."),
		),
	)
}

// Handle processes the rg_session_report tool call.
func (t *SessionReportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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

	md, err := t.renderer.Render(report.SessionReport, report.BuildSessionReport(sess))
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(md), nil
}
