package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
)

// SessionSearchTool handles the rg_session_search MCP tool.
// Full-text search over stored task descriptions: the manual counterpart
// of the pattern matching that lowers thresholds for familiar work.
type SessionSearchTool struct {
	cfg config.Store
}

// NewSessionSearchTool creates a SessionSearchTool.
func NewSessionSearchTool(cfg config.Store) *SessionSearchTool {
	return &SessionSearchTool{cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *SessionSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_session_search",
		mcp.WithDescription(
			"Search prior questioning sessions by task description. Useful "+
				"before starting a session: answers from similar past work can "+
				"seed the task context.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default 10)."),
		),
	)
}

// Handle processes the rg_session_search tool call.
func (t *SessionSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	summaries, err := env.DB.SearchSessions(query, int(req.GetFloat("limit", 10)))
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return mcp.NewToolResultText("No sessions match."), nil
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Sessions matching %q:\n", query)
	for _, sm := range summaries {
		fmt.Fprintf(&out, "- %s [%s/%s] %.1f%% — %s\n",
			sm.ID, sm.Phase, sm.Status, sm.Confidence, sm.Description)
	}
	return mcp.NewToolResultText(out.String()), nil
}
