package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/ambiguity"
	"github.com/readygate/readygate/internal/config"
)

// AmbiguityScanTool handles the rg_ambiguity_scan MCP tool.
// It analyzes requirement text standalone, without a session: useful for
// vetting a specification before questioning even starts.
type AmbiguityScanTool struct {
	cfg config.Store
}

// NewAmbiguityScanTool creates an AmbiguityScanTool.
func NewAmbiguityScanTool(cfg config.Store) *AmbiguityScanTool {
	return &AmbiguityScanTool{cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *AmbiguityScanTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_ambiguity_scan",
		mcp.WithDescription(
			"Scan requirement statements for ambiguities: vague terms, "+
				"overloaded domain terms, missing context, contradictions, "+
				"incomplete requirements, and subjective criteria. Returns the "+
				"findings, a clarity score, and suggested clarification questions.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Requirement text. Each line is treated as one statement."),
		),
	)
}

// Handle processes the rg_ambiguity_scan tool call.
func (t *AmbiguityScanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("'text' is required — provide the requirement statements to scan"), nil
	}

	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	var statements []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			statements = append(statements, s)
		}
	}

	r := ambiguity.NewDetector(env.Glossary).Analyze(statements)

	var out strings.Builder
	fmt.Fprintf(&out, "Clarity score: %d/100 (%d statements)\n", r.ClarityScore, len(statements))

	if len(r.Ambiguities) == 0 && len(r.Contradictions) == 0 {
		out.WriteString("\nNo ambiguities detected.\n")
		return mcp.NewToolResultText(out.String()), nil
	}

	if len(r.Ambiguities) > 0 {
		fmt.Fprintf(&out, "\nAmbiguities (%d):\n", len(r.Ambiguities))
		for _, a := range r.Ambiguities {
			fmt.Fprintf(&out, "- [%s] %s/%s in statement %d (%q): %s\n",
				a.ID, a.Type, a.Severity, a.Location.StatementIndex+1, a.Location.Excerpt, a.Description)
		}
	}
	if len(r.Contradictions) > 0 {
		fmt.Fprintf(&out, "\nContradictions (%d):\n", len(r.Contradictions))
		for _, c := range r.Contradictions {
			fmt.Fprintf(&out, "- [%s] statements %d and %d: %q vs %q — %s\n",
				c.ID, c.StatementA+1, c.StatementB+1, c.TermA, c.TermB, c.Resolution)
		}
	}
	if len(r.Gaps) > 0 {
		fmt.Fprintf(&out, "\nGaps (%d):\n", len(r.Gaps))
		for _, g := range r.Gaps {
			fmt.Fprintf(&out, "- [%s] %s: %s\n", g.ID, g.Severity, g.Description)
		}
	}
	if len(r.Questions) > 0 {
		fmt.Fprintf(&out, "\nClarification questions (%d):\n", len(r.Questions))
		for _, q := range r.Questions {
			fmt.Fprintf(&out, "- %s (ask: %s; expect: %s)\n", q.Question, q.Stakeholder, q.ExpectedFormat)
		}
	}
	return mcp.NewToolResultText(out.String()), nil
}
