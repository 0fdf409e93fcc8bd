package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/report"
	"github.com/readygate/readygate/internal/rules"
	"github.com/readygate/readygate/internal/store"
)

// RulesEvaluateTool handles the rg_rules_evaluate MCP tool.
// It runs the five constitutional rule families over a workflow snapshot,
// records the violations against the session, and optionally renders the
// compliance report.
type RulesEvaluateTool struct {
	cfg      config.Store
	renderer *report.Renderer
}

// NewRulesEvaluateTool creates a RulesEvaluateTool.
func NewRulesEvaluateTool(cfg config.Store, renderer *report.Renderer) *RulesEvaluateTool {
	return &RulesEvaluateTool{cfg: cfg, renderer: renderer}
}

// Definition returns the MCP tool definition for registration.
func (t *RulesEvaluateTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_rules_evaluate",
		mcp.WithDescription(
			"Evaluate the workflow snapshot against all five rule families "+
				"(test discipline, questioning completeness, context sufficiency, "+
				"quality gates, validation gates). Violations are recorded against "+
				"the session. A blocking critical violation means implementation "+
				"must halt until remediated.",
		),
		mcp.WithString("session_id",
			mcp.Description("Session the evaluation belongs to; supplies the confidence value. Defaults to the active session."),
		),
		mcp.WithBoolean("has_tests",
			mcp.Description("Do tests exist for this unit of work?"),
		),
		mcp.WithBoolean("tests_failing",
			mcp.Description("Are any tests currently failing?"),
		),
		mcp.WithBoolean("must_fail_first",
			mcp.Description("Is the workflow in a red-first phase where tests are expected to fail?"),
		),
		mcp.WithNumber("coverage",
			mcp.Description("Test coverage percentage, 0-100."),
		),
		mcp.WithNumber("context_lines",
			mcp.Description("Size of the implementation context in lines."),
		),
		mcp.WithBoolean("has_external_dependencies",
			mcp.Description("Does the context reference anything outside itself?"),
		),
		mcp.WithBoolean("has_decision_log",
			mcp.Description("Does the context include its decision log?"),
		),
		mcp.WithBoolean("has_patterns",
			mcp.Description("Does the context include its patterns section?"),
		),
		mcp.WithBoolean("has_embedding",
			mcp.Description("Does the context include its embedding section?"),
		),
		mcp.WithBoolean("code_reviewed",
			mcp.Description("Has a code review been completed?"),
		),
		mcp.WithNumber("sharding_reduction",
			mcp.Description("Achieved context-sharding reduction, fraction 0-1."),
		),
		mcp.WithNumber("lookup_reduction",
			mcp.Description("Achieved context-lookup reduction, fraction 0-1."),
		),
		mcp.WithNumber("impl_time_reduction",
			mcp.Description("Achieved implementation-time reduction, fraction 0-1."),
		),
		mcp.WithBoolean("pre_validated",
			mcp.Description("Has pre-implementation validation run?"),
		),
		mcp.WithBoolean("post_validated",
			mcp.Description("Has post-implementation validation run?"),
		),
		mcp.WithBoolean("ci_passing",
			mcp.Description("Is continuous integration passing?"),
		),
		mcp.WithBoolean("regression_free",
			mcp.Description("Is the change free of regressions?"),
		),
		mcp.WithBoolean("constitution_compliant",
			mcp.Description("Does the overall workflow comply with the constitution?"),
		),
		mcp.WithBoolean("render_report",
			mcp.Description("Render the markdown compliance report instead of the summary."),
		),
	)
}

// Handle processes the rg_rules_evaluate tool call.
func (t *RulesEvaluateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	sessionID := ""
	var confidence *float64
	questioningConfidence := 0.0
	if sess, err := env.resolveSession(req.GetString("session_id", "")); err == nil {
		sessionID = sess.ID
		c := sess.Confidence
		confidence = &c
		questioningConfidence = c
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	engine := rules.NewEngine(env.Config.RuleParams())
	result := engine.EvaluateAll(rules.Inputs{
		Test: rules.TestInput{
			HasTests:      req.GetBool("has_tests", false),
			TestsFailing:  req.GetBool("tests_failing", false),
			MustFailFirst: req.GetBool("must_fail_first", false),
			Coverage:      req.GetFloat("coverage", 0),
		},
		Questioning: rules.QuestioningInput{
			Confidence: questioningConfidence,
		},
		Context: rules.ContextInput{
			Lines:                   int(req.GetFloat("context_lines", 0)),
			HasExternalDependencies: req.GetBool("has_external_dependencies", false),
			HasDecisionLog:          req.GetBool("has_decision_log", false),
			HasPatterns:             req.GetBool("has_patterns", false),
			HasEmbedding:            req.GetBool("has_embedding", false),
			Confidence:              confidence,
		},
		Quality: rules.QualityInput{
			Coverage:          req.GetFloat("coverage", 0),
			CodeReviewed:      req.GetBool("code_reviewed", false),
			ShardingReduction: req.GetFloat("sharding_reduction", 0),
			LookupReduction:   req.GetFloat("lookup_reduction", 0),
			ImplTimeReduction: req.GetFloat("impl_time_reduction", 0),
		},
		Validation: rules.ValidationInput{
			PreValidated:          req.GetBool("pre_validated", false),
			PostValidated:         req.GetBool("post_validated", false),
			CIPassing:             req.GetBool("ci_passing", false),
			RegressionFree:        req.GetBool("regression_free", false),
			ConstitutionCompliant: req.GetBool("constitution_compliant", false),
		},
	})

	if sessionID != "" {
		if err := env.DB.RecordViolations(sessionID, result.Violations); err != nil {
			return nil, fmt.Errorf("recording violations: %w", err)
		}
	}

	if req.GetBool("render_report", false) {
		md, err := t.renderer.Render(report.ComplianceReport,
			report.BuildComplianceReport(sessionID, result, time.Now().UTC()))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(md), nil
	}

	var out strings.Builder
	if result.Compliant {
		out.WriteString("Compliant: no violations.\n")
		return mcp.NewToolResultText(out.String()), nil
	}

	blocking := rules.Blocking(result.Violations)
	fmt.Fprintf(&out, "Non-compliant: %d violation(s), %d blocking.\n\n", len(result.Violations), len(blocking))
	for _, v := range result.Violations {
		marker := ""
		if v.Blocking {
			marker = " [BLOCKING]"
		}
		fmt.Fprintf(&out, "- [%s] %s/%s%s: %s\n", v.ID, v.Family, v.Severity, marker, v.Description)
		if v.Resolution != "" {
			fmt.Fprintf(&out, "  resolution: %s\n", v.Resolution)
		}
	}
	if len(blocking) > 0 {
		out.WriteString("\nImplementation must HALT until every blocking violation is remediated.\n")
	}
	return mcp.NewToolResultText(out.String()), nil
}
