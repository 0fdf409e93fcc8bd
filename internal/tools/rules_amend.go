package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readygate/readygate/internal/config"
	"github.com/readygate/readygate/internal/rules"
)

// RulesAmendTool handles the rg_rules_amend MCP tool.
// Accepted amendments change the stored configuration and are written to
// the amendment log; the two immutable rules reject every proposal.
type RulesAmendTool struct {
	cfg config.Store
}

// NewRulesAmendTool creates a RulesAmendTool.
func NewRulesAmendTool(cfg config.Store) *RulesAmendTool {
	return &RulesAmendTool{cfg: cfg}
}

// Definition returns the MCP tool definition for registration.
func (t *RulesAmendTool) Definition() mcp.Tool {
	return mcp.NewTool("rg_rules_amend",
		mcp.WithDescription(
			"Propose an amendment to a rule parameter. Accepted amendments "+
				"persist to the project configuration and the audit log. "+
				"Amendable: test.min_coverage, questioning.min_confidence, "+
				"context.max_lines, quality.sharding_reduction, "+
				"quality.lookup_reduction, quality.impl_time_reduction, "+
				"quality.require_code_review. The test-first principle and "+
				"constitutional compliance are immutable.",
		),
		mcp.WithString("rule_id",
			mcp.Required(),
			mcp.Description("Parameter to amend, e.g. test.min_coverage."),
		),
		mcp.WithNumber("value",
			mcp.Required(),
			mcp.Description("New value. For quality.require_code_review, 0 disables and 1 enables."),
		),
		mcp.WithString("rationale",
			mcp.Required(),
			mcp.Description("Why this change is justified. Recorded in the amendment log."),
		),
	)
}

// Handle processes the rg_rules_amend tool call.
func (t *RulesAmendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ruleID := req.GetString("rule_id", "")
	rationale := req.GetString("rationale", "")
	if strings.TrimSpace(ruleID) == "" {
		return mcp.NewToolResultError("'rule_id' is required"), nil
	}
	if strings.TrimSpace(rationale) == "" {
		return mcp.NewToolResultError("'rationale' is required — amendments must be justified"), nil
	}

	env, err := loadEnv(t.cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	engine := rules.NewEngine(env.Config.RuleParams())
	decision, err := engine.ProposeAmendment(rules.Proposal{
		RuleID:    ruleID,
		Value:     req.GetFloat("value", 0),
		Rationale: rationale,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !decision.Accepted {
		return mcp.NewToolResultText(fmt.Sprintf("Amendment REJECTED: %s", decision.Reason)), nil
	}

	// Persist: the amended parameters become the project configuration.
	p := engine.Params()
	env.Config.Rules = config.RulesConfig{
		MinCoverage:             p.MinCoverage,
		MinConfidence:           p.MinConfidence,
		MaxContextLines:         p.MaxContextLines,
		ShardingReductionTarget: p.ShardingReductionTarget,
		LookupReductionTarget:   p.LookupReductionTarget,
		ImplTimeReductionTarget: p.ImplTimeReductionTarget,
		RequireCodeReview:       p.RequireCodeReview,
	}
	if err := t.cfg.Save(env.Root, env.Config); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	if err := env.DB.RecordAmendment(*decision.Amendment); err != nil {
		return nil, fmt.Errorf("recording amendment: %w", err)
	}

	a := decision.Amendment
	return mcp.NewToolResultText(fmt.Sprintf(
		"Amendment ACCEPTED: %s changed %.2f -> %.2f.\nRationale: %s",
		a.RuleID, a.Previous, a.Value, a.Rationale)), nil
}
