package rules

import (
	"fmt"
	"time"
)

// --- Amendments ---
//
// Rule parameters can be tuned through a recorded amendment process.
// The rules themselves, and the two principles below, cannot.

// timeNow is stubbed in tests.
var timeNow = time.Now

// Amendable parameter identifiers.
const (
	RuleTestMinCoverage       = "test.min_coverage"
	RuleQuestioningConfidence = "questioning.min_confidence"
	RuleContextMaxLines       = "context.max_lines"
	RuleQualityShardingTarget = "quality.sharding_reduction"
	RuleQualityLookupTarget   = "quality.lookup_reduction"
	RuleQualityImplTimeTarget = "quality.impl_time_reduction"
	RuleQualityRequireReview  = "quality.require_code_review"
)

// Immutable rule identifiers. Proposals against these are always rejected.
const (
	RuleTestFirstPrinciple       = "test.first_principle"
	RuleConstitutionalCompliance = "validation.constitutional_compliance"
)

var immutableRules = map[string]bool{
	RuleTestFirstPrinciple:       true,
	RuleConstitutionalCompliance: true,
}

// Proposal asks for a parameter change.
type Proposal struct {
	RuleID    string  `json:"rule_id"`
	Value     float64 `json:"value"`
	Rationale string  `json:"rationale"`
}

// Amendment is the record of an accepted proposal.
type Amendment struct {
	RuleID     string    `json:"rule_id"`
	Previous   float64   `json:"previous"`
	Value      float64   `json:"value"`
	Rationale  string    `json:"rationale"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Decision is the outcome of a proposal.
type Decision struct {
	Accepted  bool       `json:"accepted"`
	Reason    string     `json:"reason,omitempty"`
	Amendment *Amendment `json:"amendment,omitempty"`
}

// ProposeAmendment applies a parameter change if the target rule is
// amendable and the value is in range. Rejections are decisions, not
// errors: an error is reserved for a malformed proposal.
func (e *Engine) ProposeAmendment(p Proposal) (Decision, error) {
	if p.RuleID == "" {
		return Decision{}, fmt.Errorf("propose amendment: empty rule id")
	}
	if p.Rationale == "" {
		return Decision{}, fmt.Errorf("propose amendment: a rationale is required")
	}

	if immutableRules[p.RuleID] {
		return Decision{
			Reason: fmt.Sprintf("rule %q is immutable and cannot be amended", p.RuleID),
		}, nil
	}

	var prev float64
	switch p.RuleID {
	case RuleTestMinCoverage:
		if p.Value < 0 || p.Value > 100 {
			return Decision{Reason: "coverage must be between 0 and 100"}, nil
		}
		prev, e.params.MinCoverage = e.params.MinCoverage, p.Value
	case RuleQuestioningConfidence:
		if p.Value < 0 || p.Value > 100 {
			return Decision{Reason: "confidence must be between 0 and 100"}, nil
		}
		prev, e.params.MinConfidence = e.params.MinConfidence, p.Value
	case RuleContextMaxLines:
		if p.Value < 1 {
			return Decision{Reason: "max context lines must be positive"}, nil
		}
		prev = float64(e.params.MaxContextLines)
		e.params.MaxContextLines = int(p.Value)
	case RuleQualityShardingTarget:
		if p.Value < 0 || p.Value > 1 {
			return Decision{Reason: "reduction targets are fractions between 0 and 1"}, nil
		}
		prev, e.params.ShardingReductionTarget = e.params.ShardingReductionTarget, p.Value
	case RuleQualityLookupTarget:
		if p.Value < 0 || p.Value > 1 {
			return Decision{Reason: "reduction targets are fractions between 0 and 1"}, nil
		}
		prev, e.params.LookupReductionTarget = e.params.LookupReductionTarget, p.Value
	case RuleQualityImplTimeTarget:
		if p.Value < 0 || p.Value > 1 {
			return Decision{Reason: "reduction targets are fractions between 0 and 1"}, nil
		}
		prev, e.params.ImplTimeReductionTarget = e.params.ImplTimeReductionTarget, p.Value
	case RuleQualityRequireReview:
		// Boolean parameter: 0 disables, anything else enables.
		if e.params.RequireCodeReview {
			prev = 1
		}
		e.params.RequireCodeReview = p.Value != 0
	default:
		return Decision{
			Reason: fmt.Sprintf("unknown rule %q", p.RuleID),
		}, nil
	}

	a := Amendment{
		RuleID:     p.RuleID,
		Previous:   prev,
		Value:      p.Value,
		Rationale:  p.Rationale,
		AcceptedAt: timeNow().UTC(),
	}
	e.amendments = append(e.amendments, a)
	return Decision{Accepted: true, Amendment: &a}, nil
}

// Amendments returns the accepted amendments in acceptance order.
func (e *Engine) Amendments() []Amendment {
	out := make([]Amendment, len(e.amendments))
	copy(out, e.amendments)
	return out
}
