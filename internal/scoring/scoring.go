// Package scoring computes how well-understood a unit of work is.
//
// Ten weighted component scores are folded into a 0-100 confidence value,
// adjusted by a calculation-confidence multiplier, and compared against a
// dynamically adjusted threshold. The scorer is pure: the same input always
// yields the same assessment.
package scoring

import (
	"errors"
	"fmt"

	"github.com/readygate/readygate/internal/task"
)

// ErrScoreOutOfRange reports a computed score outside [0, 100]. This is an
// internal invariant breach, not a caller error: it indicates a defect in a
// component heuristic and must never be silently clamped away.
var ErrScoreOutOfRange = errors.New("scoring: computed score out of range")

// Component identifies one of the ten scored dimensions.
type Component string

const (
	RequirementsCompleteness Component = "requirements_completeness"
	ImplementationClarity    Component = "implementation_clarity"
	TestCoverageReadiness    Component = "test_coverage_readiness"
	ContextAvailability      Component = "context_availability"
	EdgeCaseCoverage         Component = "edge_case_coverage"
	BusinessRuleClarity      Component = "business_rule_clarity"
	TechnicalFeasibility     Component = "technical_feasibility"
	RiskAssessment           Component = "risk_assessment"
	StakeholderAlignment     Component = "stakeholder_alignment"
	DefinitionPrecision      Component = "definition_precision"
)

// Weights assigns each component its fixed share of the overall score.
// The weights sum to exactly 1.0.
var Weights = map[Component]float64{
	RequirementsCompleteness: 0.25,
	ImplementationClarity:    0.20,
	TestCoverageReadiness:    0.15,
	ContextAvailability:      0.15,
	EdgeCaseCoverage:         0.10,
	BusinessRuleClarity:      0.03,
	TechnicalFeasibility:     0.03,
	RiskAssessment:           0.03,
	StakeholderAlignment:     0.03,
	DefinitionPrecision:      0.03,
}

// componentOrder fixes the factor ordering in assessments.
var componentOrder = []Component{
	RequirementsCompleteness,
	ImplementationClarity,
	TestCoverageReadiness,
	ContextAvailability,
	EdgeCaseCoverage,
	BusinessRuleClarity,
	TechnicalFeasibility,
	RiskAssessment,
	StakeholderAlignment,
	DefinitionPrecision,
}

// Factor wraps one component score with its weight and contribution.
type Factor struct {
	Component    Component `json:"component"`
	Weight       float64   `json:"weight"`
	Score        float64   `json:"score"`
	Contribution float64   `json:"contribution"`
	Evidence     []string  `json:"evidence,omitempty"`
	Concerns     []string  `json:"concerns,omitempty"`
}

// Input is the session snapshot the scorer assesses.
type Input struct {
	Context   task.TaskContext
	Answers   []task.Answer
	Gaps      []task.Gap
	EdgeCases []task.EdgeCase
	// History holds the confidence values of prior rounds, oldest first.
	History []float64
	// PatternMatches counts prior sessions recognized as similar work.
	PatternMatches int
}

// Assessment is the scorer's full output for one round.
type Assessment struct {
	Factors []Factor `json:"factors"`
	// Confidence is the adjusted overall score, 0-100.
	Confidence float64 `json:"confidence"`
	// RawConfidence is the weighted sum before the calculation-confidence
	// multiplier is applied.
	RawConfidence float64 `json:"raw_confidence"`
	// CalculationConfidence reflects how much evidence backed the factors;
	// fewer data points pull the overall score toward conservatism.
	CalculationConfidence float64 `json:"calculation_confidence"`
	Threshold             float64 `json:"threshold"`
	Risk                  string  `json:"risk"`
	Recommendation        string  `json:"recommendation"`
	Trend                 string  `json:"trend"`
	DiminishingReturns    bool    `json:"diminishing_returns"`
}

// Risk labels.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Recommendations.
const (
	RecommendProceed  = "proceed"
	RecommendContinue = "continue_questioning"
	RecommendPause    = "pause_for_clarification"
)

// Scorer assesses session snapshots against a base confidence target.
type Scorer struct {
	baseTarget float64
}

// NewScorer creates a Scorer. target is the base confidence threshold
// before dynamic adjustment.
func NewScorer(target float64) *Scorer {
	return &Scorer{baseTarget: target}
}

// Assess scores a snapshot. It returns ErrScoreOutOfRange if any computed
// value escapes [0, 100]; callers must treat that as a defect, not retry.
func (s *Scorer) Assess(in Input) (Assessment, error) {
	snap := summarize(in)

	factors := make([]Factor, 0, len(componentOrder))
	raw := 0.0
	for _, c := range componentOrder {
		f := scoreComponent(c, in, snap)
		if f.Score < 0 || f.Score > 100 {
			return Assessment{}, fmt.Errorf("%w: component %s scored %.2f",
				ErrScoreOutOfRange, c, f.Score)
		}
		f.Weight = Weights[c]
		f.Contribution = f.Weight * f.Score / 100
		raw += f.Contribution
		factors = append(factors, f)
	}

	rawConfidence := 100 * raw
	mult := calculationConfidence(snap)
	confidence := rawConfidence * mult
	if confidence < 0 || confidence > 100 {
		return Assessment{}, fmt.Errorf("%w: overall confidence %.2f",
			ErrScoreOutOfRange, confidence)
	}

	risk := riskLevel(snap)
	threshold := s.threshold(in, risk)
	series := append(append([]float64{}, in.History...), confidence)
	trend := classifyTrend(series)
	diminishing := diminishingReturns(series)

	return Assessment{
		Factors:               factors,
		Confidence:            confidence,
		RawConfidence:         rawConfidence,
		CalculationConfidence: mult,
		Threshold:             threshold,
		Risk:                  risk,
		Recommendation:        recommend(confidence, threshold, trend, diminishing),
		Trend:                 trend,
		DiminishingReturns:    diminishing,
	}, nil
}

// threshold adjusts the base target by risk, complexity, pattern history
// and stakeholder count, clamped to [60, 95].
func (s *Scorer) threshold(in Input, risk string) float64 {
	t := s.baseTarget
	switch risk {
	case RiskHigh:
		t += 5
	case RiskLow:
		t -= 5
	}
	switch in.Context.Complexity {
	case "high":
		t += 5
	case "low":
		t -= 3
	}
	if in.PatternMatches >= 3 {
		// Familiar ground: prior similar sessions justify a lower bar.
		t -= 5
	}
	if len(in.Context.Stakeholders) > 3 {
		t += 3
	}
	if t < 60 {
		t = 60
	}
	if t > 95 {
		t = 95
	}
	return t
}

func riskLevel(snap snapshot) string {
	switch {
	case snap.openCritical > 0:
		return RiskHigh
	case snap.openHigh > 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

func recommend(confidence, threshold float64, trend string, diminishing bool) string {
	if confidence >= threshold {
		return RecommendProceed
	}
	if diminishing || trend == TrendVolatile {
		return RecommendPause
	}
	return RecommendContinue
}

// calculationConfidence scales the raw score by available evidence: with no
// data points the score is halved, and each answered question, explored
// edge case or closed gap restores 5% up to the full multiplier.
func calculationConfidence(snap snapshot) float64 {
	bonus := 0.05 * float64(snap.dataPoints)
	if bonus > 0.5 {
		bonus = 0.5
	}
	return 0.5 + bonus
}

// --- Initial confidence ---

// initialFactor weights for InitialConfidence.
const (
	wRequirementClarity = 0.30
	wDomainFamiliarity  = 0.20
	wInheritedContext   = 0.20
	wStakeholderCount   = 0.15
	wBusinessContext    = 0.15
)

// InitialConfidence estimates confidence before any question is asked,
// from five weighted readings of the task context alone. A bare context
// always lands below 50: real confidence requires answered questions.
func InitialConfidence(tc task.TaskContext) float64 {
	clarity := descriptionClarity(tc.Description)

	familiarity := 15.0
	if tc.Domain != "" {
		familiarity = 60
	}

	inherited := 0.0
	if len(tc.ExistingContext) > 0 {
		inherited = 70
	}

	stakeholders := 10.0
	switch n := len(tc.Stakeholders); {
	case n >= 1 && n <= 3:
		stakeholders = 60
	case n > 3:
		// Many voices lower alignment odds at the start.
		stakeholders = 40
	}

	business := 5.0
	if tc.BusinessContext != "" {
		business = 65
	}

	return wRequirementClarity*clarity +
		wDomainFamiliarity*familiarity +
		wInheritedContext*inherited +
		wStakeholderCount*stakeholders +
		wBusinessContext*business
}

// descriptionClarity scores how explicit the task description is: length,
// numeric detail and conditional clauses each add, capped at 80. Even a
// perfectly explicit description cannot carry initial confidence alone.
func descriptionClarity(desc string) float64 {
	score := 10.0
	n := len(desc)
	switch {
	case n >= 200:
		score += 35
	case n >= 80:
		score += 20
	case n >= 30:
		score += 10
	}
	if containsDigit(desc) {
		score += 20
	}
	if containsAnyFold(desc, "when ", "where ", "if ", "unless ") {
		score += 15
	}
	if score > 80 {
		score = 80
	}
	return score
}
