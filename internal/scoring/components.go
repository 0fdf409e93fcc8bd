package scoring

import (
	"fmt"
	"strings"

	"github.com/readygate/readygate/internal/task"
)

// --- Component heuristics ---
//
// The source material left several of these as fixed placeholder returns;
// the heuristics below are deliberate substitutions: deterministic,
// documented, and monotone in answered evidence. Only open critical gaps
// subtract points; lesser gaps surface as concerns and in the risk label.
// This keeps confidence non-decreasing across rounds unless a new critical
// gap appears, which is the one legitimate reason for it to fall.

// snapshot precomputes the counts the component heuristics share.
type snapshot struct {
	answers       int
	answerConfSum float64
	openCritical  int
	openHigh      int
	openBusiness  int
	closedGaps    int
	exploredEdges int
	totalEdges    int
	testMentions  int
	dataPoints    int
}

func summarize(in Input) snapshot {
	var s snapshot
	s.answers = len(in.Answers)
	for _, a := range in.Answers {
		s.answerConfSum += a.Confidence
		if containsAnyFold(a.Text, "test", "coverage", "verify") {
			s.testMentions++
		}
	}
	for _, g := range in.Gaps {
		if g.Closed {
			s.closedGaps++
			continue
		}
		switch g.Severity {
		case task.SeverityCritical:
			s.openCritical++
		case task.SeverityHigh:
			s.openHigh++
		}
		if g.Category == "business_rule" {
			s.openBusiness++
		}
	}
	s.totalEdges = len(in.EdgeCases)
	for _, ec := range in.EdgeCases {
		if ec.Explored {
			s.exploredEdges++
		}
	}
	s.dataPoints = s.answers + s.exploredEdges + s.closedGaps
	return s
}

func scoreComponent(c Component, in Input, s snapshot) Factor {
	f := Factor{Component: c}
	switch c {
	case RequirementsCompleteness:
		f.Score = clamp(15 + capf(float64(s.answers)*12, 60) + capf(float64(s.closedGaps)*5, 20) -
			float64(s.openCritical)*15)
		f.Evidence = append(f.Evidence, fmt.Sprintf("%d answers recorded, %d gaps closed", s.answers, s.closedGaps))
		if s.openCritical > 0 {
			f.Concerns = append(f.Concerns, fmt.Sprintf("%d critical gaps remain open", s.openCritical))
		}
		if s.openHigh > 0 {
			f.Concerns = append(f.Concerns, fmt.Sprintf("%d high-severity gaps remain open", s.openHigh))
		}

	case ImplementationClarity:
		f.Score = clamp(20 + capf(s.answerConfSum*12, 50) + capf(float64(s.exploredEdges)*4, 20) -
			float64(s.openCritical)*12)
		f.Evidence = append(f.Evidence, fmt.Sprintf("cumulative answer confidence %.1f", s.answerConfSum))

	case TestCoverageReadiness:
		f.Score = clamp(10 + capf(float64(s.exploredEdges)*15, 45) + capf(float64(s.testMentions)*12, 35))
		if s.testMentions == 0 {
			f.Concerns = append(f.Concerns, "no answer has addressed testing yet")
		}

	case ContextAvailability:
		score := 0.0
		if len(in.Context.ExistingContext) > 0 {
			score += 40
			f.Evidence = append(f.Evidence, "inherited context present")
		}
		if in.Context.BusinessContext != "" {
			score += 20
		}
		if in.Context.TechnicalContext != "" {
			score += 20
		}
		if in.Context.Domain != "" {
			score += 10
		}
		score += capf(float64(len(in.Context.Stakeholders))*4, 10)
		f.Score = clamp(score)
		if len(in.Context.ExistingContext) == 0 {
			f.Concerns = append(f.Concerns, "no inherited context from prior phases")
		}

	case EdgeCaseCoverage:
		f.Score = clamp(30 + capf(float64(s.exploredEdges)*12, 60) + capf(float64(s.answers)*2, 10))
		if s.totalEdges > s.exploredEdges {
			f.Concerns = append(f.Concerns,
				fmt.Sprintf("%d identified edge cases unexplored", s.totalEdges-s.exploredEdges))
		}

	case BusinessRuleClarity:
		base := 15.0
		if in.Context.BusinessContext != "" {
			base = 45
		}
		f.Score = clamp(base + capf(float64(s.answers)*5, 30))
		if s.openBusiness > 0 {
			f.Concerns = append(f.Concerns, fmt.Sprintf("%d open business-rule gaps", s.openBusiness))
		}

	case TechnicalFeasibility:
		base := 25.0
		if in.Context.TechnicalContext != "" {
			base = 50
		}
		switch in.Context.Complexity {
		case "high":
			base -= 15
			f.Concerns = append(f.Concerns, "high declared complexity")
		case "low":
			base += 10
		}
		f.Score = clamp(base + capf(float64(s.answers)*4, 25))

	case RiskAssessment:
		f.Score = clamp(90 - float64(s.openCritical)*25 +
			capf(float64(s.closedGaps)*2, 10))
		if s.openCritical > 0 || s.openHigh > 0 {
			f.Concerns = append(f.Concerns,
				fmt.Sprintf("%d critical and %d high gaps open", s.openCritical, s.openHigh))
		}

	case StakeholderAlignment:
		base := 30.0
		switch n := len(in.Context.Stakeholders); {
		case n >= 1 && n <= 3:
			base = 70
		case n > 3:
			base = 55
			f.Concerns = append(f.Concerns, "large stakeholder group raises alignment cost")
		}
		f.Score = clamp(base + capf(float64(s.answers)*3, 15))

	case DefinitionPrecision:
		f.Score = clamp(30 + capf(s.answerConfSum*10, 45) + capf(float64(s.closedGaps)*6, 25) -
			float64(s.openCritical)*10)
	}
	return f
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func capf(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func containsAnyFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
