// Package task defines the shared vocabulary for a unit of work under
// questioning: the context supplied by the caller, the questions the engine
// asks, the answers it receives, and the gaps and edge cases uncovered
// along the way.
//
// The types here are plain records. The session package owns their lifecycle;
// the ambiguity and scoring packages only read them.
package task

import (
	"fmt"
	"time"
)

// --- Severity enum ---

// Severity classifies how badly a gap (or finding) blocks understanding.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityRanks orders severities for comparison. Higher is worse.
var severityRanks = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the ordinal weight of a severity (1=low .. 4=critical).
// Unknown severities rank 0, below low.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// ValidateSeverity returns an error if the severity is not recognized.
func ValidateSeverity(s Severity) error {
	if severityRanks[s] == 0 {
		return fmt.Errorf("invalid severity %q: must be one of: low, medium, high, critical", s)
	}
	return nil
}

// --- Question type enum ---

// QuestionType is the closed set of question strategies. Each type is bound
// to exactly one generation strategy in the session package — adding a type
// here requires adding a generator there.
type QuestionType string

const (
	QuestionClarification QuestionType = "clarification"
	QuestionExploration   QuestionType = "exploration"
	QuestionValidation    QuestionType = "validation"
	QuestionEdgeCase      QuestionType = "edge_case"
	QuestionConstraint    QuestionType = "constraint"
	QuestionAssumption    QuestionType = "assumption"
	QuestionIntegration   QuestionType = "integration"
	QuestionPerformance   QuestionType = "performance"
	QuestionSecurity      QuestionType = "security"
	QuestionUsability     QuestionType = "usability"
	QuestionBusinessRule  QuestionType = "business_rule"
	QuestionWorkflow      QuestionType = "workflow"
	QuestionErrorHandling QuestionType = "error_handling"
)

// QuestionTypes returns all question types in declaration order.
func QuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionClarification, QuestionExploration, QuestionValidation,
		QuestionEdgeCase, QuestionConstraint, QuestionAssumption,
		QuestionIntegration, QuestionPerformance, QuestionSecurity,
		QuestionUsability, QuestionBusinessRule, QuestionWorkflow,
		QuestionErrorHandling,
	}
}

// --- Core records ---

// TaskContext is everything the caller knows about the unit of work
// before questioning begins.
type TaskContext struct {
	Description      string   `json:"description"`
	BusinessContext  string   `json:"business_context,omitempty"`
	TechnicalContext string   `json:"technical_context,omitempty"`
	Domain           string   `json:"domain,omitempty"`
	Complexity       string   `json:"complexity,omitempty"` // low | medium | high
	Stakeholders     []string `json:"stakeholders,omitempty"`
	// ExistingContext holds inherited prior-phase decisions, patterns,
	// and insights supplied by a context-inheritance provider.
	ExistingContext []string `json:"existing_context,omitempty"`
}

// FollowUpRule triggers a follow-up question when a keyword appears
// in the answer to the question that carries the rule.
type FollowUpRule struct {
	Keyword  string       `json:"keyword"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
}

// Question is a generated prompt. Immutable once created; owned by the
// session that issued it.
type Question struct {
	ID             string         `json:"id"`
	Text           string         `json:"text"`
	Type           QuestionType   `json:"type"`
	Category       string         `json:"category"`
	Priority       string         `json:"priority"` // high | medium | low
	Reasoning      string         `json:"reasoning"`
	ExpectedAnswer string         `json:"expected_answer,omitempty"`
	FollowUps      []FollowUpRule `json:"follow_ups,omitempty"`
	AddressesGaps  []string       `json:"addresses_gaps,omitempty"`
	Phase          string         `json:"phase"`
	AskedAt        time.Time      `json:"asked_at"`
}

// Answer is a response to a question. Created once, never mutated.
type Answer struct {
	QuestionID string         `json:"question_id"`
	Text       string         `json:"text"`
	Data       map[string]any `json:"data,omitempty"`
	// Confidence is this answer's individual contribution (0.0-1.0),
	// derived from how specific and complete the answer text is.
	Confidence     float64   `json:"confidence"`
	AnsweredAt     time.Time `json:"answered_at"`
	FollowUpIDs    []string  `json:"follow_up_ids,omitempty"`
	Clarifications []string  `json:"clarifications,omitempty"`
	Assumptions    []string  `json:"assumptions,omitempty"`
}

// Gap is a detected requirement deficiency. Gaps are never deleted —
// a closed gap stays on the session for audit.
type Gap struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Questions   []string `json:"questions,omitempty"`
	Impact      string   `json:"impact,omitempty"`
	Phase       string   `json:"phase"`
	Closed      bool     `json:"closed"`
	ClosedBy    string   `json:"closed_by,omitempty"` // question ID of the closing answer
}

// EdgeCase is a boundary condition surfaced during questioning.
type EdgeCase struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"` // question ID of the answer that surfaced it
	Explored    bool   `json:"explored"`
}
