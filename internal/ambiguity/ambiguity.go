// Package ambiguity finds linguistic and structural defects in free-text
// requirement statements: vague terms, overloaded terms, missing context,
// contradictions, incomplete requirements, and subjective acceptance
// criteria.
//
// The detector is pure with respect to its inputs: the same statement set
// always produces the same findings, scores, and suggested questions.
// An Ambiguity is a defect in text that exists; a Gap is information that
// is absent — the detector produces both.
package ambiguity

import "fmt"

// Type classifies an ambiguity finding.
type Type string

const (
	TypeVagueTerm             Type = "vague_term"
	TypeOverloadedTerm        Type = "overloaded_term"
	TypeMissingContext        Type = "missing_context"
	TypeContradiction         Type = "contradiction"
	TypeIncompleteRequirement Type = "incomplete_requirement"
	TypeSubjectiveCriteria    Type = "subjective_criteria"
	TypeUndefinedRelationship Type = "undefined_relationship"
)

// Status tracks an ambiguity's resolution lifecycle.
type Status string

const (
	StatusDetected   Status = "detected"
	StatusClarifying Status = "clarifying"
	StatusResolved   Status = "resolved"
	StatusIgnored    Status = "ignored"
)

// Location points at the source text span of a finding.
type Location struct {
	StatementIndex int    `json:"statement_index"`
	Excerpt        string `json:"excerpt"`
}

// Ambiguity is one detected linguistic/structural defect.
type Ambiguity struct {
	ID       string   `json:"id"`
	Type     Type     `json:"type"`
	Severity string   `json:"severity"` // low | medium | high | critical
	Location Location `json:"location"`
	// Score is 0-100; higher means worse. Feeds the aggregate clarity score.
	Score                int      `json:"score"`
	Description          string   `json:"description"`
	SuggestedQuestions   []string `json:"suggested_questions,omitempty"`
	SuggestedResolutions []string `json:"suggested_resolutions,omitempty"`
	Status               Status   `json:"status"`
	ResolvedBy           string   `json:"resolved_by,omitempty"`
	Resolution           string   `json:"resolution,omitempty"`
}

// Resolve records an explicit resolution: who resolved it and how.
// Resolving an already-terminal ambiguity is an error.
func (a *Ambiguity) Resolve(who, how string) error {
	if a.Status == StatusResolved || a.Status == StatusIgnored {
		return fmt.Errorf("ambiguity %s is already %s", a.ID, a.Status)
	}
	a.Status = StatusResolved
	a.ResolvedBy = who
	a.Resolution = how
	return nil
}

// Ignore marks the ambiguity as deliberately left open.
func (a *Ambiguity) Ignore(who string) error {
	if a.Status == StatusResolved || a.Status == StatusIgnored {
		return fmt.Errorf("ambiguity %s is already %s", a.ID, a.Status)
	}
	a.Status = StatusIgnored
	a.ResolvedBy = who
	return nil
}

// Contradiction is a pairwise conflict between two statements.
// Always severity "major"; resolving one requires a stakeholder-adjudicated
// precedence decision, not a wording tweak.
type Contradiction struct {
	ID         string `json:"id"`
	Type       string `json:"type"`     // "direct"
	Severity   string `json:"severity"` // "major"
	StatementA int    `json:"statement_a"`
	StatementB int    `json:"statement_b"`
	TermA      string `json:"term_a"`
	TermB      string `json:"term_b"`
	Resolution string `json:"resolution"`
}

// ClarificationQuestion is a deduplicated question derived from findings,
// with an assigned stakeholder role and an expected answer format. The
// session layer uses these to seed follow-up rounds.
type ClarificationQuestion struct {
	Question       string   `json:"question"`
	Stakeholder    string   `json:"stakeholder"`
	ExpectedFormat string   `json:"expected_format"`
	Ambiguities    []string `json:"ambiguities"` // source ambiguity IDs
}
