// Package rules is the constitutional enforcer: it evaluates snapshot
// inputs against five fixed rule families and reports violations.
//
// Violations are first-class outputs, not exceptions. Only Gate escalates —
// and only for blocking critical violations. The engine holds no session
// state; evaluating the same inputs twice yields the identical violation
// set.
//
// This package sits at the bottom of the dependency chain and imports
// nothing from the rest of the module.
package rules

import (
	"fmt"
	"strings"
)

// Family identifies the rule family a violation breaches.
type Family string

const (
	FamilyTestDiscipline Family = "test_discipline"
	FamilyQuestioning    Family = "questioning"
	FamilyContext        Family = "context"
	FamilyQuality        Family = "quality"
	FamilyValidation     Family = "validation"
)

// Severity of a violation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Violation is one detected rule breach.
type Violation struct {
	ID          string   `json:"id"`
	Family      Family   `json:"family"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	// Blocking violations must halt progress until remediated.
	// A violation is blocking if and only if it is critical and belongs to
	// test discipline, questioning, the context external-dependency check,
	// or the validation constitutional-compliance check.
	Blocking   bool   `json:"blocking"`
	Resolution string `json:"resolution,omitempty"`
}

// Params holds the tunable rule parameters. Values here are mutable via
// the amendment process; the rules themselves are not.
type Params struct {
	// MinCoverage is the minimum acceptable test coverage percentage.
	MinCoverage float64
	// MinConfidence is the questioning-completeness threshold percentage.
	MinConfidence float64
	// MaxContextLines is the fixed upper bound on context size.
	MaxContextLines int
	// ShardingReductionTarget, LookupReductionTarget and
	// ImplTimeReductionTarget are the three performance-reduction
	// thresholds (fractions, 0.0-1.0).
	ShardingReductionTarget float64
	LookupReductionTarget   float64
	ImplTimeReductionTarget float64
	// RequireCodeReview makes the quality gate demand a completed review.
	RequireCodeReview bool
}

// DefaultParams returns the stock rule parameters.
func DefaultParams() Params {
	return Params{
		MinCoverage:             80,
		MinConfidence:           85,
		MaxContextLines:         2000,
		ShardingReductionTarget: 0.70,
		LookupReductionTarget:   0.50,
		ImplTimeReductionTarget: 0.40,
		RequireCodeReview:       false,
	}
}

// Engine evaluates inputs against the rule families.
type Engine struct {
	params     Params
	amendments []Amendment
}

// NewEngine creates an Engine with the given parameters.
func NewEngine(p Params) *Engine {
	return &Engine{params: p}
}

// Params returns the engine's current parameters.
func (e *Engine) Params() Params {
	return e.params
}

// --- Inputs ---

// TestInput is the snapshot for the test-discipline family.
type TestInput struct {
	HasTests     bool
	TestsFailing bool
	// MustFailFirst is true while the workflow is in a red-first phase:
	// tests are expected to exist AND fail before implementation starts.
	MustFailFirst bool
	Coverage      float64
}

// QuestioningInput is the snapshot for questioning completeness.
type QuestioningInput struct {
	Confidence float64
}

// ContextInput is the snapshot for context sufficiency.
type ContextInput struct {
	Lines                   int
	HasExternalDependencies bool
	HasDecisionLog          bool
	HasPatterns             bool
	HasEmbedding            bool
	// Confidence, when non-nil, shrinks the required minimum context size:
	// well-understood tasks need less inherited context.
	Confidence *float64
}

// QualityInput is the snapshot for the quality gates.
type QualityInput struct {
	Coverage          float64
	CodeReviewed      bool
	ShardingReduction float64
	LookupReduction   float64
	ImplTimeReduction float64
	// StyleChecks maps check name to pass/fail. Failures are bundled
	// into a single violation.
	StyleChecks map[string]bool
}

// ValidationInput is the snapshot for the validation gates.
type ValidationInput struct {
	PreValidated          bool
	PostValidated         bool
	CIPassing             bool
	RegressionFree        bool
	ConstitutionCompliant bool
}

// Inputs bundles every family's snapshot for an aggregate evaluation.
type Inputs struct {
	Test        TestInput
	Questioning QuestioningInput
	Context     ContextInput
	Quality     QualityInput
	Validation  ValidationInput
}

// Result is the output of an aggregate evaluation.
type Result struct {
	Violations []Violation `json:"violations"`
	Compliant  bool        `json:"compliant"`
}

// --- Gate ---

// GateError is raised by Gate when blocking critical violations exist.
// It carries the FULL violation list, not just the blocking subset, so
// callers can remediate everything in one pass. Non-recoverable without
// remediation.
type GateError struct {
	Violations []Violation
}

func (e *GateError) Error() string {
	var blocking []string
	for _, v := range e.Violations {
		if v.Blocking && v.Severity == SeverityCritical {
			blocking = append(blocking, v.Description)
		}
	}
	return fmt.Sprintf("gate blocked by %d critical violation(s): %s",
		len(blocking), strings.Join(blocking, "; "))
}

// EvaluateAll runs all five families and unions their violations.
func (e *Engine) EvaluateAll(in Inputs) Result {
	var vs []Violation
	vs = append(vs, e.EvaluateTestDiscipline(in.Test)...)
	vs = append(vs, e.EvaluateQuestioning(in.Questioning)...)
	vs = append(vs, e.EvaluateContext(in.Context)...)
	vs = append(vs, e.EvaluateQuality(in.Quality)...)
	vs = append(vs, e.EvaluateValidation(in.Validation)...)
	return Result{Violations: vs, Compliant: len(vs) == 0}
}

// Gate runs the aggregate evaluation and raises a GateError if any
// blocking critical violation exists. The caller must treat a GateError
// as a hard stop.
func (e *Engine) Gate(in Inputs) error {
	res := e.EvaluateAll(in)
	for _, v := range res.Violations {
		if v.Blocking && v.Severity == SeverityCritical {
			return &GateError{Violations: res.Violations}
		}
	}
	return nil
}

// Blocking filters a violation list to the blocking critical subset.
func Blocking(vs []Violation) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Blocking && v.Severity == SeverityCritical {
			out = append(out, v)
		}
	}
	return out
}
