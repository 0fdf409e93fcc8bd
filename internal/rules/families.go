package rules

import (
	"fmt"
	"sort"
	"strings"
)

// --- Family evaluators ---
//
// Violation IDs are derived from the family and a per-family ordinal, so
// re-evaluating an unchanged snapshot yields byte-identical violations.

func violationID(f Family, n int) string {
	return fmt.Sprintf("V-%s-%02d", familyCodes[f], n)
}

var familyCodes = map[Family]string{
	FamilyTestDiscipline: "TEST",
	FamilyQuestioning:    "QST",
	FamilyContext:        "CTX",
	FamilyQuality:        "QLT",
	FamilyValidation:     "VAL",
}

// EvaluateTestDiscipline enforces test-first discipline.
//
// Absence of tests short-circuits the family: coverage and red-first
// checks are meaningless without tests, so the missing-tests violation
// is reported alone.
func (e *Engine) EvaluateTestDiscipline(in TestInput) []Violation {
	if !in.HasTests {
		return []Violation{{
			ID:          violationID(FamilyTestDiscipline, 1),
			Family:      FamilyTestDiscipline,
			Severity:    SeverityCritical,
			Description: "no tests exist for this unit of work",
			Blocking:    true,
			Resolution:  "write at least one failing test before any implementation",
		}}
	}

	var vs []Violation
	n := 1

	if in.MustFailFirst && !in.TestsFailing {
		n++
		vs = append(vs, Violation{
			ID:          violationID(FamilyTestDiscipline, n),
			Family:      FamilyTestDiscipline,
			Severity:    SeverityCritical,
			Description: "red-first phase requires failing tests, but all tests pass",
			Blocking:    true,
			Resolution:  "add tests that fail for the behavior about to be implemented",
		})
	}

	if in.Coverage < e.params.MinCoverage {
		n++
		vs = append(vs, Violation{
			ID:       violationID(FamilyTestDiscipline, n),
			Family:   FamilyTestDiscipline,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("test coverage %.1f%% is below the %.1f%% minimum",
				in.Coverage, e.params.MinCoverage),
			Resolution: "add tests for the uncovered paths",
		})
	}

	return vs
}

// EvaluateQuestioning enforces questioning completeness. Always critical,
// always blocking: implementation may not begin below the threshold.
func (e *Engine) EvaluateQuestioning(in QuestioningInput) []Violation {
	if in.Confidence >= e.params.MinConfidence {
		return nil
	}
	return []Violation{{
		ID:       violationID(FamilyQuestioning, 1),
		Family:   FamilyQuestioning,
		Severity: SeverityCritical,
		Description: fmt.Sprintf("confidence %.1f%% is below the %.1f%% questioning threshold",
			in.Confidence, e.params.MinConfidence),
		Blocking:   true,
		Resolution: "continue the questioning session until confidence meets the threshold",
	}}
}

// contextMinLines returns the adaptive lower bound on context size.
// Higher confidence shrinks the requirement.
func contextMinLines(confidence *float64) int {
	if confidence != nil {
		switch {
		case *confidence >= 90:
			return 200
		case *confidence >= 70:
			return 500
		}
	}
	return 1000
}

// EvaluateContext enforces context sufficiency.
//
// An external dependency is itself a blocking violation and suppresses
// missing-element reporting: self-containment takes priority, and the
// element checks are noise until the dependency is removed.
func (e *Engine) EvaluateContext(in ContextInput) []Violation {
	var vs []Violation
	n := 0

	minLines := contextMinLines(in.Confidence)
	if in.Lines < minLines {
		n++
		vs = append(vs, Violation{
			ID:       violationID(FamilyContext, n),
			Family:   FamilyContext,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("context is %d lines, below the %d-line minimum for this confidence level",
				in.Lines, minLines),
			Resolution: "inherit more prior-phase decisions and patterns into the context",
		})
	}
	if in.Lines > e.params.MaxContextLines {
		n++
		vs = append(vs, Violation{
			ID:       violationID(FamilyContext, n),
			Family:   FamilyContext,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("context is %d lines, above the %d-line maximum",
				in.Lines, e.params.MaxContextLines),
			Resolution: "shard the context and keep only what this unit of work needs",
		})
	}

	if in.HasExternalDependencies {
		n++
		vs = append(vs, Violation{
			ID:          violationID(FamilyContext, n),
			Family:      FamilyContext,
			Severity:    SeverityCritical,
			Description: "context references external dependencies; it must be self-contained",
			Blocking:    true,
			Resolution:  "inline or remove every external reference before proceeding",
		})
		return vs
	}

	// Missing required elements, reported individually.
	type element struct {
		present bool
		name    string
	}
	for _, el := range []element{
		{in.HasDecisionLog, "decision log"},
		{in.HasPatterns, "patterns"},
		{in.HasEmbedding, "embedding"},
	} {
		if el.present {
			continue
		}
		n++
		vs = append(vs, Violation{
			ID:          violationID(FamilyContext, n),
			Family:      FamilyContext,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("context is missing its %s", el.name),
			Resolution:  fmt.Sprintf("add the %s section to the context", el.name),
		})
	}

	return vs
}

// EvaluateQuality enforces the quality gates: coverage, optional code
// review, the three performance-reduction targets, and a style/doc
// bundle reported as one violation.
func (e *Engine) EvaluateQuality(in QualityInput) []Violation {
	var vs []Violation
	n := 0

	if in.Coverage < e.params.MinCoverage {
		n++
		vs = append(vs, Violation{
			ID:       violationID(FamilyQuality, n),
			Family:   FamilyQuality,
			Severity: SeverityMedium,
			Description: fmt.Sprintf("quality gate: coverage %.1f%% below %.1f%% target",
				in.Coverage, e.params.MinCoverage),
			Resolution: "raise coverage before completion",
		})
	}

	if e.params.RequireCodeReview && !in.CodeReviewed {
		n++
		vs = append(vs, Violation{
			ID:          violationID(FamilyQuality, n),
			Family:      FamilyQuality,
			Severity:    SeverityMedium,
			Description: "quality gate: code review required but not completed",
			Resolution:  "complete a code review",
		})
	}

	type reduction struct {
		actual, target float64
		name           string
	}
	for _, r := range []reduction{
		{in.ShardingReduction, e.params.ShardingReductionTarget, "sharding reduction"},
		{in.LookupReduction, e.params.LookupReductionTarget, "context-lookup reduction"},
		{in.ImplTimeReduction, e.params.ImplTimeReductionTarget, "implementation-time reduction"},
	} {
		if r.actual >= r.target {
			continue
		}
		n++
		vs = append(vs, Violation{
			ID:       violationID(FamilyQuality, n),
			Family:   FamilyQuality,
			Severity: SeverityLow,
			Description: fmt.Sprintf("quality gate: %s %.0f%% below %.0f%% target",
				r.name, r.actual*100, r.target*100),
			Resolution: fmt.Sprintf("investigate why the %s target was missed", r.name),
		})
	}

	// Style/documentation checks: one bundled violation listing every
	// failed check, in stable name order.
	var failed []string
	for _, name := range sortedKeys(in.StyleChecks) {
		if !in.StyleChecks[name] {
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		n++
		vs = append(vs, Violation{
			ID:          violationID(FamilyQuality, n),
			Family:      FamilyQuality,
			Severity:    SeverityLow,
			Description: fmt.Sprintf("quality gate: style/documentation checks failed: %s", strings.Join(failed, ", ")),
			Resolution:  "fix the listed checks",
		})
	}

	return vs
}

// EvaluateValidation enforces the validation gates. Constitutional
// non-compliance is always its own critical blocking violation, separate
// from the other (non-blocking) validation failures.
func (e *Engine) EvaluateValidation(in ValidationInput) []Violation {
	var vs []Violation
	n := 0

	type check struct {
		passed bool
		sev    Severity
		desc   string
		fix    string
	}
	for _, c := range []check{
		{in.PreValidated, SeverityHigh, "pre-implementation validation has not run", "run validation before implementation"},
		{in.PostValidated, SeverityHigh, "post-implementation validation has not run", "run validation after implementation"},
		{in.CIPassing, SeverityHigh, "continuous integration is not passing", "fix the failing CI pipeline"},
		{in.RegressionFree, SeverityMedium, "regressions were detected", "fix the regressions or revert"},
	} {
		if c.passed {
			continue
		}
		n++
		vs = append(vs, Violation{
			ID:          violationID(FamilyValidation, n),
			Family:      FamilyValidation,
			Severity:    c.sev,
			Description: c.desc,
			Resolution:  c.fix,
		})
	}

	if !in.ConstitutionCompliant {
		n++
		vs = append(vs, Violation{
			ID:          violationID(FamilyValidation, n),
			Family:      FamilyValidation,
			Severity:    SeverityCritical,
			Description: "overall constitutional compliance check failed",
			Blocking:    true,
			Resolution:  "remediate every outstanding blocking violation",
		})
	}

	return vs
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
