package rules

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// compliantInputs passes every family with stock parameters.
func compliantInputs() Inputs {
	return Inputs{
		Test:        TestInput{HasTests: true, Coverage: 92},
		Questioning: QuestioningInput{Confidence: 90},
		Context: ContextInput{
			Lines:          1200,
			HasDecisionLog: true,
			HasPatterns:    true,
			HasEmbedding:   true,
		},
		Quality: QualityInput{
			Coverage:          92,
			ShardingReduction: 0.80,
			LookupReduction:   0.60,
			ImplTimeReduction: 0.50,
		},
		Validation: ValidationInput{
			PreValidated:          true,
			PostValidated:         true,
			CIPassing:             true,
			RegressionFree:        true,
			ConstitutionCompliant: true,
		},
	}
}

// --- Test discipline ---

func TestEvaluateTestDiscipline_MissingTestsShortCircuits(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateTestDiscipline(TestInput{
		HasTests: false, MustFailFirst: true, Coverage: 0,
	})

	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1 (missing tests reported alone)", len(vs))
	}
	v := vs[0]
	if v.Severity != SeverityCritical || !v.Blocking {
		t.Errorf("severity/blocking = %s/%v, want critical/true", v.Severity, v.Blocking)
	}
	if v.Family != FamilyTestDiscipline {
		t.Errorf("family = %s, want %s", v.Family, FamilyTestDiscipline)
	}
}

func TestEvaluateTestDiscipline_RedFirstViolation(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateTestDiscipline(TestInput{
		HasTests: true, MustFailFirst: true, TestsFailing: false, Coverage: 92,
	})

	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if !vs[0].Blocking || vs[0].Severity != SeverityCritical {
		t.Errorf("red-first violation should be critical blocking, got %s/%v",
			vs[0].Severity, vs[0].Blocking)
	}
}

func TestEvaluateTestDiscipline_LowCoverageIsHighNotBlocking(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateTestDiscipline(TestInput{HasTests: true, Coverage: 50})

	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if vs[0].Severity != SeverityHigh || vs[0].Blocking {
		t.Errorf("coverage violation = %s/blocking=%v, want high/false",
			vs[0].Severity, vs[0].Blocking)
	}
}

func TestEvaluateTestDiscipline_CleanPasses(t *testing.T) {
	e := NewEngine(DefaultParams())
	if vs := e.EvaluateTestDiscipline(TestInput{HasTests: true, TestsFailing: true, MustFailFirst: true, Coverage: 85}); len(vs) != 0 {
		t.Errorf("violations = %d, want 0: %+v", len(vs), vs)
	}
}

// --- Questioning ---

func TestEvaluateQuestioning_BelowThresholdBlocks(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateQuestioning(QuestioningInput{Confidence: 70})

	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if vs[0].Severity != SeverityCritical || !vs[0].Blocking {
		t.Errorf("questioning violation = %s/blocking=%v, want critical/true",
			vs[0].Severity, vs[0].Blocking)
	}
}

func TestEvaluateQuestioning_AtThresholdPasses(t *testing.T) {
	e := NewEngine(DefaultParams())
	if vs := e.EvaluateQuestioning(QuestioningInput{Confidence: 85}); len(vs) != 0 {
		t.Errorf("violations = %d, want 0 at the threshold", len(vs))
	}
}

// --- Context ---

func TestEvaluateContext_ExternalDependencySuppressesElementChecks(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateContext(ContextInput{
		Lines:                   1200,
		HasExternalDependencies: true,
		// All elements missing, but the external dependency takes priority.
	})

	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1 (element checks suppressed): %+v", len(vs), vs)
	}
	v := vs[0]
	if v.Severity != SeverityCritical || !v.Blocking {
		t.Errorf("external-dependency violation = %s/blocking=%v, want critical/true",
			v.Severity, v.Blocking)
	}
}

func TestEvaluateContext_MissingElementsReportedIndividually(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateContext(ContextInput{Lines: 1200, HasDecisionLog: true})

	if len(vs) != 2 {
		t.Fatalf("violations = %d, want 2 (patterns, embedding): %+v", len(vs), vs)
	}
	for _, v := range vs {
		if v.Severity != SeverityMedium || v.Blocking {
			t.Errorf("missing-element violation = %s/blocking=%v, want medium/false",
				v.Severity, v.Blocking)
		}
	}
}

func TestEvaluateContext_AdaptiveMinimum(t *testing.T) {
	e := NewEngine(DefaultParams())
	conf := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		lines      int
		confidence *float64
		wantShort  bool
	}{
		{name: "no confidence needs 1000", lines: 800, confidence: nil, wantShort: true},
		{name: "70 confidence needs 500", lines: 800, confidence: conf(75), wantShort: false},
		{name: "90 confidence needs 200", lines: 250, confidence: conf(92), wantShort: false},
		{name: "90 confidence still short below 200", lines: 100, confidence: conf(92), wantShort: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := e.EvaluateContext(ContextInput{
				Lines: tt.lines, Confidence: tt.confidence,
				HasDecisionLog: true, HasPatterns: true, HasEmbedding: true,
			})
			short := false
			for _, v := range vs {
				if strings.Contains(v.Description, "below") {
					short = true
				}
			}
			if short != tt.wantShort {
				t.Errorf("short-context violation = %v, want %v: %+v", short, tt.wantShort, vs)
			}
		})
	}
}

func TestEvaluateContext_Oversized(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateContext(ContextInput{
		Lines: 3000, HasDecisionLog: true, HasPatterns: true, HasEmbedding: true,
	})
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1: %+v", len(vs), vs)
	}
	if !strings.Contains(vs[0].Description, "above") {
		t.Errorf("description = %q, want an oversize report", vs[0].Description)
	}
}

// --- Quality ---

func TestEvaluateQuality_ReviewOnlyWhenRequired(t *testing.T) {
	in := QualityInput{
		Coverage: 92, ShardingReduction: 0.8, LookupReduction: 0.6, ImplTimeReduction: 0.5,
	}

	if vs := NewEngine(DefaultParams()).EvaluateQuality(in); len(vs) != 0 {
		t.Errorf("violations = %d, want 0 when review is optional: %+v", len(vs), vs)
	}

	p := DefaultParams()
	p.RequireCodeReview = true
	vs := NewEngine(p).EvaluateQuality(in)
	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1 when review is required", len(vs))
	}
	if !strings.Contains(vs[0].Description, "code review") {
		t.Errorf("description = %q, want a code-review report", vs[0].Description)
	}
}

func TestEvaluateQuality_ReductionTargets(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateQuality(QualityInput{
		Coverage:          92,
		ShardingReduction: 0.50, // below 0.70
		LookupReduction:   0.60,
		ImplTimeReduction: 0.10, // below 0.40
	})

	if len(vs) != 2 {
		t.Fatalf("violations = %d, want 2: %+v", len(vs), vs)
	}
	for _, v := range vs {
		if v.Severity != SeverityLow || v.Blocking {
			t.Errorf("reduction violation = %s/blocking=%v, want low/false", v.Severity, v.Blocking)
		}
	}
}

func TestEvaluateQuality_StyleChecksBundled(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateQuality(QualityInput{
		Coverage: 92, ShardingReduction: 0.8, LookupReduction: 0.6, ImplTimeReduction: 0.5,
		StyleChecks: map[string]bool{"gofmt": false, "doc-comments": false, "lint": true},
	})

	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1 bundled style violation: %+v", len(vs), vs)
	}
	// Failed checks listed in stable name order.
	if !strings.Contains(vs[0].Description, "doc-comments, gofmt") {
		t.Errorf("description = %q, want sorted failed checks", vs[0].Description)
	}
}

// --- Validation ---

func TestEvaluateValidation_ConstitutionalFailureBlocks(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateValidation(ValidationInput{
		PreValidated: true, PostValidated: true, CIPassing: true, RegressionFree: true,
		ConstitutionCompliant: false,
	})

	if len(vs) != 1 {
		t.Fatalf("violations = %d, want 1", len(vs))
	}
	if vs[0].Severity != SeverityCritical || !vs[0].Blocking {
		t.Errorf("constitutional violation = %s/blocking=%v, want critical/true",
			vs[0].Severity, vs[0].Blocking)
	}
}

func TestEvaluateValidation_OtherFailuresDoNotBlock(t *testing.T) {
	e := NewEngine(DefaultParams())
	vs := e.EvaluateValidation(ValidationInput{ConstitutionCompliant: true})

	if len(vs) != 4 {
		t.Fatalf("violations = %d, want 4", len(vs))
	}
	for _, v := range vs {
		if v.Blocking {
			t.Errorf("%s should not block", v.Description)
		}
	}
}

// --- Aggregate properties ---

func TestEvaluateAll_CompliantInputs(t *testing.T) {
	e := NewEngine(DefaultParams())
	res := e.EvaluateAll(compliantInputs())

	if !res.Compliant || len(res.Violations) != 0 {
		t.Errorf("compliant = %v, violations = %+v, want true and none", res.Compliant, res.Violations)
	}
}

func TestEvaluateAll_BlockingImpliesCritical(t *testing.T) {
	e := NewEngine(DefaultParams())
	res := e.EvaluateAll(Inputs{
		Test:        TestInput{HasTests: false},
		Questioning: QuestioningInput{Confidence: 10},
		Context:     ContextInput{Lines: 50, HasExternalDependencies: true},
		Quality:     QualityInput{},
		Validation:  ValidationInput{},
	})

	if res.Compliant {
		t.Fatal("fully failing inputs reported compliant")
	}
	for _, v := range res.Violations {
		if v.Blocking && v.Severity != SeverityCritical {
			t.Errorf("%s: blocking but %s", v.ID, v.Severity)
		}
		if v.Severity == SeverityCritical && !v.Blocking {
			t.Errorf("%s: critical but not blocking", v.ID)
		}
	}
}

func TestEvaluateAll_Idempotent(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := Inputs{
		Test:        TestInput{HasTests: true, Coverage: 40},
		Questioning: QuestioningInput{Confidence: 60},
		Context:     ContextInput{Lines: 300},
		Quality:     QualityInput{StyleChecks: map[string]bool{"gofmt": false}},
		Validation:  ValidationInput{},
	}

	first := e.EvaluateAll(in)
	second := e.EvaluateAll(in)
	if !reflect.DeepEqual(first, second) {
		t.Error("re-evaluating an unchanged snapshot produced different violations")
	}
}

// --- Gate ---

func TestGate_PassesCompliantInputs(t *testing.T) {
	e := NewEngine(DefaultParams())
	if err := e.Gate(compliantInputs()); err != nil {
		t.Errorf("Gate = %v, want nil", err)
	}
}

func TestGate_CarriesFullViolationList(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := compliantInputs()
	in.Test = TestInput{HasTests: false} // one blocking violation
	in.Quality.ShardingReduction = 0.10  // plus a non-blocking one

	err := e.Gate(in)
	if err == nil {
		t.Fatal("Gate = nil, want a gate error")
	}
	var ge *GateError
	if !errors.As(err, &ge) {
		t.Fatalf("error type = %T, want *GateError", err)
	}
	if len(ge.Violations) != 2 {
		t.Errorf("gate error carries %d violations, want the full list of 2: %+v",
			len(ge.Violations), ge.Violations)
	}
	if len(Blocking(ge.Violations)) != 1 {
		t.Errorf("blocking subset = %d, want 1", len(Blocking(ge.Violations)))
	}
	if !strings.Contains(err.Error(), "1 critical violation") {
		t.Errorf("Error() = %q, want the blocking count", err.Error())
	}
}

func TestGate_NonBlockingViolationsDoNotStop(t *testing.T) {
	e := NewEngine(DefaultParams())
	in := compliantInputs()
	in.Test.Coverage = 40 // high severity, not blocking
	in.Quality.Coverage = 40

	if err := e.Gate(in); err != nil {
		t.Errorf("Gate = %v, want nil for non-blocking violations", err)
	}
}
