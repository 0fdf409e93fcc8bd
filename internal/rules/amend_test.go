package rules

import (
	"testing"
	"time"
)

func stubNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

// --- Rejections ---

func TestProposeAmendment_ImmutableRulesRejected(t *testing.T) {
	e := NewEngine(DefaultParams())
	for _, id := range []string{RuleTestFirstPrinciple, RuleConstitutionalCompliance} {
		d, err := e.ProposeAmendment(Proposal{RuleID: id, Value: 0, Rationale: "we would like to skip this"})
		if err != nil {
			t.Fatalf("%s: unexpected error %v (rejections are decisions)", id, err)
		}
		if d.Accepted {
			t.Errorf("%s: accepted, want rejection", id)
		}
		if d.Reason == "" {
			t.Errorf("%s: rejection carries no reason", id)
		}
	}
	if len(e.Amendments()) != 0 {
		t.Errorf("amendment log = %d entries, want 0 after rejections", len(e.Amendments()))
	}
}

func TestProposeAmendment_UnknownRuleRejected(t *testing.T) {
	e := NewEngine(DefaultParams())
	d, err := e.ProposeAmendment(Proposal{RuleID: "test.magic_flag", Value: 1, Rationale: "because"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Accepted {
		t.Error("unknown rule accepted, want rejection")
	}
}

func TestProposeAmendment_OutOfRangeRejected(t *testing.T) {
	tests := []struct {
		name   string
		ruleID string
		value  float64
	}{
		{name: "coverage above 100", ruleID: RuleTestMinCoverage, value: 120},
		{name: "negative confidence", ruleID: RuleQuestioningConfidence, value: -5},
		{name: "zero context lines", ruleID: RuleContextMaxLines, value: 0},
		{name: "reduction above 1", ruleID: RuleQualityShardingTarget, value: 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(DefaultParams())
			d, err := e.ProposeAmendment(Proposal{RuleID: tt.ruleID, Value: tt.value, Rationale: "stress test"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Accepted {
				t.Error("out-of-range value accepted")
			}
			if e.Params() != DefaultParams() {
				t.Error("rejected proposal mutated params")
			}
		})
	}
}

func TestProposeAmendment_MalformedProposalsAreErrors(t *testing.T) {
	e := NewEngine(DefaultParams())
	if _, err := e.ProposeAmendment(Proposal{Value: 90, Rationale: "x"}); err == nil {
		t.Error("empty rule id should be an error")
	}
	if _, err := e.ProposeAmendment(Proposal{RuleID: RuleTestMinCoverage, Value: 90}); err == nil {
		t.Error("missing rationale should be an error")
	}
}

// --- Acceptance ---

func TestProposeAmendment_AcceptedChangesParams(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stubNow(t, at)

	e := NewEngine(DefaultParams())
	d, err := e.ProposeAmendment(Proposal{
		RuleID: RuleTestMinCoverage, Value: 90,
		Rationale: "payment paths need tighter coverage",
	})
	if err != nil {
		t.Fatalf("ProposeAmendment: %v", err)
	}
	if !d.Accepted || d.Amendment == nil {
		t.Fatalf("decision = %+v, want accepted with an amendment record", d)
	}
	if e.Params().MinCoverage != 90 {
		t.Errorf("MinCoverage = %v, want 90", e.Params().MinCoverage)
	}
	a := d.Amendment
	if a.Previous != 80 || a.Value != 90 {
		t.Errorf("previous/value = %v/%v, want 80/90", a.Previous, a.Value)
	}
	if !a.AcceptedAt.Equal(at) {
		t.Errorf("AcceptedAt = %v, want %v", a.AcceptedAt, at)
	}
}

func TestProposeAmendment_BooleanRule(t *testing.T) {
	e := NewEngine(DefaultParams())

	d, err := e.ProposeAmendment(Proposal{
		RuleID: RuleQualityRequireReview, Value: 1,
		Rationale: "team policy change",
	})
	if err != nil || !d.Accepted {
		t.Fatalf("decision = %+v, err = %v", d, err)
	}
	if !e.Params().RequireCodeReview {
		t.Error("RequireCodeReview = false after enabling amendment")
	}
	if d.Amendment.Previous != 0 {
		t.Errorf("previous = %v, want 0", d.Amendment.Previous)
	}

	d, err = e.ProposeAmendment(Proposal{
		RuleID: RuleQualityRequireReview, Value: 0,
		Rationale: "rolled back",
	})
	if err != nil || !d.Accepted {
		t.Fatalf("decision = %+v, err = %v", d, err)
	}
	if e.Params().RequireCodeReview {
		t.Error("RequireCodeReview = true after disabling amendment")
	}
	if d.Amendment.Previous != 1 {
		t.Errorf("previous = %v, want 1", d.Amendment.Previous)
	}
}

func TestAmendments_LogInAcceptanceOrder(t *testing.T) {
	e := NewEngine(DefaultParams())
	proposals := []Proposal{
		{RuleID: RuleTestMinCoverage, Value: 85, Rationale: "first"},
		{RuleID: RuleQuestioningConfidence, Value: 90, Rationale: "second"},
		{RuleID: RuleContextMaxLines, Value: 1500, Rationale: "third"},
	}
	for _, p := range proposals {
		if d, err := e.ProposeAmendment(p); err != nil || !d.Accepted {
			t.Fatalf("%s: decision = %+v, err = %v", p.RuleID, d, err)
		}
	}

	log := e.Amendments()
	if len(log) != 3 {
		t.Fatalf("log = %d entries, want 3", len(log))
	}
	for i, p := range proposals {
		if log[i].RuleID != p.RuleID {
			t.Errorf("log[%d] = %s, want %s", i, log[i].RuleID, p.RuleID)
		}
	}

	// The returned slice is a copy.
	log[0].RuleID = "mutated"
	if e.Amendments()[0].RuleID != RuleTestMinCoverage {
		t.Error("Amendments() exposed internal state")
	}
}

func TestProposeAmendment_AmendedEngineEvaluatesWithNewParams(t *testing.T) {
	e := NewEngine(DefaultParams())
	if _, err := e.ProposeAmendment(Proposal{
		RuleID: RuleQuestioningConfidence, Value: 60,
		Rationale: "prototype phase uses a lower bar",
	}); err != nil {
		t.Fatal(err)
	}

	if vs := e.EvaluateQuestioning(QuestioningInput{Confidence: 70}); len(vs) != 0 {
		t.Errorf("violations = %d, want 0 against the amended threshold", len(vs))
	}
}
