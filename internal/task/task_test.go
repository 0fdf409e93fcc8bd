package task

import "testing"

// --- Severity ---

func TestSeverity_RankOrdering(t *testing.T) {
	ordered := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("%s (rank %d) should outrank %s (rank %d)",
				ordered[i], ordered[i].Rank(), ordered[i-1], ordered[i-1].Rank())
		}
	}
}

func TestSeverity_UnknownRanksBelowLow(t *testing.T) {
	if got := Severity("catastrophic").Rank(); got != 0 {
		t.Errorf("unknown severity rank = %d, want 0", got)
	}
	if SeverityLow.Rank() <= Severity("").Rank() {
		t.Error("low severity should outrank the empty severity")
	}
}

func TestValidateSeverity(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if err := ValidateSeverity(s); err != nil {
			t.Errorf("ValidateSeverity(%s) = %v, want nil", s, err)
		}
	}
	if err := ValidateSeverity("urgent"); err == nil {
		t.Error("expected error for unrecognized severity")
	}
	if err := ValidateSeverity(""); err == nil {
		t.Error("expected error for empty severity")
	}
}

// --- Question types ---

func TestQuestionTypes_ClosedSet(t *testing.T) {
	types := QuestionTypes()
	if len(types) != 13 {
		t.Fatalf("QuestionTypes() returned %d entries, want 13", len(types))
	}
	seen := make(map[QuestionType]bool, len(types))
	for _, qt := range types {
		if seen[qt] {
			t.Errorf("duplicate question type %s", qt)
		}
		seen[qt] = true
	}
	if types[0] != QuestionClarification {
		t.Errorf("first question type = %s, want %s", types[0], QuestionClarification)
	}
}
