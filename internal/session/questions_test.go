package session

import (
	"math"
	"strings"
	"testing"

	"github.com/readygate/readygate/internal/task"
)

// --- Generators ---

func TestGenerators_CoverEveryQuestionType(t *testing.T) {
	tc := task.TaskContext{Description: "Export order records as CSV"}
	for _, qt := range task.QuestionTypes() {
		gen, ok := generators[qt]
		if !ok {
			t.Errorf("question type %s has no generator", qt)
			continue
		}
		spec := gen(tc)
		if spec.text == "" {
			t.Errorf("%s: generator produced empty text", qt)
		}
		if spec.priority == "" {
			t.Errorf("%s: generator produced no priority", qt)
		}
		if spec.reasoning == "" {
			t.Errorf("%s: generator produced no reasoning", qt)
		}
	}
}

func TestShortDesc_TruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("x", 120)
	got := shortDesc(task.TaskContext{Description: long})
	if len(got) != 53 || !strings.HasSuffix(got, "...") {
		t.Errorf("shortDesc = %q (len %d), want 50 chars plus ellipsis", got, len(got))
	}
}

// --- Triage planning ---

func TestTriagePlan_ShapeInvariants(t *testing.T) {
	tests := []struct {
		name string
		tc   task.TaskContext
	}{
		{name: "bare context", tc: task.TaskContext{Description: "Export order records"}},
		{
			name: "signal-heavy context",
			tc: task.TaskContext{
				Description:      "Sync customers with the billing provider",
				TechnicalContext: "external api integration, latency sensitive, auth via oauth, multi-step workflow",
				BusinessContext:  "finance reconciliation",
				Complexity:       "high",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := triagePlan(tt.tc, 5)
			if len(plan) != 5 {
				t.Fatalf("plan length = %d, want 5: %v", len(plan), plan)
			}
			if plan[0] != task.QuestionClarification {
				t.Errorf("plan[0] = %s, want clarification first", plan[0])
			}
			hasEdge := false
			seen := map[task.QuestionType]bool{}
			for _, qt := range plan {
				if qt == task.QuestionEdgeCase {
					hasEdge = true
				}
				if seen[qt] {
					t.Errorf("duplicate type %s in plan %v", qt, plan)
				}
				seen[qt] = true
			}
			if !hasEdge {
				t.Errorf("plan %v lacks an edge-case question", plan)
			}
		})
	}
}

func TestTriagePlan_DomainSignals(t *testing.T) {
	tc := task.TaskContext{
		Description:      "Push invoices to the accounting system",
		TechnicalContext: "rest api of a third-party provider",
		BusinessContext:  "month-end close",
	}
	plan := triagePlan(tc, 5)

	want := map[task.QuestionType]bool{
		task.QuestionIntegration:  true,
		task.QuestionBusinessRule: true,
	}
	for _, qt := range plan {
		delete(want, qt)
	}
	for qt := range want {
		t.Errorf("plan %v missing signal-driven type %s", plan, qt)
	}
}

// --- Answer confidence ---

func TestAnswerConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "hedged one-word floor", text: "Maybe", want: 0.1},
		{name: "bare short answer", text: "No", want: 0.3},
		{name: "short with numbers", text: "At most 25 rows per page", want: 0.6},
		{
			name: "long specific with example",
			text: strings.Repeat("Each export holds 500 rows. ", 8) + "For example, the March run.",
			want: 0.9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := answerConfidence(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("answerConfidence(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnswerConfidence_AlwaysInRange(t *testing.T) {
	texts := []string{
		"", "maybe not sure probably", strings.Repeat("specifically 123 ", 50),
	}
	for _, text := range texts {
		got := answerConfidence(text)
		if got < 0.1 || got > 1.0 {
			t.Errorf("answerConfidence(%q) = %v, out of [0.1, 1.0]", text, got)
		}
	}
}

// --- Answer text analysis ---

func TestExtractAssumptions(t *testing.T) {
	text := "We assume the upstream API is stable. The job runs nightly. Presumably nobody edits during the run."
	got := extractAssumptions(text)
	if len(got) != 2 {
		t.Fatalf("assumptions = %d, want 2: %v", len(got), got)
	}
	if !strings.Contains(got[0], "assume") {
		t.Errorf("first assumption = %q", got[0])
	}
}

func TestExtractClarifications(t *testing.T) {
	text := "The export runs nightly. Should failed rows be retried? Errors go to the dead-letter queue."
	got := extractClarifications(text)
	if len(got) != 1 || got[0] != "Should failed rows be retried?" {
		t.Errorf("clarifications = %v, want the counter-question only", got)
	}
}

func TestExtractEdgeCases(t *testing.T) {
	got := extractEdgeCases("Watch for empty files and duplicate rows under concurrent runs", "Q-004")
	if len(got) != 3 {
		t.Fatalf("edge cases = %d, want 3: %v", len(got), got)
	}
	for _, ec := range got {
		if ec.Source != "Q-004" {
			t.Errorf("source = %q, want Q-004", ec.Source)
		}
		if ec.Explored {
			t.Error("extraction should not mark cases explored")
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First. Second one! A question? trailing fragment")
	want := []string{"First.", "Second one!", "A question?", "trailing fragment"}
	if len(got) != len(want) {
		t.Fatalf("sentences = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
