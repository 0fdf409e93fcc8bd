package scoring

import (
	"math"
	"testing"

	"github.com/readygate/readygate/internal/task"
)

// richInput is a well-evidenced snapshot: confident answers that mention
// testing, closed gaps, and fully explored edge cases.
func richInput() Input {
	answers := make([]task.Answer, 5)
	for i := range answers {
		answers[i] = task.Answer{
			QuestionID: "Q-001",
			Text:       "covered by an integration test against the staging API",
			Confidence: 1.0,
		}
	}
	gaps := make([]task.Gap, 4)
	for i := range gaps {
		gaps[i] = task.Gap{ID: "GAP-001", Severity: task.SeverityHigh, Closed: true}
	}
	edges := make([]task.EdgeCase, 5)
	for i := range edges {
		edges[i] = task.EdgeCase{ID: "EC-001", Explored: true}
	}
	return Input{
		Context: task.TaskContext{
			Description:      "Allow users to export their order history as CSV when the account has fewer than 10000 orders",
			BusinessContext:  "finance team needs exports for audits",
			TechnicalContext: "existing reporting service, Postgres",
			Domain:           "billing",
			Stakeholders:     []string{"finance", "support"},
			ExistingContext:  []string{"phase-1 decisions"},
		},
		Answers:   answers,
		Gaps:      gaps,
		EdgeCases: edges,
	}
}

// --- Weights ---

func TestWeights_SumToOne(t *testing.T) {
	sum := 0.0
	for _, c := range componentOrder {
		w, ok := Weights[c]
		if !ok {
			t.Errorf("component %s has no weight", c)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0", sum)
	}
	if len(Weights) != len(componentOrder) {
		t.Errorf("weights cover %d components, order lists %d", len(Weights), len(componentOrder))
	}
}

// --- Initial confidence ---

func TestInitialConfidence_BareContextStaysLow(t *testing.T) {
	got := InitialConfidence(task.TaskContext{Description: "Add a feature"})
	if got >= 50 {
		t.Errorf("InitialConfidence = %.2f, want below 50 for a bare context", got)
	}
}

func TestInitialConfidence_RichContextScoresHigher(t *testing.T) {
	bare := InitialConfidence(task.TaskContext{Description: "Add a feature"})
	rich := InitialConfidence(richInput().Context)
	if rich <= bare {
		t.Errorf("rich context %.2f should exceed bare context %.2f", rich, bare)
	}
}

func TestInitialConfidence_ManyStakeholdersLowerThanFew(t *testing.T) {
	base := task.TaskContext{Description: "Add a feature", Stakeholders: []string{"a", "b"}}
	crowd := base
	crowd.Stakeholders = []string{"a", "b", "c", "d", "e"}

	if InitialConfidence(crowd) >= InitialConfidence(base) {
		t.Error("a crowd of stakeholders should lower initial confidence")
	}
}

func TestDescriptionClarity_CappedAtEighty(t *testing.T) {
	long := make([]byte, 0, 250)
	for len(long) < 220 {
		long = append(long, "export 10000 rows when the user asks "...)
	}
	if got := descriptionClarity(string(long)); got != 80 {
		t.Errorf("clarity = %.1f, want the 80 cap", got)
	}
}

// --- Assess ---

func TestAssess_ConfidenceInRange(t *testing.T) {
	s := NewScorer(85)
	for _, in := range []Input{{}, richInput()} {
		a, err := s.Assess(in)
		if err != nil {
			t.Fatalf("Assess: %v", err)
		}
		if a.Confidence < 0 || a.Confidence > 100 {
			t.Errorf("confidence = %.2f, out of range", a.Confidence)
		}
		if len(a.Factors) != len(componentOrder) {
			t.Errorf("factors = %d, want %d", len(a.Factors), len(componentOrder))
		}
	}
}

func TestAssess_MoreAnswersNeverLowerConfidence(t *testing.T) {
	s := NewScorer(85)
	in := richInput()

	prev := -1.0
	for n := 0; n <= len(in.Answers); n++ {
		round := in
		round.Answers = in.Answers[:n]
		a, err := s.Assess(round)
		if err != nil {
			t.Fatalf("Assess with %d answers: %v", n, err)
		}
		if a.Confidence < prev {
			t.Errorf("confidence fell from %.2f to %.2f when answer %d was added", prev, a.Confidence, n)
		}
		prev = a.Confidence
	}
}

func TestAssess_OpenCriticalGapLowersConfidence(t *testing.T) {
	s := NewScorer(85)
	in := richInput()
	clean, err := s.Assess(in)
	if err != nil {
		t.Fatal(err)
	}

	in.Gaps = append(in.Gaps, task.Gap{ID: "GAP-009", Severity: task.SeverityCritical})
	gapped, err := s.Assess(in)
	if err != nil {
		t.Fatal(err)
	}
	if gapped.Confidence >= clean.Confidence {
		t.Errorf("open critical gap left confidence at %.2f (was %.2f)", gapped.Confidence, clean.Confidence)
	}
	if gapped.Risk != RiskHigh {
		t.Errorf("risk = %s, want high with an open critical gap", gapped.Risk)
	}
}

func TestAssess_CalculationConfidenceMultiplier(t *testing.T) {
	s := NewScorer(85)

	bare, err := s.Assess(Input{})
	if err != nil {
		t.Fatal(err)
	}
	if bare.CalculationConfidence != 0.5 {
		t.Errorf("multiplier = %v, want 0.5 with no evidence", bare.CalculationConfidence)
	}
	if bare.Confidence != bare.RawConfidence*0.5 {
		t.Errorf("confidence %v should be half the raw score %v", bare.Confidence, bare.RawConfidence)
	}

	rich, err := s.Assess(richInput())
	if err != nil {
		t.Fatal(err)
	}
	// 5 answers + 5 explored edges + 4 closed gaps saturate the multiplier.
	if rich.CalculationConfidence != 1.0 {
		t.Errorf("multiplier = %v, want 1.0 with 14 data points", rich.CalculationConfidence)
	}
}

func TestAssess_RiskLevels(t *testing.T) {
	s := NewScorer(85)

	tests := []struct {
		name string
		gaps []task.Gap
		want string
	}{
		{name: "no gaps is low", gaps: nil, want: RiskLow},
		{name: "one high gap is low", gaps: []task.Gap{{Severity: task.SeverityHigh}}, want: RiskLow},
		{name: "two high gaps is medium", gaps: []task.Gap{
			{Severity: task.SeverityHigh}, {Severity: task.SeverityHigh},
		}, want: RiskMedium},
		{name: "critical gap is high", gaps: []task.Gap{{Severity: task.SeverityCritical}}, want: RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := s.Assess(Input{Gaps: tt.gaps})
			if err != nil {
				t.Fatal(err)
			}
			if a.Risk != tt.want {
				t.Errorf("risk = %s, want %s", a.Risk, tt.want)
			}
		})
	}
}

// --- Dynamic threshold ---

func TestAssess_ThresholdAdjustments(t *testing.T) {
	tests := []struct {
		name string
		base float64
		in   Input
		want float64
	}{
		{
			name: "low risk subtracts five",
			base: 85,
			in:   Input{},
			want: 80,
		},
		{
			name: "critical gap adds five",
			base: 85,
			in:   Input{Gaps: []task.Gap{{Severity: task.SeverityCritical}}},
			want: 90,
		},
		{
			name: "high complexity adds five",
			base: 85,
			in:   Input{Context: task.TaskContext{Complexity: "high"}},
			want: 85, // -5 low risk, +5 complexity
		},
		{
			name: "pattern history subtracts five",
			base: 85,
			in:   Input{PatternMatches: 3},
			want: 75, // -5 low risk, -5 patterns
		},
		{
			name: "crowded stakeholders add three",
			base: 85,
			in:   Input{Context: task.TaskContext{Stakeholders: []string{"a", "b", "c", "d"}}},
			want: 83, // -5 low risk, +3 stakeholders
		},
		{
			name: "clamped to sixty",
			base: 62,
			in:   Input{PatternMatches: 5, Context: task.TaskContext{Complexity: "low"}},
			want: 60,
		},
		{
			name: "clamped to ninety-five",
			base: 93,
			in: Input{
				Gaps:    []task.Gap{{Severity: task.SeverityCritical}},
				Context: task.TaskContext{Complexity: "high"},
			},
			want: 95,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewScorer(tt.base).Assess(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if a.Threshold != tt.want {
				t.Errorf("threshold = %v, want %v", a.Threshold, tt.want)
			}
		})
	}
}

// --- Recommendations ---

func TestAssess_RecommendProceedAtThreshold(t *testing.T) {
	a, err := NewScorer(60).Assess(richInput())
	if err != nil {
		t.Fatal(err)
	}
	if a.Confidence < a.Threshold {
		t.Fatalf("confidence %.2f below threshold %.2f; test input too weak", a.Confidence, a.Threshold)
	}
	if a.Recommendation != RecommendProceed {
		t.Errorf("recommendation = %s, want %s", a.Recommendation, RecommendProceed)
	}
}

func TestAssess_RecommendPauseOnVolatileHistory(t *testing.T) {
	in := Input{History: []float64{50, 40, 50}}
	a, err := NewScorer(85).Assess(in)
	if err != nil {
		t.Fatal(err)
	}
	if a.Trend != TrendVolatile {
		t.Fatalf("trend = %s, want volatile", a.Trend)
	}
	if a.Recommendation != RecommendPause {
		t.Errorf("recommendation = %s, want %s", a.Recommendation, RecommendPause)
	}
}

func TestAssess_RecommendContinueByDefault(t *testing.T) {
	a, err := NewScorer(85).Assess(Input{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Recommendation != RecommendContinue {
		t.Errorf("recommendation = %s, want %s", a.Recommendation, RecommendContinue)
	}
}

// --- Determinism ---

func TestAssess_Deterministic(t *testing.T) {
	s := NewScorer(85)
	in := richInput()

	first, err := s.Assess(in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Assess(in)
	if err != nil {
		t.Fatal(err)
	}
	if first.Confidence != second.Confidence || first.Threshold != second.Threshold {
		t.Errorf("same input scored differently: %.4f vs %.4f", first.Confidence, second.Confidence)
	}
}
