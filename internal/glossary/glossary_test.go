package glossary

import (
	"os"
	"path/filepath"
	"testing"
)

// --- ConfusionScore ---

func TestConfusionScore_SingleMeaningIsZero(t *testing.T) {
	term := Term{Surface: "widget", Meanings: []Meaning{{Definition: "a thing", UsageFrequency: 1.0}}}
	if got := term.ConfusionScore(); got != 0 {
		t.Errorf("ConfusionScore = %d, want 0", got)
	}
}

func TestConfusionScore_EvenSplitScoresHigher(t *testing.T) {
	even := Term{Surface: "x", Meanings: []Meaning{
		{UsageFrequency: 0.5}, {UsageFrequency: 0.5},
	}}
	skewed := Term{Surface: "x", Meanings: []Meaning{
		{UsageFrequency: 0.9}, {UsageFrequency: 0.1},
	}}
	if even.ConfusionScore() <= skewed.ConfusionScore() {
		t.Errorf("even split %d should exceed skewed %d",
			even.ConfusionScore(), skewed.ConfusionScore())
	}
}

func TestConfusionScore_TwoEvenMeanings(t *testing.T) {
	term := Term{Surface: "x", Meanings: []Meaning{
		{UsageFrequency: 0.5}, {UsageFrequency: 0.5},
	}}
	// base 25 + 40*1.0 evenness.
	if got := term.ConfusionScore(); got != 65 {
		t.Errorf("ConfusionScore = %d, want 65", got)
	}
}

func TestConfusionScore_BaseCapsAtSixty(t *testing.T) {
	term := Term{Surface: "x", Meanings: []Meaning{
		{UsageFrequency: 0.25}, {UsageFrequency: 0.25},
		{UsageFrequency: 0.25}, {UsageFrequency: 0.25},
	}}
	// base capped at 60 + 40 evenness = 100.
	if got := term.ConfusionScore(); got != 100 {
		t.Errorf("ConfusionScore = %d, want 100", got)
	}
}

// --- RecommendedAction ---

func TestRecommendedAction_Bands(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want Action
	}{
		{
			name: "single meaning defines clearly",
			term: Term{Meanings: []Meaning{{UsageFrequency: 1.0}}},
			want: ActionDefineClearly,
		},
		{
			name: "skewed pair uses specific terms",
			term: Term{Meanings: []Meaning{{UsageFrequency: 0.8}, {UsageFrequency: 0.2}}},
			want: ActionUseSpecificTerms,
		},
		{
			name: "even split creates glossary",
			term: Term{Meanings: []Meaning{{UsageFrequency: 0.3}, {UsageFrequency: 0.3}, {UsageFrequency: 0.4}}},
			want: ActionCreateGlossary,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.term.RecommendedAction(); got != tt.want {
				t.Errorf("RecommendedAction = %s, want %s (score %d)",
					got, tt.want, tt.term.ConfusionScore())
			}
		})
	}
}

// --- StaticProvider ---

func TestStaticProvider_LookupIsCaseInsensitive(t *testing.T) {
	p := NewStaticProvider([]Term{{Surface: "User", Meanings: []Meaning{{}, {}}}})

	if _, ok := p.Lookup("user"); !ok {
		t.Error("lowercase lookup failed")
	}
	if _, ok := p.Lookup("USER"); !ok {
		t.Error("uppercase lookup failed")
	}
	if _, ok := p.Lookup("missing"); ok {
		t.Error("lookup of unknown term should fail")
	}
}

func TestStaticProvider_ReplaceSwapsTable(t *testing.T) {
	p := NewStaticProvider([]Term{{Surface: "old"}})
	p.Replace([]Term{{Surface: "new"}})

	if _, ok := p.Lookup("old"); ok {
		t.Error("old term should be gone after Replace")
	}
	if _, ok := p.Lookup("new"); !ok {
		t.Error("new term should be present after Replace")
	}
}

func TestStaticProvider_TermsSorted(t *testing.T) {
	p := NewStaticProvider([]Term{{Surface: "zebra"}, {Surface: "apple"}, {Surface: "mango"}})
	terms := p.Terms()
	if len(terms) != 3 {
		t.Fatalf("Terms() returned %d entries, want 3", len(terms))
	}
	if terms[0].Surface != "apple" || terms[2].Surface != "zebra" {
		t.Errorf("Terms() not sorted: %v", terms)
	}
}

// --- LoadFile ---

func TestLoadFile_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	content := `terms:
  - term: pipeline
    meanings:
      - definition: a CI build sequence
        stakeholders: [engineering]
        usage_frequency: 0.6
      - definition: a sales funnel stage
        stakeholders: [sales]
        usage_frequency: 0.4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	term, ok := p.Lookup("pipeline")
	if !ok {
		t.Fatal("pipeline not found after load")
	}
	if len(term.Meanings) != 2 {
		t.Errorf("meanings = %d, want 2", len(term.Meanings))
	}
	if term.Meanings[0].UsageFrequency != 0.6 {
		t.Errorf("usage_frequency = %v, want 0.6", term.Meanings[0].UsageFrequency)
	}
}

func TestLoadFile_MissingFileFails(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFile_EmptySurfaceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.yaml")
	if err := os.WriteFile(path, []byte("terms:\n  - term: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for empty surface form")
	}
}

// --- Default ---

func TestDefault_ContainsOverloadedTerms(t *testing.T) {
	p := Default()
	for _, surface := range []string{"user", "session", "client", "report"} {
		term, ok := p.Lookup(surface)
		if !ok {
			t.Errorf("default table missing %q", surface)
			continue
		}
		if len(term.Meanings) < 2 {
			t.Errorf("%q has %d meanings, want at least 2", surface, len(term.Meanings))
		}
	}
}
