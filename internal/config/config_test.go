package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// --- Defaults and validation ---

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidate_RejectsBrokenConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero target", mutate: func(c *Config) { c.TargetConfidence = 0 }},
		{name: "target above 100", mutate: func(c *Config) { c.TargetConfidence = 120 }},
		{name: "negative exploration threshold", mutate: func(c *Config) { c.ExplorationThreshold = -1 }},
		{name: "refinement below exploration", mutate: func(c *Config) {
			c.ExplorationThreshold = 80
			c.RefinementThreshold = 70
		}},
		{name: "no triage questions", mutate: func(c *Config) { c.TriageQuestions = 0 }},
		{name: "no new questions", mutate: func(c *Config) { c.MaxNewQuestions = 0 }},
		{name: "zero timeout", mutate: func(c *Config) { c.SessionTimeoutMinutes = 0 }},
		{name: "coverage above 100", mutate: func(c *Config) { c.Rules.MinCoverage = 101 }},
		{name: "zero context lines", mutate: func(c *Config) { c.Rules.MaxContextLines = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

// --- Mappings ---

func TestSessionOptions_MirrorsConfig(t *testing.T) {
	cfg := Default()
	cfg.TargetConfidence = 90
	cfg.TriageQuestions = 7
	cfg.SessionTimeoutMinutes = 90

	opts := cfg.SessionOptions()
	if opts.TargetConfidence != 90 {
		t.Errorf("TargetConfidence = %v, want 90", opts.TargetConfidence)
	}
	if opts.TriageQuestions != 7 {
		t.Errorf("TriageQuestions = %v, want 7", opts.TriageQuestions)
	}
	if opts.Timeout != 90*time.Minute {
		t.Errorf("Timeout = %v, want 90m", opts.Timeout)
	}
}

func TestRuleParams_MirrorsConfig(t *testing.T) {
	cfg := Default()
	cfg.Rules.MinCoverage = 95
	cfg.Rules.RequireCodeReview = true

	p := cfg.RuleParams()
	if p.MinCoverage != 95 {
		t.Errorf("MinCoverage = %v, want 95", p.MinCoverage)
	}
	if !p.RequireCodeReview {
		t.Error("RequireCodeReview not carried over")
	}
	if p.MaxContextLines != cfg.Rules.MaxContextLines {
		t.Errorf("MaxContextLines = %v, want %v", p.MaxContextLines, cfg.Rules.MaxContextLines)
	}
}

// --- FileStore ---

func TestFileStore_MissingFileYieldsDefaults(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore()

	if fs.Exists(root) {
		t.Error("Exists = true for an empty project")
	}
	cfg, err := fs.Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load = %+v, want defaults", cfg)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore()

	cfg := Default()
	cfg.TargetConfidence = 92
	cfg.GlossaryPath = "docs/glossary.yaml"
	cfg.Rules.MinCoverage = 90

	if err := fs.Save(root, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !fs.Exists(root) {
		t.Error("Exists = false after Save")
	}

	loaded, err := fs.Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip changed the config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestFileStore_PartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(StatePath(root), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "target_confidence: 90\n"
	if err := os.WriteFile(FilePath(root), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileStore().Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetConfidence != 90 {
		t.Errorf("TargetConfidence = %v, want the explicit 90", cfg.TargetConfidence)
	}
	if cfg.TriageQuestions != Default().TriageQuestions {
		t.Errorf("TriageQuestions = %v, want the default for unset keys", cfg.TriageQuestions)
	}
}

func TestFileStore_InvalidFileRejected(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(StatePath(root), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(FilePath(root), []byte("triage_questions: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore().Load(root); err == nil {
		t.Error("Load = nil error for an invalid config")
	}
}

func TestFileStore_SaveRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.TargetConfidence = -1
	if err := NewFileStore().Save(t.TempDir(), cfg); err == nil {
		t.Error("Save = nil error for an invalid config")
	}
}

func TestPathHelpers(t *testing.T) {
	if got := FilePath("/proj"); got != filepath.Join("/proj", Dir, File) {
		t.Errorf("FilePath = %q", got)
	}
	if got := StatePath("/proj"); got != filepath.Join("/proj", Dir) {
		t.Errorf("StatePath = %q", got)
	}
}
