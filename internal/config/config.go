// Package config defines the engine configuration and its on-disk store.
//
// Every threshold the lifecycle and rule engine consume lives here as a
// named default, so deployments tune behavior through one YAML file instead
// of code changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/readygate/readygate/internal/rules"
	"github.com/readygate/readygate/internal/session"
)

const (
	// Dir is the per-project directory holding engine state.
	Dir = "readygate"
	// File is the configuration file name inside Dir.
	File = "readygate.yaml"
)

// Config is the full engine configuration.
type Config struct {
	// TargetConfidence is the default completion threshold for new sessions.
	TargetConfidence float64 `yaml:"target_confidence"`
	// ExplorationThreshold moves a session from EXPLORATION to VALIDATION.
	ExplorationThreshold float64 `yaml:"exploration_threshold"`
	// RefinementThreshold moves a session from VALIDATION to REFINEMENT.
	RefinementThreshold float64 `yaml:"refinement_threshold"`
	// MaxAnswers caps EXPLORATION regardless of confidence.
	MaxAnswers int `yaml:"max_answers"`
	// MinimalOpenGaps lets VALIDATION advance early when few gaps remain.
	MinimalOpenGaps int `yaml:"minimal_open_gaps"`
	// TriageQuestions is the exact first-round question count.
	TriageQuestions int `yaml:"triage_questions"`
	// MaxNewQuestions caps questions generated per answer round.
	MaxNewQuestions int `yaml:"max_new_questions"`
	// SessionTimeoutMinutes is the wall-clock session ceiling.
	SessionTimeoutMinutes int `yaml:"session_timeout_minutes"`
	// GlossaryPath optionally points at a YAML domain-term table; empty
	// selects the built-in glossary.
	GlossaryPath string `yaml:"glossary_path,omitempty"`

	Rules RulesConfig `yaml:"rules"`
}

// RulesConfig carries the rule-engine parameters.
type RulesConfig struct {
	MinCoverage             float64 `yaml:"min_coverage"`
	MinConfidence           float64 `yaml:"min_confidence"`
	MaxContextLines         int     `yaml:"max_context_lines"`
	ShardingReductionTarget float64 `yaml:"sharding_reduction_target"`
	LookupReductionTarget   float64 `yaml:"lookup_reduction_target"`
	ImplTimeReductionTarget float64 `yaml:"impl_time_reduction_target"`
	RequireCodeReview       bool    `yaml:"require_code_review"`
}

// Default returns the stock configuration.
func Default() Config {
	rp := rules.DefaultParams()
	return Config{
		TargetConfidence:      85,
		ExplorationThreshold:  60,
		RefinementThreshold:   75,
		MaxAnswers:            20,
		MinimalOpenGaps:       2,
		TriageQuestions:       5,
		MaxNewQuestions:       10,
		SessionTimeoutMinutes: 480,
		Rules: RulesConfig{
			MinCoverage:             rp.MinCoverage,
			MinConfidence:           rp.MinConfidence,
			MaxContextLines:         rp.MaxContextLines,
			ShardingReductionTarget: rp.ShardingReductionTarget,
			LookupReductionTarget:   rp.LookupReductionTarget,
			ImplTimeReductionTarget: rp.ImplTimeReductionTarget,
			RequireCodeReview:       rp.RequireCodeReview,
		},
	}
}

// Validate rejects configurations that would wedge or bypass the lifecycle.
func (c Config) Validate() error {
	if c.TargetConfidence <= 0 || c.TargetConfidence > 100 {
		return fmt.Errorf("config: target_confidence %.1f out of range (0, 100]", c.TargetConfidence)
	}
	if c.ExplorationThreshold < 0 || c.ExplorationThreshold > 100 {
		return fmt.Errorf("config: exploration_threshold %.1f out of range [0, 100]", c.ExplorationThreshold)
	}
	if c.RefinementThreshold < c.ExplorationThreshold {
		return fmt.Errorf("config: refinement_threshold %.1f below exploration_threshold %.1f",
			c.RefinementThreshold, c.ExplorationThreshold)
	}
	if c.TriageQuestions < 1 {
		return fmt.Errorf("config: triage_questions must be at least 1")
	}
	if c.MaxNewQuestions < 1 {
		return fmt.Errorf("config: max_new_questions must be at least 1")
	}
	if c.SessionTimeoutMinutes < 1 {
		return fmt.Errorf("config: session_timeout_minutes must be at least 1")
	}
	if c.Rules.MinCoverage < 0 || c.Rules.MinCoverage > 100 {
		return fmt.Errorf("config: rules.min_coverage %.1f out of range [0, 100]", c.Rules.MinCoverage)
	}
	if c.Rules.MinConfidence < 0 || c.Rules.MinConfidence > 100 {
		return fmt.Errorf("config: rules.min_confidence %.1f out of range [0, 100]", c.Rules.MinConfidence)
	}
	if c.Rules.MaxContextLines < 1 {
		return fmt.Errorf("config: rules.max_context_lines must be positive")
	}
	return nil
}

// SessionTimeout returns the session ceiling as a duration.
func (c Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

// SessionOptions maps the configuration onto lifecycle options.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		TargetConfidence:     c.TargetConfidence,
		ExplorationThreshold: c.ExplorationThreshold,
		RefinementThreshold:  c.RefinementThreshold,
		MaxAnswers:           c.MaxAnswers,
		MinimalOpenGaps:      c.MinimalOpenGaps,
		TriageQuestions:      c.TriageQuestions,
		MaxNewQuestions:      c.MaxNewQuestions,
		Timeout:              c.SessionTimeout(),
	}
}

// RuleParams maps the configuration onto rule-engine parameters.
func (c Config) RuleParams() rules.Params {
	return rules.Params{
		MinCoverage:             c.Rules.MinCoverage,
		MinConfidence:           c.Rules.MinConfidence,
		MaxContextLines:         c.Rules.MaxContextLines,
		ShardingReductionTarget: c.Rules.ShardingReductionTarget,
		LookupReductionTarget:   c.Rules.LookupReductionTarget,
		ImplTimeReductionTarget: c.Rules.ImplTimeReductionTarget,
		RequireCodeReview:       c.Rules.RequireCodeReview,
	}
}

// --- Path helpers ---

// StatePath returns the engine state directory for a project root.
func StatePath(projectRoot string) string {
	return filepath.Join(projectRoot, Dir)
}

// FilePath returns the configuration file path for a project root.
func FilePath(projectRoot string) string {
	return filepath.Join(projectRoot, Dir, File)
}

// --- Store ---

// Store abstracts configuration persistence.
type Store interface {
	Load(projectRoot string) (Config, error)
	Save(projectRoot string, cfg Config) error
	Exists(projectRoot string) bool
}

// FileStore reads and writes the configuration as YAML under the project's
// state directory.
type FileStore struct{}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads the configuration. A missing file yields the defaults, not an
// error: a project without explicit configuration runs stock.
func (fs *FileStore) Load(projectRoot string) (Config, error) {
	data, err := os.ReadFile(FilePath(projectRoot))
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration, creating the state directory as needed.
func (fs *FileStore) Save(projectRoot string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(StatePath(projectRoot), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(FilePath(projectRoot), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Exists reports whether an explicit configuration file is present.
func (fs *FileStore) Exists(projectRoot string) bool {
	_, err := os.Stat(FilePath(projectRoot))
	return err == nil
}
