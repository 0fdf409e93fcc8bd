// Package glossary provides the domain-term table used by the ambiguity
// detector to spot overloaded terms: single surface words that mean
// different things to different stakeholder groups.
//
// The table is an explicit provider dependency — loaded once at startup
// from readygate/glossary.yaml when present, falling back to a built-in
// table, and refreshable on demand via Replace.
package glossary

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Meaning is one distinct sense of a surface term.
type Meaning struct {
	Definition string `yaml:"definition" json:"definition"`
	// Stakeholders names the groups that use the term in this sense.
	Stakeholders []string `yaml:"stakeholders" json:"stakeholders"`
	// UsageFrequency is the share of observed usage (0.0-1.0) carried by
	// this sense. Frequencies across a term's meanings should sum to ~1.
	UsageFrequency float64 `yaml:"usage_frequency" json:"usage_frequency"`
}

// Term maps a surface word to its competing meanings.
type Term struct {
	Surface  string    `yaml:"term" json:"term"`
	Meanings []Meaning `yaml:"meanings" json:"meanings"`
}

// Action is the recommended remediation for an overloaded term.
type Action string

const (
	ActionDefineClearly    Action = "define_clearly"
	ActionUseSpecificTerms Action = "use_specific_terms"
	ActionCreateGlossary   Action = "create_glossary"
)

// ConfusionScore estimates (0-100) how likely the term is to be
// misunderstood. More meanings score higher; evenly used meanings score
// higher still, because no single sense dominates enough to be assumed.
func (t Term) ConfusionScore() int {
	n := len(t.Meanings)
	if n < 2 {
		return 0
	}

	base := 25 * (n - 1)
	if base > 60 {
		base = 60
	}

	// Evenness: ratio of the weakest to the strongest usage frequency.
	// 1.0 means perfectly split usage (worst case for confusion).
	minFreq, maxFreq := t.Meanings[0].UsageFrequency, t.Meanings[0].UsageFrequency
	for _, m := range t.Meanings[1:] {
		if m.UsageFrequency < minFreq {
			minFreq = m.UsageFrequency
		}
		if m.UsageFrequency > maxFreq {
			maxFreq = m.UsageFrequency
		}
	}

	evenness := 0.0
	if maxFreq > 0 {
		evenness = minFreq / maxFreq
	}

	score := base + int(40*evenness)
	if score > 100 {
		score = 100
	}
	return score
}

// RecommendedAction picks the remediation by confusion-score band.
func (t Term) RecommendedAction() Action {
	score := t.ConfusionScore()
	switch {
	case score >= 70:
		return ActionCreateGlossary
	case score >= 40:
		return ActionUseSpecificTerms
	default:
		return ActionDefineClearly
	}
}

// Provider is the read interface the ambiguity detector depends on.
type Provider interface {
	// Lookup finds a term by its (case-insensitive) surface form.
	Lookup(surface string) (Term, bool)
	// Terms returns all terms in a stable order.
	Terms() []Term
}

// StaticProvider holds an in-memory term table. Safe for concurrent reads;
// Replace swaps the whole table atomically.
type StaticProvider struct {
	mu    sync.RWMutex
	terms map[string]Term
}

// NewStaticProvider creates a provider from a term list. Surface forms are
// matched case-insensitively; later duplicates overwrite earlier ones.
func NewStaticProvider(terms []Term) *StaticProvider {
	p := &StaticProvider{}
	p.Replace(terms)
	return p
}

// Replace swaps the full term table. Used for on-demand refresh.
func (p *StaticProvider) Replace(terms []Term) {
	m := make(map[string]Term, len(terms))
	for _, t := range terms {
		m[strings.ToLower(t.Surface)] = t
	}
	p.mu.Lock()
	p.terms = m
	p.mu.Unlock()
}

// Lookup finds a term by surface form.
func (p *StaticProvider) Lookup(surface string) (Term, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.terms[strings.ToLower(surface)]
	return t, ok
}

// Terms returns all terms sorted by surface form.
func (p *StaticProvider) Terms() []Term {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Term, 0, len(p.terms))
	for _, t := range p.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Surface < out[j].Surface })
	return out
}

// glossaryFile is the on-disk YAML shape.
type glossaryFile struct {
	Terms []Term `yaml:"terms"`
}

// LoadFile reads a YAML term table from disk.
func LoadFile(path string) (*StaticProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("glossary: reading %s: %w", path, err)
	}

	var f glossaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("glossary: parsing %s: %w", path, err)
	}

	for _, t := range f.Terms {
		if strings.TrimSpace(t.Surface) == "" {
			return nil, fmt.Errorf("glossary: %s contains a term with an empty surface form", path)
		}
	}

	return NewStaticProvider(f.Terms), nil
}

// Default returns the built-in term table: common software-project words
// that routinely carry several meanings across stakeholder groups.
func Default() *StaticProvider {
	return NewStaticProvider([]Term{
		{
			Surface: "user",
			Meanings: []Meaning{
				{Definition: "an end customer interacting through the product UI", Stakeholders: []string{"product", "design"}, UsageFrequency: 0.5},
				{Definition: "an authenticated account record in the database", Stakeholders: []string{"engineering"}, UsageFrequency: 0.3},
				{Definition: "an operator with administrative access", Stakeholders: []string{"support", "operations"}, UsageFrequency: 0.2},
			},
		},
		{
			Surface: "session",
			Meanings: []Meaning{
				{Definition: "an authentication token lifetime", Stakeholders: []string{"engineering", "security"}, UsageFrequency: 0.55},
				{Definition: "a continuous period of product usage in analytics", Stakeholders: []string{"product", "marketing"}, UsageFrequency: 0.45},
			},
		},
		{
			Surface: "client",
			Meanings: []Meaning{
				{Definition: "a paying customer organization", Stakeholders: []string{"sales", "business"}, UsageFrequency: 0.4},
				{Definition: "a program that consumes the API", Stakeholders: []string{"engineering"}, UsageFrequency: 0.6},
			},
		},
		{
			Surface: "service",
			Meanings: []Meaning{
				{Definition: "a deployable backend process", Stakeholders: []string{"engineering", "operations"}, UsageFrequency: 0.5},
				{Definition: "a billable offering sold to customers", Stakeholders: []string{"sales", "finance"}, UsageFrequency: 0.5},
			},
		},
		{
			Surface: "report",
			Meanings: []Meaning{
				{Definition: "a generated document delivered to a customer", Stakeholders: []string{"product"}, UsageFrequency: 0.45},
				{Definition: "an internal analytics dashboard view", Stakeholders: []string{"business"}, UsageFrequency: 0.35},
				{Definition: "an incident or bug submission", Stakeholders: []string{"support"}, UsageFrequency: 0.2},
			},
		},
		{
			Surface: "account",
			Meanings: []Meaning{
				{Definition: "a login identity", Stakeholders: []string{"engineering"}, UsageFrequency: 0.5},
				{Definition: "a billing relationship with an organization", Stakeholders: []string{"finance", "sales"}, UsageFrequency: 0.5},
			},
		},
		{
			Surface: "order",
			Meanings: []Meaning{
				{Definition: "a purchase transaction", Stakeholders: []string{"business"}, UsageFrequency: 0.7},
				{Definition: "a sequence or sort criterion", Stakeholders: []string{"engineering"}, UsageFrequency: 0.3},
			},
		},
	})
}
