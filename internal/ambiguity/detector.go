package ambiguity

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/readygate/readygate/internal/glossary"
	"github.com/readygate/readygate/internal/task"
)

// Report is the full analysis of a requirement-statement set.
type Report struct {
	Statements     []string                `json:"statements"`
	Ambiguities    []Ambiguity             `json:"ambiguities"`
	Contradictions []Contradiction         `json:"contradictions"`
	Gaps           []task.Gap              `json:"gaps"`
	Questions      []ClarificationQuestion `json:"questions"`
	// ClarityScore = max(0, 100 - mean ambiguity score). 100 when clean.
	ClarityScore int `json:"clarity_score"`
}

// Detector runs the four statement-level detectors plus the standalone
// completeness and subjectivity checks.
type Detector struct {
	glossary glossary.Provider
}

// NewDetector creates a Detector. The glossary provider feeds the
// overloaded-term table; it must not be nil.
func NewDetector(g glossary.Provider) *Detector {
	return &Detector{glossary: g}
}

// Analyze runs every detector over the statement set and aggregates the
// findings into a report. Deterministic: finding IDs are assigned in
// statement order, so identical input yields an identical report.
func (d *Detector) Analyze(statements []string) *Report {
	r := &Report{Statements: statements}

	var ambSeq, conSeq, gapSeq int
	nextAmbID := func() string { ambSeq++; return fmt.Sprintf("AMB-%03d", ambSeq) }
	nextConID := func() string { conSeq++; return fmt.Sprintf("CON-%03d", conSeq) }
	nextGapID := func() string { gapSeq++; return fmt.Sprintf("GAP-%03d", gapSeq) }

	for i, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}

		findings := d.analyzeStatement(i, stmt)
		for f := range findings {
			findings[f].ID = nextAmbID()
		}
		r.Ambiguities = append(r.Ambiguities, findings...)

		// Contradictions: compare against every later statement only, so
		// each pair is reported once.
		for j := i + 1; j < len(statements); j++ {
			if c, ok := detectContradiction(i, stmt, j, statements[j]); ok {
				c.ID = nextConID()
				r.Contradictions = append(r.Contradictions, c)
			}
		}
	}

	// Contradictions and missing context also represent absent information:
	// surface them as gaps for the session to track and close.
	for _, a := range r.Ambiguities {
		if a.Type != TypeMissingContext && a.Type != TypeIncompleteRequirement {
			continue
		}
		r.Gaps = append(r.Gaps, task.Gap{
			ID:          nextGapID(),
			Category:    gapCategory(a),
			Description: a.Description,
			Severity:    task.Severity(a.Severity),
			Questions:   a.SuggestedQuestions,
			Impact:      "requirement cannot be implemented as stated without this information",
		})
	}
	for _, c := range r.Contradictions {
		r.Gaps = append(r.Gaps, task.Gap{
			ID:          nextGapID(),
			Category:    "contradiction",
			Description: fmt.Sprintf("statements %d and %d conflict (%q vs %q)", c.StatementA+1, c.StatementB+1, c.TermA, c.TermB),
			Severity:    task.SeverityCritical,
			Questions:   []string{fmt.Sprintf("Which takes precedence: %q or %q? A stakeholder decision is required.", c.TermA, c.TermB)},
			Impact:      "conflicting requirements cannot both be honored",
		})
	}

	r.Questions = buildClarificationQuestions(r.Ambiguities)
	r.ClarityScore = clarityScore(r.Ambiguities)
	return r
}

// analyzeStatement runs all per-statement detectors. IDs are assigned by
// the caller.
func (d *Detector) analyzeStatement(idx int, stmt string) []Ambiguity {
	var out []Ambiguity
	out = append(out, detectVagueTerms(idx, stmt)...)
	out = append(out, d.detectOverloadedTerms(idx, stmt)...)
	out = append(out, detectMissingContext(idx, stmt)...)
	out = append(out, detectIncomplete(idx, stmt)...)
	out = append(out, detectSubjectiveCriteria(idx, stmt)...)
	out = append(out, d.detectUndefinedRelationships(idx, stmt)...)
	return out
}

// clarityScore aggregates ambiguity scores into a 0-100 clarity value.
func clarityScore(ambiguities []Ambiguity) int {
	if len(ambiguities) == 0 {
		return 100
	}
	total := 0
	for _, a := range ambiguities {
		total += a.Score
	}
	score := 100 - total/len(ambiguities)
	if score < 0 {
		score = 0
	}
	return score
}

// --- Vague terms ---

func detectVagueTerms(idx int, stmt string) []Ambiguity {
	words := tokenize(stmt)
	quantified := hasNumericQualifier(stmt)

	var out []Ambiguity
	seen := map[string]bool{}
	for _, w := range words {
		p, ok := vagueTerms[w]
		if !ok || seen[w] {
			continue
		}
		seen[w] = true

		severity, score := p.severity, p.score
		if quantified {
			// A number nearby suggests the author did quantify; keep the
			// finding but soften it.
			severity = downgrade(severity)
			score -= 20
			if score < 10 {
				score = 10
			}
		}

		out = append(out, Ambiguity{
			Type:        TypeVagueTerm,
			Severity:    severity,
			Location:    Location{StatementIndex: idx, Excerpt: w},
			Score:       score,
			Description: fmt.Sprintf("%q is a subjective %s term with no measurable definition", w, p.category),
			SuggestedQuestions: []string{
				fmt.Sprintf("What specific criteria define %q in this context?", w),
				fmt.Sprintf("What measurable threshold would satisfy %q?", w),
				fmt.Sprintf("Who decides whether %q has been achieved, and how?", w),
			},
			SuggestedResolutions: []string{
				fmt.Sprintf("replace %q with a numeric target or a named, testable criterion", w),
			},
			Status: StatusDetected,
		})
	}
	return out
}

// --- Overloaded terms ---

func (d *Detector) detectOverloadedTerms(idx int, stmt string) []Ambiguity {
	var out []Ambiguity
	seen := map[string]bool{}
	for _, w := range tokenize(stmt) {
		term, ok := d.glossary.Lookup(w)
		if !ok || len(term.Meanings) < 2 || seen[w] {
			continue
		}
		seen[w] = true

		confusion := term.ConfusionScore()
		groups := stakeholderGroups(term)

		out = append(out, Ambiguity{
			Type:     TypeOverloadedTerm,
			Severity: severityForScore(confusion),
			Location: Location{StatementIndex: idx, Excerpt: term.Surface},
			Score:    confusion,
			Description: fmt.Sprintf("%q carries %d distinct meanings across %s; recommended action: %s",
				term.Surface, len(term.Meanings), strings.Join(groups, ", "), term.RecommendedAction()),
			SuggestedQuestions: []string{
				fmt.Sprintf("Which meaning of %q applies here: %s?", term.Surface, meaningList(term)),
				fmt.Sprintf("Should %q be split into separate terms per stakeholder group?", term.Surface),
			},
			SuggestedResolutions: []string{string(term.RecommendedAction())},
			Status:               StatusDetected,
		})
	}
	return out
}

func stakeholderGroups(t glossary.Term) []string {
	var groups []string
	seen := map[string]bool{}
	for _, m := range t.Meanings {
		for _, s := range m.Stakeholders {
			if !seen[s] {
				seen[s] = true
				groups = append(groups, s)
			}
		}
	}
	return groups
}

func meaningList(t glossary.Term) string {
	defs := make([]string, len(t.Meanings))
	for i, m := range t.Meanings {
		defs[i] = m.Definition
	}
	return strings.Join(defs, " / ")
}

// --- Missing context ---

// detectMissingContext flags a category when its topical keywords appear
// but the statement lacks specificity signals: concrete numbers, proper
// nouns, and when/where/how clauses.
func detectMissingContext(idx int, stmt string) []Ambiguity {
	words := tokenize(stmt)
	wordSet := map[string]bool{}
	for _, w := range words {
		wordSet[w] = true
	}

	signals := specificitySignals(stmt)

	var out []Ambiguity
	for _, cat := range contextCategories {
		matched := ""
		for _, kw := range cat.keywords {
			if wordSet[kw] {
				matched = kw
				break
			}
		}
		if matched == "" {
			continue
		}
		// Enough concrete detail: not a finding.
		if signals >= 2 && len(stmt) >= 60 {
			continue
		}

		out = append(out, Ambiguity{
			Type:        TypeMissingContext,
			Severity:    "high",
			Location:    Location{StatementIndex: idx, Excerpt: matched},
			Score:       60,
			Description: fmt.Sprintf("statement touches %s (%q) without concrete detail", cat.name, matched),
			SuggestedQuestions: []string{
				cat.question,
				fmt.Sprintf("Can you give a concrete example involving %q?", matched),
			},
			Status: StatusDetected,
		})
	}
	return out
}

// specificitySignals counts concrete-detail markers: digits, capitalized
// proper nouns after the first word, and when/where/how clauses.
func specificitySignals(stmt string) int {
	n := 0
	if strings.ContainsAny(stmt, "0123456789") {
		n++
	}

	fields := strings.Fields(stmt)
	for i, f := range fields {
		if i == 0 {
			continue
		}
		r := []rune(f)
		if len(r) > 1 && unicode.IsUpper(r[0]) {
			n++
			break
		}
	}

	lower := strings.ToLower(stmt)
	for _, clause := range []string{"when ", "where ", "how "} {
		if strings.Contains(lower, clause) {
			n++
			break
		}
	}
	return n
}

// --- Contradictions ---

// detectContradiction compares two statements against the antagonist table.
// A pair matches only when the statements also share at least one subject
// keyword, so unrelated statements don't collide.
func detectContradiction(i int, a string, j int, b string) (Contradiction, bool) {
	aWords := tokenSet(a)
	bWords := tokenSet(b)

	if !shareSubject(aWords, bWords) {
		return Contradiction{}, false
	}

	for _, pair := range antagonists {
		if termA, termB, ok := matchPair(aWords, bWords, pair); ok {
			return Contradiction{
				Type:       "direct",
				Severity:   "major",
				StatementA: i,
				StatementB: j,
				TermA:      termA,
				TermB:      termB,
				Resolution: "stakeholder-adjudicated precedence: decide which statement wins and rewrite the loser",
			}, true
		}
	}
	return Contradiction{}, false
}

func matchPair(aWords, bWords map[string]bool, pair antagonistPair) (string, string, bool) {
	// Check left-in-A vs right-in-B, then the mirror.
	if la, ok := firstMatch(aWords, pair.left); ok {
		if rb, ok := firstMatch(bWords, pair.right); ok {
			return la, rb, true
		}
	}
	if ra, ok := firstMatch(aWords, pair.right); ok {
		if lb, ok := firstMatch(bWords, pair.left); ok {
			return ra, lb, true
		}
	}
	return "", "", false
}

func firstMatch(words map[string]bool, candidates []string) (string, bool) {
	for _, c := range candidates {
		if words[c] {
			return c, true
		}
	}
	return "", false
}

// shareSubject reports whether the two statements mention at least one
// common non-stopword keyword of 3+ characters.
func shareSubject(a, b map[string]bool) bool {
	for w := range a {
		if len(w) >= 3 && !stopWords[w] && b[w] {
			return true
		}
	}
	return false
}

// --- Incomplete requirements ---

const minStatementLen = 15

func detectIncomplete(idx int, stmt string) []Ambiguity {
	trimmed := strings.TrimSpace(stmt)
	words := tokenize(trimmed)

	var missing []string
	if len(trimmed) < minStatementLen {
		missing = append(missing, "too short to be a complete requirement")
	} else {
		hasActor := false
		hasVerb := false
		for _, w := range words {
			if actorNouns[w] {
				hasActor = true
			}
			if actionVerbs[w] {
				hasVerb = true
			}
		}
		if !hasActor {
			missing = append(missing, "no actor (who performs or receives the behavior)")
		}
		if !hasVerb {
			missing = append(missing, "no action verb (what actually happens)")
		}
	}
	if len(missing) == 0 {
		return nil
	}

	return []Ambiguity{{
		Type:        TypeIncompleteRequirement,
		Severity:    "high",
		Location:    Location{StatementIndex: idx, Excerpt: excerpt(trimmed)},
		Score:       65,
		Description: "incomplete requirement: " + strings.Join(missing, "; "),
		SuggestedQuestions: []string{
			"Who performs this action, and on what?",
			"What exactly should happen, stated as actor-action-object?",
		},
		Status: StatusDetected,
	}}
}

// --- Subjective criteria ---

func detectSubjectiveCriteria(idx int, stmt string) []Ambiguity {
	var out []Ambiguity
	for _, w := range tokenize(stmt) {
		if !subjectiveCriteria[w] {
			continue
		}
		out = append(out, Ambiguity{
			Type:        TypeSubjectiveCriteria,
			Severity:    "medium",
			Location:    Location{StatementIndex: idx, Excerpt: w},
			Score:       50,
			Description: fmt.Sprintf("%q is not a measurable acceptance criterion", w),
			SuggestedQuestions: []string{
				fmt.Sprintf("What observable behavior would prove the result is %q?", w),
				"Can this criterion be restated as something a test could check?",
			},
			Status: StatusDetected,
		})
	}
	return out
}

// --- Undefined relationships ---

// detectUndefinedRelationships flags statements that mention two or more
// glossary terms without any relationship verb connecting them.
func (d *Detector) detectUndefinedRelationships(idx int, stmt string) []Ambiguity {
	var mentioned []string
	seen := map[string]bool{}
	for _, w := range tokenize(stmt) {
		if t, ok := d.glossary.Lookup(w); ok && !seen[t.Surface] {
			seen[t.Surface] = true
			mentioned = append(mentioned, t.Surface)
		}
	}
	if len(mentioned) < 2 {
		return nil
	}

	lower := strings.ToLower(stmt)
	for _, v := range relationVerbs {
		if strings.Contains(lower, " "+v+" ") {
			return nil
		}
	}

	return []Ambiguity{{
		Type:        TypeUndefinedRelationship,
		Severity:    "low",
		Location:    Location{StatementIndex: idx, Excerpt: strings.Join(mentioned, ", ")},
		Score:       35,
		Description: fmt.Sprintf("entities %s appear together but their relationship is not stated", strings.Join(mentioned, " and ")),
		SuggestedQuestions: []string{
			fmt.Sprintf("How do %s relate to each other (ownership, cardinality, lifecycle)?", strings.Join(mentioned, " and ")),
		},
		Status: StatusDetected,
	}}
}

// --- Shared helpers ---

// tokenize lowercases and splits a statement into bare words, stripping
// punctuation but keeping internal hyphens ("user-friendly").
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range tokenize(s) {
		set[w] = true
	}
	return set
}

// hasNumericQualifier reports whether the statement contains a digit —
// a crude but effective signal that the author quantified their claim.
func hasNumericQualifier(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func downgrade(severity string) string {
	switch severity {
	case "critical":
		return "high"
	case "high":
		return "medium"
	case "medium":
		return "low"
	default:
		return "low"
	}
}

func severityForScore(score int) string {
	switch {
	case score >= 75:
		return "critical"
	case score >= 55:
		return "high"
	case score >= 35:
		return "medium"
	default:
		return "low"
	}
}

func gapCategory(a Ambiguity) string {
	if a.Type == TypeIncompleteRequirement {
		return "incomplete_requirement"
	}
	// Missing-context descriptions embed the category name.
	for _, cat := range contextCategories {
		if strings.Contains(a.Description, cat.name) {
			return cat.name
		}
	}
	return "missing_context"
}

func excerpt(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
