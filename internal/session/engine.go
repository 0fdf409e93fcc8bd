package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/readygate/readygate/internal/ambiguity"
	"github.com/readygate/readygate/internal/scoring"
	"github.com/readygate/readygate/internal/task"
)

// Options are the tunable parameters of the questioning lifecycle. The
// defaults mirror the stock configuration; callers normally build Options
// from the loaded config rather than literals.
type Options struct {
	// TargetConfidence is the default completion threshold when a start
	// request does not supply one.
	TargetConfidence float64
	// ExplorationThreshold is the confidence above which a session leaves
	// EXPLORATION.
	ExplorationThreshold float64
	// RefinementThreshold is the confidence above which a session leaves
	// VALIDATION.
	RefinementThreshold float64
	// MaxAnswers forces a session out of EXPLORATION after this many
	// answers, regardless of confidence.
	MaxAnswers int
	// MinimalOpenGaps is the open-gap count at or below which VALIDATION
	// may advance without reaching RefinementThreshold.
	MinimalOpenGaps int
	// TriageQuestions is the exact number of first-round questions.
	TriageQuestions int
	// MaxNewQuestions caps the questions generated per answer round.
	MaxNewQuestions int
	// Timeout is the wall-clock ceiling for a session's lifetime.
	Timeout time.Duration
}

// DefaultOptions returns the stock lifecycle parameters.
func DefaultOptions() Options {
	return Options{
		TargetConfidence:     85,
		ExplorationThreshold: 60,
		RefinementThreshold:  75,
		MaxAnswers:           20,
		MinimalOpenGaps:      2,
		TriageQuestions:      5,
		MaxNewQuestions:      10,
		Timeout:              8 * time.Hour,
	}
}

// PatternSource counts prior sessions similar to a task description. The
// persistence layer implements this; a nil source means no history.
type PatternSource interface {
	CountSimilar(description string) (int, error)
}

// Engine drives sessions through the questioning lifecycle. Safe for use
// across independent sessions; a single session's calls must be sequential.
type Engine struct {
	detector *ambiguity.Detector
	patterns PatternSource
	opts     Options
}

// NewEngine creates an Engine. detector must not be nil; patterns may be.
func NewEngine(detector *ambiguity.Detector, patterns PatternSource, opts Options) *Engine {
	return &Engine{detector: detector, patterns: patterns, opts: opts}
}

// Start opens a session for a task context. target <= 0 selects the
// configured default. If the initial confidence already meets the target,
// the session short-circuits to COMPLETION with no questions generated.
func (e *Engine) Start(tc task.TaskContext, target float64) (*Session, error) {
	if strings.TrimSpace(tc.Description) == "" {
		return nil, ErrEmptyDescription
	}
	if target <= 0 {
		target = e.opts.TargetConfidence
	}

	now := timeNow().UTC()
	s := &Session{
		ID:        newID(),
		Context:   tc,
		Target:    target,
		StartedAt: now,
		UpdatedAt: now,
	}

	initial := scoring.InitialConfidence(tc)
	s.Confidence = initial
	s.History = []float64{initial}

	if initial >= target {
		s.Phase = PhaseCompletion
		s.Status = StatusCompleted
		return s, nil
	}

	s.Phase = PhaseTriage
	s.Status = StatusActive
	for _, qt := range triagePlan(tc, e.opts.TriageQuestions) {
		s.Questions = append(s.Questions, e.newQuestion(s, qt, nil, now))
	}
	return s, nil
}

// ProcessAnswer records an answer and runs one full round: detection,
// scoring, phase evaluation, and follow-up generation. It returns the
// questions generated by this round.
//
// A session past its timeout transitions to TIMED_OUT and the answer is
// dropped; this is a status for the caller to branch on, not an error.
func (e *Engine) ProcessAnswer(s *Session, questionID, text string, data map[string]any) ([]task.Question, error) {
	if s.IsTerminal() {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionTerminal, s.ID, s.Status)
	}
	if s.Status == StatusPaused {
		return nil, fmt.Errorf("%w: session %s", ErrSessionPaused, s.ID)
	}

	now := timeNow().UTC()
	if now.Sub(s.StartedAt) > e.opts.Timeout {
		s.Status = StatusTimedOut
		s.UpdatedAt = now
		return nil, nil
	}

	q, ok := s.question(questionID)
	if !ok || s.answered(questionID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}

	answer := task.Answer{
		QuestionID:     questionID,
		Text:           text,
		Data:           data,
		Confidence:     answerConfidence(text),
		AnsweredAt:     now,
		Clarifications: extractClarifications(text),
		Assumptions:    extractAssumptions(text),
	}

	// Detection runs over the whole statement set so contradictions with
	// earlier answers surface, not just defects local to this answer.
	report := e.detector.Analyze(e.statementSet(s, text))

	// The round's mutations are staged on copies; nothing touches the
	// session until the score is accepted.
	gaps := append([]task.Gap(nil), s.Gaps...)
	edges := append([]task.EdgeCase(nil), s.EdgeCases...)
	gaps, newGaps := mergeGaps(gaps, report.Gaps, string(s.Phase))
	closeAddressedGaps(gaps, edges, q, questionID)
	edges = recordEdgeCases(edges, q, questionID, text)

	answers := append(append([]task.Answer{}, s.Answers...), answer)
	assessment, err := scoring.NewScorer(s.Target).Assess(scoring.Input{
		Context:        s.Context,
		Answers:        answers,
		Gaps:           gaps,
		EdgeCases:      edges,
		History:        s.History,
		PatternMatches: e.patternMatches(s),
	})
	if err != nil {
		return nil, err
	}

	// The evidence-based score is monotone across rounds unless a new
	// critical gap appeared; a drop between assessed rounds is a scoring
	// defect, never committed.
	if s.Assessment != nil && assessment.Confidence < s.Assessment.Confidence && !hasNewCritical(newGaps) {
		return nil, fmt.Errorf("%w: %.2f -> %.2f", ErrConfidenceRegression,
			s.Assessment.Confidence, assessment.Confidence)
	}

	// Early rounds can assess below the initial heuristic estimate while
	// evidence is still thin. Confidence holds rather than regresses, until
	// a new critical gap legitimately pulls it down.
	confidence := assessment.Confidence
	if confidence < s.Confidence && !hasNewCritical(newGaps) {
		confidence = s.Confidence
	}

	s.Answers = answers
	s.Gaps = gaps
	s.EdgeCases = edges
	s.Confidence = confidence
	s.History = append(s.History, confidence)
	s.Assessment = &assessment
	s.UpdatedAt = now

	e.advancePhase(s)
	if s.Status != StatusActive {
		return nil, nil
	}

	newQuestions := e.generateRound(s, q, text, now)
	for _, nq := range newQuestions {
		if nq.Category == categoryFollowUp {
			answer.FollowUpIDs = append(answer.FollowUpIDs, nq.ID)
		}
	}
	s.Answers[len(s.Answers)-1] = answer
	return newQuestions, nil
}

// Pause moves an active session to PAUSED.
func (e *Engine) Pause(s *Session) error {
	if s.IsTerminal() {
		return fmt.Errorf("%w: session %s is %s", ErrSessionTerminal, s.ID, s.Status)
	}
	s.Status = StatusPaused
	s.UpdatedAt = timeNow().UTC()
	return nil
}

// Resume moves a paused session back to ACTIVE.
func (e *Engine) Resume(s *Session) error {
	if s.IsTerminal() {
		return fmt.Errorf("%w: session %s is %s", ErrSessionTerminal, s.ID, s.Status)
	}
	s.Status = StatusActive
	s.UpdatedAt = timeNow().UTC()
	return nil
}

// --- Round internals ---

// statementSet is everything the detector should cross-check: the task
// description, every prior answer, and the incoming text.
func (e *Engine) statementSet(s *Session, incoming string) []string {
	stmts := []string{s.Context.Description}
	for _, a := range s.Answers {
		stmts = append(stmts, a.Text)
	}
	return append(stmts, incoming)
}

// mergeGaps appends detector gaps the set has not seen before,
// re-identified in session scope. Returns the grown slice and the newly
// added gaps.
func mergeGaps(gaps []task.Gap, detected []task.Gap, phase string) ([]task.Gap, []task.Gap) {
	known := map[string]bool{}
	for _, g := range gaps {
		known[g.Description] = true
	}
	var added []task.Gap
	for _, g := range detected {
		if known[g.Description] {
			continue
		}
		known[g.Description] = true
		g.ID = fmt.Sprintf("GAP-%03d", len(gaps)+1)
		g.Phase = phase
		gaps = append(gaps, g)
		added = append(added, g)
	}
	return gaps, added
}

// closeAddressedGaps closes every gap the answered question was targeting
// and marks its edge-case targets explored. Mutates the slices in place.
func closeAddressedGaps(gaps []task.Gap, edges []task.EdgeCase, q task.Question, questionID string) {
	targets := map[string]bool{}
	for _, id := range q.AddressesGaps {
		targets[id] = true
	}
	if len(targets) == 0 {
		return
	}
	for i := range gaps {
		if targets[gaps[i].ID] && !gaps[i].Closed {
			gaps[i].Closed = true
			gaps[i].ClosedBy = questionID
		}
	}
	for i := range edges {
		if targets[edges[i].ID] {
			edges[i].Explored = true
		}
	}
}

// recordEdgeCases adds boundary conditions surfaced by the answer. An
// edge-case question's own answer marks its targets explored via
// closeAddressedGaps; conditions named in any answer are recorded here.
func recordEdgeCases(edges []task.EdgeCase, q task.Question, questionID, text string) []task.EdgeCase {
	known := map[string]bool{}
	for _, ec := range edges {
		known[ec.Description] = true
	}
	explored := q.Type == task.QuestionEdgeCase
	for _, ec := range extractEdgeCases(text, questionID) {
		if known[ec.Description] {
			continue
		}
		known[ec.Description] = true
		ec.ID = fmt.Sprintf("EC-%03d", len(edges)+1)
		// Naming a condition while answering an edge-case question counts
		// as exploring it.
		ec.Explored = explored
		edges = append(edges, ec)
	}
	return edges
}

func (e *Engine) patternMatches(s *Session) int {
	if e.patterns == nil {
		return 0
	}
	n, err := e.patterns.CountSimilar(s.Context.Description)
	if err != nil {
		// History is advisory; scoring proceeds without it.
		return 0
	}
	return n
}

func hasNewCritical(gaps []task.Gap) bool {
	for _, g := range gaps {
		if g.Severity == task.SeverityCritical {
			return true
		}
	}
	return false
}

// advancePhase walks the session forward through every transition its
// current state satisfies. Phases never move backward.
func (e *Engine) advancePhase(s *Session) {
	for {
		switch s.Phase {
		case PhaseTriage:
			if len(s.Answers) < e.opts.TriageQuestions {
				return
			}
			s.Phase = PhaseExploration
		case PhaseExploration:
			if s.Confidence <= e.opts.ExplorationThreshold && len(s.Answers) <= e.opts.MaxAnswers {
				return
			}
			s.Phase = PhaseValidation
		case PhaseValidation:
			if s.Confidence <= e.opts.RefinementThreshold && len(s.OpenGaps()) > e.opts.MinimalOpenGaps {
				return
			}
			s.Phase = PhaseRefinement
		case PhaseRefinement:
			if s.Confidence < s.Target {
				return
			}
			s.Phase = PhaseCompletion
			s.Status = StatusCompleted
		default:
			return
		}
	}
}

// --- New-question generation ---

const (
	categoryFollowUp = "follow_up"
	categoryGap      = "gap"
	categoryEdgeCase = "edge_case"
	categoryTriage   = "triage"
	categoryPhase    = "phase"
)

// generateRound builds this round's new questions, capped at
// MaxNewQuestions and prioritized: answer-triggered follow-ups, critical
// gaps (max 3), high gaps (max 2), unexplored edge cases, then
// phase-specific questions.
func (e *Engine) generateRound(s *Session, answeredQ task.Question, answerText string, now time.Time) []task.Question {
	var out []task.Question
	budget := e.opts.MaxNewQuestions

	add := func(q task.Question) {
		s.Questions = append(s.Questions, q)
		out = append(out, q)
		budget--
	}

	// Follow-ups from the answered question's own trigger rules.
	lower := strings.ToLower(answerText)
	for _, rule := range answeredQ.FollowUps {
		if budget <= 0 {
			return out
		}
		if !strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			continue
		}
		q := e.newQuestion(s, rule.Type, nil, now)
		q.Text = rule.Question
		q.Category = categoryFollowUp
		q.Reasoning = fmt.Sprintf("answer to %s mentioned %q", answeredQ.ID, rule.Keyword)
		add(q)
	}

	// Gap-driven questions, critical first. Gaps already targeted by an
	// earlier question are skipped.
	targeted := map[string]bool{}
	for _, q := range s.Questions {
		for _, id := range q.AddressesGaps {
			targeted[id] = true
		}
	}
	criticals, highs := 0, 0
	for _, g := range s.OpenGaps() {
		if budget <= 0 {
			return out
		}
		if targeted[g.ID] {
			continue
		}
		switch g.Severity {
		case task.SeverityCritical:
			if criticals >= 3 {
				continue
			}
			criticals++
		case task.SeverityHigh:
			if highs >= 2 {
				continue
			}
			highs++
		default:
			continue
		}
		q := e.newQuestion(s, task.QuestionClarification, []string{g.ID}, now)
		if len(g.Questions) > 0 {
			q.Text = g.Questions[0]
		}
		q.Category = categoryGap
		q.Priority = string(g.Severity)
		q.Reasoning = "targets open gap: " + g.Description
		add(q)
	}

	// Unexplored edge cases.
	for _, ec := range s.EdgeCases {
		if budget <= 0 {
			return out
		}
		if ec.Explored || targeted[ec.ID] {
			continue
		}
		q := e.newQuestion(s, task.QuestionEdgeCase, []string{ec.ID}, now)
		q.Text = fmt.Sprintf("What should happen in the case of %s?", ec.Description)
		q.Category = categoryEdgeCase
		q.Reasoning = "edge case identified but not yet explored"
		add(q)
	}

	// Phase-specific questions fill the remainder, skipping types already
	// asked this session.
	asked := map[task.QuestionType]bool{}
	for _, q := range s.Questions {
		asked[q.Type] = true
	}
	for _, qt := range phaseQuestionTypes[s.Phase] {
		if budget <= 0 {
			return out
		}
		if asked[qt] {
			continue
		}
		asked[qt] = true
		q := e.newQuestion(s, qt, nil, now)
		q.Category = categoryPhase
		add(q)
	}
	return out
}

// newQuestion builds a question of the given type. The ID is derived from
// the session's question count, so the caller must append the question
// before building the next one.
func (e *Engine) newQuestion(s *Session, qt task.QuestionType, addresses []string, now time.Time) task.Question {
	spec := generators[qt](s.Context)
	return task.Question{
		ID:             fmt.Sprintf("Q-%03d", len(s.Questions)+1),
		Text:           spec.text,
		Type:           qt,
		Category:       categoryTriage,
		Priority:       spec.priority,
		Reasoning:      spec.reasoning,
		ExpectedAnswer: spec.expected,
		FollowUps:      spec.followUps,
		AddressesGaps:  addresses,
		Phase:          string(s.Phase),
		AskedAt:        now,
	}
}
