// Package session owns the questioning lifecycle for one unit of work:
// phase progression, answer intake, gap tracking, and the confidence loop.
//
// A Session is a plain record; all mutation goes through the Engine. The
// package performs no I/O — persistence, transport, and context inheritance
// are the caller's concern.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/readygate/readygate/internal/scoring"
	"github.com/readygate/readygate/internal/task"
)

// Phase is a stage of the questioning lifecycle. Phases only ever advance.
type Phase string

const (
	PhaseTriage      Phase = "TRIAGE"
	PhaseExploration Phase = "EXPLORATION"
	PhaseValidation  Phase = "VALIDATION"
	PhaseRefinement  Phase = "REFINEMENT"
	PhaseCompletion  Phase = "COMPLETION"
)

// phaseRanks orders phases for monotonicity checks.
var phaseRanks = map[Phase]int{
	PhaseTriage:      1,
	PhaseExploration: 2,
	PhaseValidation:  3,
	PhaseRefinement:  4,
	PhaseCompletion:  5,
}

// Rank returns the phase's position in the lifecycle (1=TRIAGE..5=COMPLETION).
func (p Phase) Rank() int {
	return phaseRanks[p]
}

// Status is a session's processing state.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusPaused    Status = "PAUSED"
	StatusTimedOut  Status = "TIMED_OUT"
)

// Sentinel errors for answer intake.
var (
	// ErrSessionTerminal rejects operations on a completed or timed-out
	// session. Terminal states are non-recoverable; start a new session.
	ErrSessionTerminal = errors.New("session: session is terminal")
	// ErrSessionPaused rejects answers while a session is paused.
	// Recoverable: resume first.
	ErrSessionPaused = errors.New("session: session is paused")
	// ErrUnknownQuestion rejects an answer whose question ID does not match
	// an open question of this session.
	ErrUnknownQuestion = errors.New("session: unknown or already-answered question")
	// ErrConfidenceRegression reports a confidence drop without a new
	// critical gap to explain it. This is a scoring defect, not a caller
	// error; the session state is left unmodified.
	ErrConfidenceRegression = errors.New("session: confidence regressed without a new critical gap")
	// ErrEmptyDescription rejects a start request with no task description.
	ErrEmptyDescription = errors.New("session: task description is required")
)

// Session is the full state of one questioning lifecycle.
type Session struct {
	ID      string           `json:"id"`
	Context task.TaskContext `json:"context"`
	Phase   Phase            `json:"phase"`
	Status  Status           `json:"status"`
	// Confidence is the current 0-100 understanding estimate.
	Confidence float64 `json:"confidence"`
	// Target is the confidence this session must reach to complete.
	Target    float64         `json:"target"`
	Questions []task.Question `json:"questions"`
	Answers   []task.Answer   `json:"answers"`
	Gaps      []task.Gap      `json:"gaps"`
	EdgeCases []task.EdgeCase `json:"edge_cases"`
	// History records the confidence value after each round, oldest first.
	History    []float64           `json:"history"`
	Assessment *scoring.Assessment `json:"assessment,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// IsTerminal reports whether the session accepts no further processing.
// PAUSED is not terminal: a paused session can be resumed.
func (s *Session) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusTimedOut
}

// OpenQuestions returns the questions that have not been answered yet,
// in ask order.
func (s *Session) OpenQuestions() []task.Question {
	answered := map[string]bool{}
	for _, a := range s.Answers {
		answered[a.QuestionID] = true
	}
	var open []task.Question
	for _, q := range s.Questions {
		if !answered[q.ID] {
			open = append(open, q)
		}
	}
	return open
}

// OpenGaps returns the gaps that are still unresolved.
func (s *Session) OpenGaps() []task.Gap {
	var open []task.Gap
	for _, g := range s.Gaps {
		if !g.Closed {
			open = append(open, g)
		}
	}
	return open
}

func (s *Session) question(id string) (task.Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return task.Question{}, false
}

func (s *Session) answered(questionID string) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// Stubbed in tests.
var (
	timeNow = time.Now
	newID   = uuid.NewString
)
