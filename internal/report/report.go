// Package report renders session audit and rule-compliance reports as
// markdown from embedded templates.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
	"time"

	"github.com/readygate/readygate/internal/rules"
	"github.com/readygate/readygate/internal/session"
	"github.com/readygate/readygate/internal/task"
)

//go:embed templates/*.md.tmpl
var templateFS embed.FS

// Template identifies one embedded report template.
type Template string

const (
	SessionReport    Template = "session_report"
	ComplianceReport Template = "compliance_report"
)

// Renderer renders reports from the embedded template set.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("report: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template against data.
func (r *Renderer) Render(t Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(t)+".md.tmpl", data); err != nil {
		return "", fmt.Errorf("report: render %s: %w", t, err)
	}
	return buf.String(), nil
}

// --- Session report ---

// SessionReportData is the view model for the session audit report.
type SessionReportData struct {
	ID             string
	Description    string
	Phase          string
	Status         string
	Confidence     float64
	Target         float64
	Threshold      float64
	Risk           string
	Trend          string
	Recommendation string

	AnsweredCount int
	OpenQuestions []task.Question
	OpenGaps      []task.Gap
	ClosedGaps    []task.Gap
	EdgeCases     []task.EdgeCase
	History       []float64

	StartedAt string
	UpdatedAt string
}

// BuildSessionReport derives the report view from a session.
func BuildSessionReport(s *session.Session) SessionReportData {
	d := SessionReportData{
		ID:            s.ID,
		Description:   s.Context.Description,
		Phase:         string(s.Phase),
		Status:        string(s.Status),
		Confidence:    s.Confidence,
		Target:        s.Target,
		AnsweredCount: len(s.Answers),
		OpenQuestions: s.OpenQuestions(),
		EdgeCases:     s.EdgeCases,
		History:       s.History,
		StartedAt:     s.StartedAt.Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
	if s.Assessment != nil {
		d.Threshold = s.Assessment.Threshold
		d.Risk = s.Assessment.Risk
		d.Trend = s.Assessment.Trend
		d.Recommendation = s.Assessment.Recommendation
	}
	for _, g := range s.Gaps {
		if g.Closed {
			d.ClosedGaps = append(d.ClosedGaps, g)
		} else {
			d.OpenGaps = append(d.OpenGaps, g)
		}
	}
	return d
}

// --- Compliance report ---

// ComplianceReportData is the view model for the rule-compliance report.
type ComplianceReportData struct {
	SessionID   string
	GeneratedAt string
	Compliant   bool
	Violations  []rules.Violation
	Blocking    []rules.Violation
}

// BuildComplianceReport derives the compliance view from an evaluation.
func BuildComplianceReport(sessionID string, res rules.Result, at time.Time) ComplianceReportData {
	return ComplianceReportData{
		SessionID:   sessionID,
		GeneratedAt: at.Format(time.RFC3339),
		Compliant:   res.Compliant,
		Violations:  res.Violations,
		Blocking:    rules.Blocking(res.Violations),
	}
}
