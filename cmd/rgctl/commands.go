package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/readygate/readygate/internal/ambiguity"
	"github.com/readygate/readygate/internal/report"
	"github.com/readygate/readygate/internal/rules"
	"github.com/readygate/readygate/internal/session"
	"github.com/readygate/readygate/internal/task"
)

func newStartCmd() *cobra.Command {
	var (
		business     string
		technical    string
		domain       string
		complexity   string
		stakeholders []string
		target       float64
	)
	cmd := &cobra.Command{
		Use:   "start <description>",
		Short: "Start a questioning session for a unit of work",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			sess, err := e.engine().Start(task.TaskContext{
				Description:      strings.Join(args, " "),
				BusinessContext:  business,
				TechnicalContext: technical,
				Domain:           domain,
				Complexity:       complexity,
				Stakeholders:     stakeholders,
			}, target)
			if err != nil {
				return err
			}
			if err := e.db.SaveSession(sess); err != nil {
				return err
			}

			fmt.Printf("Session %s started.\n", sess.ID)
			fmt.Printf("Initial confidence: %.1f%% (target %.1f%%)\n", sess.Confidence, sess.Target)
			if sess.Status == session.StatusCompleted {
				fmt.Println("Initial confidence already meets the target: session COMPLETE.")
				return nil
			}
			fmt.Printf("Phase: %s\n\nTriage questions:\n", sess.Phase)
			for _, q := range sess.Questions {
				fmt.Printf("  [%s] (%s) %s\n", q.ID, q.Type, q.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&business, "business", "", "business context")
	cmd.Flags().StringVar(&technical, "technical", "", "technical context")
	cmd.Flags().StringVar(&domain, "domain", "", "problem domain")
	cmd.Flags().StringVar(&complexity, "complexity", "", "low, medium, or high")
	cmd.Flags().StringSliceVar(&stakeholders, "stakeholder", nil, "stakeholder role (repeatable)")
	cmd.Flags().Float64Var(&target, "target", 0, "confidence target (default from config)")
	return cmd
}

func newAnswerCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "answer <question-id> <answer text>",
		Short: "Answer an open question and run a scoring round",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			sess, err := e.resolveSession(sessionID)
			if err != nil {
				return err
			}
			newQuestions, err := e.engine().ProcessAnswer(sess, args[0], strings.Join(args[1:], " "), nil)
			if err != nil {
				return err
			}
			if err := e.db.SaveSession(sess); err != nil {
				return err
			}

			if sess.Status == session.StatusTimedOut {
				fmt.Println("Session exceeded its time budget and is TIMED_OUT; the answer was not recorded.")
				return nil
			}
			fmt.Printf("Confidence: %.1f%% (target %.1f%%) | Phase: %s | Status: %s\n",
				sess.Confidence, sess.Target, sess.Phase, sess.Status)
			if a := sess.Assessment; a != nil {
				fmt.Printf("Risk: %s | Trend: %s | Recommendation: %s\n", a.Risk, a.Trend, a.Recommendation)
			}
			for _, q := range newQuestions {
				fmt.Printf("  new [%s] (%s) %s\n", q.ID, q.Type, q.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID (default: active session)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var (
		sessionID string
		list      bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a session's phase, confidence, and open work",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if list {
				summaries, err := e.db.ListSessions(20)
				if err != nil {
					return err
				}
				for _, sm := range summaries {
					fmt.Printf("%s [%s/%s] %.1f%%/%.1f%% — %s\n",
						sm.ID, sm.Phase, sm.Status, sm.Confidence, sm.Target, sm.Description)
				}
				return nil
			}

			sess, err := e.resolveSession(sessionID)
			if err != nil {
				return err
			}
			fmt.Printf("Session %s\n", sess.ID)
			fmt.Printf("Task: %s\n", sess.Context.Description)
			fmt.Printf("Phase: %s | Status: %s | Confidence: %.1f%%/%.1f%%\n",
				sess.Phase, sess.Status, sess.Confidence, sess.Target)
			for _, q := range sess.OpenQuestions() {
				fmt.Printf("  open [%s] (%s) %s\n", q.ID, q.Type, q.Text)
			}
			for _, g := range sess.OpenGaps() {
				fmt.Printf("  gap [%s] %s: %s\n", g.ID, g.Severity, g.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID (default: active session)")
	cmd.Flags().BoolVar(&list, "list", false, "list recent sessions")
	return cmd
}

func newReportCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the markdown audit report for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			sess, err := e.resolveSession(sessionID)
			if err != nil {
				return err
			}
			renderer, err := report.NewRenderer()
			if err != nil {
				return err
			}
			md, err := renderer.Render(report.SessionReport, report.BuildSessionReport(sess))
			if err != nil {
				return err
			}
			fmt.Print(md)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID (default: active session)")
	return cmd
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Scan requirement text for ambiguities (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			var data []byte
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			var statements []string
			for _, line := range strings.Split(string(data), "\n") {
				if s := strings.TrimSpace(line); s != "" {
					statements = append(statements, s)
				}
			}
			r := ambiguity.NewDetector(e.glossary).Analyze(statements)

			fmt.Printf("Clarity score: %d/100\n", r.ClarityScore)
			for _, a := range r.Ambiguities {
				fmt.Printf("  [%s] %s/%s stmt %d (%q): %s\n",
					a.ID, a.Type, a.Severity, a.Location.StatementIndex+1, a.Location.Excerpt, a.Description)
			}
			for _, c := range r.Contradictions {
				fmt.Printf("  [%s] contradiction: statements %d and %d (%q vs %q)\n",
					c.ID, c.StatementA+1, c.StatementB+1, c.TermA, c.TermB)
			}
			return nil
		},
	}
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <terms...>",
		Short: "Search prior sessions by task description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			summaries, err := e.db.SearchSessions(strings.Join(args, " "), 10)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No sessions match.")
				return nil
			}
			for _, sm := range summaries {
				fmt.Printf("%s [%s/%s] %.1f%% — %s\n",
					sm.ID, sm.Phase, sm.Status, sm.Confidence, sm.Description)
			}
			return nil
		},
	}
	return cmd
}

func newAmendCmd() *cobra.Command {
	var rationale string
	cmd := &cobra.Command{
		Use:   "amend <rule-id> <value>",
		Short: "Propose a rule-parameter amendment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(rationale) == "" {
				return fmt.Errorf("--rationale is required: amendments must be justified")
			}
			var value float64
			if _, err := fmt.Sscanf(args[1], "%f", &value); err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			engine := rules.NewEngine(e.cfg.RuleParams())
			decision, err := engine.ProposeAmendment(rules.Proposal{
				RuleID: args[0], Value: value, Rationale: rationale,
			})
			if err != nil {
				return err
			}
			if !decision.Accepted {
				fmt.Printf("REJECTED: %s\n", decision.Reason)
				return nil
			}

			p := engine.Params()
			e.cfg.Rules.MinCoverage = p.MinCoverage
			e.cfg.Rules.MinConfidence = p.MinConfidence
			e.cfg.Rules.MaxContextLines = p.MaxContextLines
			e.cfg.Rules.ShardingReductionTarget = p.ShardingReductionTarget
			e.cfg.Rules.LookupReductionTarget = p.LookupReductionTarget
			e.cfg.Rules.ImplTimeReductionTarget = p.ImplTimeReductionTarget
			e.cfg.Rules.RequireCodeReview = p.RequireCodeReview
			if err := saveConfig(e); err != nil {
				return err
			}
			if err := e.db.RecordAmendment(*decision.Amendment); err != nil {
				return err
			}
			a := decision.Amendment
			fmt.Printf("ACCEPTED: %s changed %.2f -> %.2f at %s\n",
				a.RuleID, a.Previous, a.Value, a.AcceptedAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&rationale, "rationale", "", "why this change is justified (required)")
	return cmd
}
