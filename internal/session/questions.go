package session

import (
	"fmt"
	"strings"

	"github.com/readygate/readygate/internal/task"
)

// --- Question generation ---
//
// Each question type is bound to exactly one generation strategy, selected
// by lookup. The type space is closed: a new type means a new entry here,
// and the tests walk the whole table.

// questionSpec is a generator's output before the session assigns an ID,
// phase and timestamp.
type questionSpec struct {
	text      string
	reasoning string
	expected  string
	priority  string
	followUps []task.FollowUpRule
}

type generator func(tc task.TaskContext) questionSpec

var generators = map[task.QuestionType]generator{
	task.QuestionClarification: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      fmt.Sprintf("What is the single most important outcome of %q, stated so a test could verify it?", shortDesc(tc)),
			reasoning: "the core functional requirement must be explicit before anything else is worth asking",
			expected:  "one sentence naming actor, action and verifiable result",
			priority:  "high",
			followUps: []task.FollowUpRule{
				{Keyword: "depends", Question: "What exactly does it depend on, and what happens when that dependency is unavailable?", Type: task.QuestionConstraint},
				{Keyword: "except", Question: "List every exception to this outcome and who decides each one.", Type: task.QuestionBusinessRule},
			},
		}
	},
	task.QuestionExploration: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "Which parts of this work are already settled, and which are still open design decisions?",
			reasoning: "separating decided ground from open ground focuses the remaining questions",
			expected:  "two lists: settled decisions and open decisions",
			priority:  "medium",
			followUps: []task.FollowUpRule{
				{Keyword: "open", Question: "For each open decision: who decides, and by when?", Type: task.QuestionClarification},
			},
		}
	},
	task.QuestionValidation: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "How will you know this work is done: what checks, by whom, against what criteria?",
			reasoning: "acceptance criteria stated up front prevent scope drift",
			expected:  "a checkable done-definition",
			priority:  "high",
			followUps: []task.FollowUpRule{
				{Keyword: "manual", Question: "Which of these checks could be automated instead, and why aren't they?", Type: task.QuestionConstraint},
			},
		}
	},
	task.QuestionEdgeCase: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "What inputs or situations would most likely break this: empty values, duplicates, concurrent access, extreme sizes?",
			reasoning: "boundary behavior is where unstated requirements hide",
			expected:  "a list of concrete boundary conditions with intended behavior for each",
			priority:  "high",
			followUps: []task.FollowUpRule{
				{Keyword: "concurrent", Question: "What is the expected behavior when two of these operations race?", Type: task.QuestionErrorHandling},
				{Keyword: "empty", Question: "Is empty input an error, a no-op, or a valid case with defined output?", Type: task.QuestionClarification},
			},
		}
	},
	task.QuestionConstraint: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "What hard constraints apply: deadlines, budgets, compatibility requirements, regulatory limits?",
			reasoning: "constraints eliminate design options early",
			expected:  "named constraints with their sources",
			priority:  "medium",
		}
	},
	task.QuestionAssumption: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "What are you assuming about the environment, the users, or the data that has not been verified?",
			reasoning: "unverified assumptions are gaps wearing a disguise",
			expected:  "a list of assumptions, each marked verified or unverified",
			priority:  "medium",
			followUps: []task.FollowUpRule{
				{Keyword: "assume", Question: "Which of these assumptions would be cheapest to verify right now?", Type: task.QuestionValidation},
			},
		}
	},
	task.QuestionIntegration: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "Which external systems does this touch, and what is the contract with each (format, protocol, failure mode)?",
			reasoning: "integration points carry the highest coordination risk",
			expected:  "per-system: contract, owner, failure behavior",
			priority:  "high",
			followUps: []task.FollowUpRule{
				{Keyword: "api", Question: "Is that API versioned, and what happens when it changes under you?", Type: task.QuestionErrorHandling},
			},
		}
	},
	task.QuestionPerformance: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "What are the numeric performance expectations: latency, throughput, data volume, concurrency?",
			reasoning: "performance words without numbers are not requirements",
			expected:  "numbers with units and the load profile they apply to",
			priority:  "medium",
		}
	},
	task.QuestionSecurity: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "Who is allowed to do this, how is that enforced, and what data here is sensitive?",
			reasoning: "authorization and data sensitivity must be designed in, not patched on",
			expected:  "roles, enforcement mechanism, sensitive-data inventory",
			priority:  "medium",
		}
	},
	task.QuestionUsability: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "Walk through the primary user's path step by step: where can they get stuck or make a mistake?",
			reasoning: "the happy path is rarely where requirements fail",
			expected:  "a stepwise walkthrough with failure points marked",
			priority:  "low",
		}
	},
	task.QuestionBusinessRule: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "Which business rules govern this behavior, who owns each rule, and where is it written down?",
			reasoning: "unowned business rules change without warning",
			expected:  "rule, owner, source document for each",
			priority:  "high",
			followUps: []task.FollowUpRule{
				{Keyword: "policy", Question: "When that policy and this requirement conflict, which wins?", Type: task.QuestionClarification},
			},
		}
	},
	task.QuestionWorkflow: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "What triggers this work, what are the steps in order, and what marks it finished?",
			reasoning: "workflow boundaries define the state machine",
			expected:  "trigger, ordered steps, terminal condition",
			priority:  "medium",
		}
	},
	task.QuestionErrorHandling: func(tc task.TaskContext) questionSpec {
		return questionSpec{
			text:      "For each way this can fail, what should the user or caller see, and what should the system record?",
			reasoning: "failure behavior left unspecified becomes whatever the code happens to do",
			expected:  "failure mode to observable-behavior mapping",
			priority:  "high",
		}
	},
}

func shortDesc(tc task.TaskContext) string {
	d := strings.TrimSpace(tc.Description)
	if len(d) > 50 {
		d = d[:50] + "..."
	}
	return d
}

// --- Triage planning ---

// triagePlan picks the priority question categories for the first round:
// functional clarification always first, edge cases always included,
// the rest chosen from domain signals and padded from a fallback order.
func triagePlan(tc task.TaskContext, count int) []task.QuestionType {
	plan := []task.QuestionType{task.QuestionClarification}
	add := func(t task.QuestionType) {
		for _, p := range plan {
			if p == t {
				return
			}
		}
		plan = append(plan, t)
	}

	// Domain signals.
	tech := strings.ToLower(tc.TechnicalContext + " " + tc.Description)
	if strings.Contains(tech, "integrat") || strings.Contains(tech, "api") ||
		strings.Contains(tech, "external") || strings.Contains(tech, "third-party") {
		add(task.QuestionIntegration)
	}
	if tc.Complexity == "high" {
		add(task.QuestionConstraint)
	}
	if tc.BusinessContext != "" {
		add(task.QuestionBusinessRule)
	}
	if strings.Contains(tech, "workflow") || strings.Contains(tech, "process") ||
		strings.Contains(tech, "journey") {
		add(task.QuestionWorkflow)
	}
	if strings.Contains(tech, "performance") || strings.Contains(tech, "latency") ||
		strings.Contains(tech, "scale") {
		add(task.QuestionPerformance)
	}
	if strings.Contains(tech, "auth") || strings.Contains(tech, "security") ||
		strings.Contains(tech, "permission") {
		add(task.QuestionSecurity)
	}

	add(task.QuestionEdgeCase)

	// Pad with fallback categories so triage always reaches the full count.
	for _, t := range []task.QuestionType{
		task.QuestionExploration, task.QuestionAssumption,
		task.QuestionValidation, task.QuestionErrorHandling,
		task.QuestionWorkflow, task.QuestionConstraint,
	} {
		if len(plan) >= count {
			break
		}
		add(t)
	}
	if len(plan) > count {
		// Keep clarification first and edge_case in; trim the middle.
		trimmed := plan[:count-1]
		hasEdge := false
		for _, t := range trimmed {
			if t == task.QuestionEdgeCase {
				hasEdge = true
			}
		}
		if hasEdge {
			trimmed = plan[:count]
		} else {
			trimmed = append(trimmed, task.QuestionEdgeCase)
		}
		plan = trimmed
	}
	return plan
}

// phaseQuestionTypes maps each phase to the question types it favors once
// gap-driven questions are exhausted.
var phaseQuestionTypes = map[Phase][]task.QuestionType{
	PhaseTriage:      {task.QuestionClarification, task.QuestionExploration},
	PhaseExploration: {task.QuestionExploration, task.QuestionAssumption, task.QuestionIntegration},
	PhaseValidation:  {task.QuestionValidation, task.QuestionErrorHandling},
	PhaseRefinement:  {task.QuestionEdgeCase, task.QuestionPerformance, task.QuestionUsability},
}

// --- Answer analysis helpers ---

// answerConfidence estimates how much one answer contributes, from the
// specificity of its text. Range 0.1-1.0.
func answerConfidence(text string) float64 {
	conf := 0.3
	n := len(strings.TrimSpace(text))
	switch {
	case n >= 200:
		conf += 0.3
	case n >= 60:
		conf += 0.2
	case n >= 20:
		conf += 0.1
	}
	if strings.ContainsAny(text, "0123456789") {
		conf += 0.2
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "for example") || strings.Contains(lower, "e.g.") ||
		strings.Contains(lower, "specifically") {
		conf += 0.1
	}
	for _, hedge := range []string{"maybe", "not sure", "probably", "i think", "possibly", "unclear"} {
		if strings.Contains(lower, hedge) {
			conf -= 0.2
			break
		}
	}
	if conf < 0.1 {
		conf = 0.1
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// extractAssumptions pulls sentences that declare an assumption.
func extractAssumptions(text string) []string {
	var out []string
	for _, sentence := range splitSentences(text) {
		lower := strings.ToLower(sentence)
		if strings.Contains(lower, "assum") || strings.Contains(lower, "presumably") ||
			strings.Contains(lower, "should be fine") {
			out = append(out, strings.TrimSpace(sentence))
		}
	}
	return out
}

// extractClarifications pulls counter-questions the answerer raised.
func extractClarifications(text string) []string {
	var out []string
	for _, sentence := range splitSentences(text) {
		if strings.HasSuffix(strings.TrimSpace(sentence), "?") {
			out = append(out, strings.TrimSpace(sentence))
		}
	}
	return out
}

// edgeSignals maps answer keywords to the boundary condition they imply.
var edgeSignals = []struct {
	keyword     string
	description string
}{
	{"empty", "empty input"},
	{"null", "null or missing value"},
	{"concurrent", "concurrent access to the same resource"},
	{"race", "racing operations"},
	{"timeout", "operation exceeding its time budget"},
	{"duplicate", "duplicate submission"},
	{"invalid", "invalid input"},
	{"negative", "negative value"},
	{"zero", "zero value"},
	{"overflow", "value exceeding capacity"},
	{"unicode", "non-ASCII text"},
	{"large", "unusually large input"},
	{"offline", "dependency unavailable"},
}

// extractEdgeCases surfaces boundary conditions mentioned in an answer.
func extractEdgeCases(text, sourceQuestionID string) []task.EdgeCase {
	lower := strings.ToLower(text)
	var out []task.EdgeCase
	for _, sig := range edgeSignals {
		if strings.Contains(lower, sig.keyword) {
			out = append(out, task.EdgeCase{
				Description: sig.description,
				Source:      sourceQuestionID,
			})
		}
	}
	return out
}

// splitSentences is a crude sentence splitter, good enough for answer text.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
