package ambiguity

// --- Clarification question assembly ---
//
// Every finding suggests its own questions; this file deduplicates them
// and assigns the stakeholder role and expected answer format that the
// session layer needs to route follow-up rounds.

// stakeholderForType maps an ambiguity type to the role best placed to
// answer its questions.
var stakeholderForType = map[Type]string{
	TypeVagueTerm:             "product owner",
	TypeSubjectiveCriteria:    "product owner",
	TypeOverloadedTerm:        "domain expert",
	TypeMissingContext:        "business analyst",
	TypeIncompleteRequirement: "requirements author",
	TypeContradiction:         "stakeholder group",
	TypeUndefinedRelationship: "domain expert",
}

// formatForType maps an ambiguity type to the expected answer shape.
var formatForType = map[Type]string{
	TypeVagueTerm:             "numeric threshold or named testable criterion",
	TypeSubjectiveCriteria:    "observable behavior a test could check",
	TypeOverloadedTerm:        "single chosen definition",
	TypeMissingContext:        "concrete detail: numbers, names, conditions",
	TypeIncompleteRequirement: "actor-action-object sentence",
	TypeContradiction:         "precedence decision with rationale",
	TypeUndefinedRelationship: "relationship statement with cardinality",
}

// buildClarificationQuestions converts finding-level suggestions into
// deduplicated clarification-question records. Questions with identical
// text are merged; the merged record keeps every source ambiguity ID.
func buildClarificationQuestions(ambiguities []Ambiguity) []ClarificationQuestion {
	index := map[string]int{} // question text -> position in out
	var out []ClarificationQuestion

	for _, a := range ambiguities {
		for _, q := range a.SuggestedQuestions {
			if pos, ok := index[q]; ok {
				out[pos].Ambiguities = append(out[pos].Ambiguities, a.ID)
				continue
			}
			index[q] = len(out)
			out = append(out, ClarificationQuestion{
				Question:       q,
				Stakeholder:    stakeholderForType[a.Type],
				ExpectedFormat: formatForType[a.Type],
				Ambiguities:    []string{a.ID},
			})
		}
	}
	return out
}
