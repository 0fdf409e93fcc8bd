package ambiguity

// --- Fixed detection vocabularies ---
//
// Pattern/keyword matching is the mechanism here, deliberately: the tables
// below are the detector's entire linguistic knowledge. Keeping them as
// data makes the detectors exhaustively testable.

// vaguePattern is one entry in the vague-term vocabulary.
type vaguePattern struct {
	category string // quality | quantity | time
	severity string // base severity, downgraded when a numeric qualifier is present
	score    int
}

// vagueTerms maps subjective/unquantified words to their base pattern.
var vagueTerms = map[string]vaguePattern{
	// Quality adjectives.
	"good":       {category: "quality", severity: "medium", score: 50},
	"bad":        {category: "quality", severity: "medium", score: 50},
	"fast":       {category: "quality", severity: "high", score: 65},
	"slow":       {category: "quality", severity: "high", score: 65},
	"easy":       {category: "quality", severity: "medium", score: 45},
	"simple":     {category: "quality", severity: "medium", score: 45},
	"efficient":  {category: "quality", severity: "high", score: 60},
	"scalable":   {category: "quality", severity: "high", score: 60},
	"robust":     {category: "quality", severity: "medium", score: 55},
	"flexible":   {category: "quality", severity: "medium", score: 50},
	"reliable":   {category: "quality", severity: "high", score: 60},
	"performant": {category: "quality", severity: "high", score: 65},

	// Quantity words.
	"several":  {category: "quantity", severity: "medium", score: 45},
	"some":     {category: "quantity", severity: "medium", score: 40},
	"many":     {category: "quantity", severity: "medium", score: 45},
	"few":      {category: "quantity", severity: "medium", score: 40},
	"various":  {category: "quantity", severity: "low", score: 35},
	"numerous": {category: "quantity", severity: "medium", score: 45},
	"most":     {category: "quantity", severity: "medium", score: 40},

	// Time words.
	"soon":       {category: "time", severity: "high", score: 60},
	"quickly":    {category: "time", severity: "high", score: 60},
	"eventually": {category: "time", severity: "medium", score: 50},
	"later":      {category: "time", severity: "medium", score: 45},
}

// subjectiveCriteria is the fixed list of non-measurable adjectives
// flagged in acceptance-criteria position.
var subjectiveCriteria = map[string]bool{
	"user-friendly": true,
	"intuitive":     true,
	"seamless":      true,
	"clean":         true,
	"modern":        true,
	"elegant":       true,
	"nice":          true,
	"pretty":        true,
	"attractive":    true,
	"appropriate":   true,
	"reasonable":    true,
	"acceptable":    true,
	"polished":      true,
}

// antagonistPair is a pair of keyword families that cannot both apply to
// the same subject.
type antagonistPair struct {
	left  []string
	right []string
}

// antagonists drives contradiction detection. A statement matching one side
// contradicts any other statement matching the opposite side when the two
// statements share a subject keyword.
var antagonists = []antagonistPair{
	{left: []string{"must", "required", "shall", "mandatory"}, right: []string{"optional", "may", "might"}},
	{left: []string{"always", "never"}, right: []string{"sometimes", "occasionally"}},
	{left: []string{"all", "every", "each"}, right: []string{"some", "partial", "few"}},
}

// contextCategory describes one missing-context check: topical keywords
// that demand specificity when present.
type contextCategory struct {
	name     string
	keywords []string
	question string
}

// contextCategories are the three categories checked for missing context.
var contextCategories = []contextCategory{
	{
		name:     "business_rule",
		keywords: []string{"policy", "approve", "approval", "billing", "price", "pricing", "discount", "compliance", "refund", "invoice"},
		question: "Which business rule governs this, and who owns it?",
	},
	{
		name:     "technical_constraint",
		keywords: []string{"database", "api", "latency", "throughput", "memory", "storage", "integration", "protocol", "queue", "cache"},
		question: "What are the concrete technical constraints (limits, versions, protocols) here?",
	},
	{
		name:     "user_workflow",
		keywords: []string{"login", "click", "navigate", "submit", "screen", "journey", "onboarding", "checkout", "signup"},
		question: "What is the step-by-step workflow, and where can the user deviate from it?",
	},
}

// actionVerbs are verbs whose presence marks a statement as containing
// an action. Statements without one are incomplete.
var actionVerbs = map[string]bool{
	"create": true, "creates": true, "add": true, "adds": true,
	"update": true, "updates": true, "delete": true, "deletes": true,
	"send": true, "sends": true, "receive": true, "receives": true,
	"display": true, "displays": true, "show": true, "shows": true,
	"validate": true, "validates": true, "process": true, "processes": true,
	"generate": true, "generates": true, "store": true, "stores": true,
	"return": true, "returns": true, "notify": true, "notifies": true,
	"allow": true, "allows": true, "support": true, "supports": true,
	"provide": true, "provides": true, "handle": true, "handles": true,
	"be": true, "is": true, "are": true, "must": true, "should": true,
	"can": true, "will": true, "shall": true, "may": true,
}

// actorNouns mark a statement as having an actor.
var actorNouns = map[string]bool{
	"user": true, "users": true, "system": true, "admin": true,
	"administrator": true, "service": true, "operator": true,
	"customer": true, "customers": true, "client": true, "clients": true,
	"application": true, "server": true, "api": true, "caller": true,
	"team": true, "manager": true, "it": true, "we": true, "they": true,
}

// relationVerbs mark a relationship between two entities as defined.
var relationVerbs = []string{
	"has", "have", "belongs", "owns", "contains", "references",
	"maps", "links", "depends", "uses", "extends",
}

// stopWords are filtered out of subject-keyword extraction for
// contradiction matching.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "was": true,
	"has": true, "its": true, "may": true, "who": true, "how": true,
	"that": true, "with": true, "have": true, "this": true, "will": true,
	"from": true, "they": true, "been": true, "each": true, "which": true,
	"their": true, "there": true, "about": true, "would": true, "must": true,
	"should": true, "shall": true, "every": true, "some": true, "when": true,
	"then": true, "than": true, "into": true, "over": true, "such": true,
	"also": true, "only": true, "other": true, "these": true, "those": true,
	"always": true, "never": true, "sometimes": true, "optional": true,
	"required": true, "mandatory": true, "might": true, "partial": true,
	"occasionally": true,
}
