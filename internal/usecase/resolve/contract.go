package resolve

import "github.com/kailas-cloud/beliefgraph/internal/domain"

// NeighborSource is the slice of the embedding model the resolver reads.
type NeighborSource interface {
	MostSimilar(name string, k int) ([]domain.Neighbor, error)
}

// Outcome classifies a Resolve call.
type Outcome string

const (
	// OutcomeMatched means topn suggestions were found.
	OutcomeMatched Outcome = "matched"
	// OutcomeExhausted means the query matched but fewer than topn fresh
	// neighbours remained. The result is still valid.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeNoMatch means no vocabulary node matched the query.
	OutcomeNoMatch Outcome = "no_match"
)

// Phase names the matching phase that produced the candidates.
type Phase string

const (
	PhaseSubstring Phase = "substring"
	PhaseFuzzy     Phase = "fuzzy"
	PhaseNone      Phase = "none"
)

// State is the resolver session state.
type State string

const (
	// StateFresh means the seen-set is empty.
	StateFresh State = "FRESH"
	// StateActive means at least one query has been resolved since the last reset.
	StateActive State = "ACTIVE"
)

// Result is the outcome of one Resolve call. Presentation needs only
// Suggestions, which is never nil.
type Result struct {
	Query       string
	Central     string
	Candidates  []string
	Suggestions []string
	Phase       Phase
	Outcome     Outcome
}

// Model is a read-only embedding model with a known vocabulary.
type Model interface {
	NeighborSource
	Vocabulary() []string
}
