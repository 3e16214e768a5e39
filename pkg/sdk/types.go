package beliefgraph

import "github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"

// Outcome classifies a Resolve call.
type Outcome string

// Outcome constants.
const (
	OutcomeMatched   Outcome = "matched"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeNoMatch   Outcome = "no_match"
)

// Result is one resolved query. Suggestions is never nil.
type Result struct {
	Query       string
	Central     string
	Candidates  []string
	Suggestions []string
	Outcome     Outcome
}

// Neighbor is a concept and its cosine similarity to the queried concept.
type Neighbor struct {
	Name  string
	Score float64
}

func resultFromUC(r resolve.Result) Result {
	return Result{
		Query:       r.Query,
		Central:     r.Central,
		Candidates:  r.Candidates,
		Suggestions: r.Suggestions,
		Outcome:     Outcome(r.Outcome),
	}
}
