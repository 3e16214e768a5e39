package chi

import (
	"time"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	narrativeuc "github.com/kailas-cloud/beliefgraph/internal/usecase/narrative"
	resolveuc "github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeSessionNotFound  ErrorCode = "session_not_found"
	ErrorCodeConceptNotFound  ErrorCode = "concept_not_found"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"`
}

type resolveRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"topn"`
}

type resolveResponse struct {
	Query       string   `json:"query"`
	Central     string   `json:"central,omitempty"`
	Candidates  []string `json:"candidates"`
	Suggestions []string `json:"suggestions"`
	Phase       string   `json:"phase"`
	Outcome     string   `json:"outcome"`
}

func resolveToResponse(r resolveuc.Result) resolveResponse {
	candidates := r.Candidates
	if candidates == nil {
		candidates = []string{}
	}
	return resolveResponse{
		Query:       r.Query,
		Central:     r.Central,
		Candidates:  candidates,
		Suggestions: r.Suggestions,
		Phase:       string(r.Phase),
		Outcome:     string(r.Outcome),
	}
}

type seenResponse struct {
	State string   `json:"state"`
	Seen  []string `json:"seen"`
}

type neighborResponse struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type similarResponse struct {
	Name      string             `json:"name"`
	Neighbors []neighborResponse `json:"neighbors"`
}

func similarToResponse(name string, ns []domain.Neighbor) similarResponse {
	out := similarResponse{Name: name, Neighbors: make([]neighborResponse, len(ns))}
	for i, n := range ns {
		out.Neighbors[i] = neighborResponse{Name: n.Name, Score: n.Score}
	}
	return out
}

type narrativeRequest struct {
	Concepts []string `json:"concepts"`
	Summary  string   `json:"summary"`
}

type documentResponse struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Concepts []string `json:"concepts"`
}

type narrativeResponse struct {
	Context        string             `json:"context"`
	Theme          string             `json:"theme"`
	HeadlinePrompt string             `json:"headline_prompt"`
	VisualPrompt   string             `json:"visual_prompt"`
	Documents      []documentResponse `json:"documents"`
}

func briefToResponse(b narrativeuc.Brief) narrativeResponse {
	docs := make([]documentResponse, len(b.Documents))
	for i, d := range b.Documents {
		docs[i] = documentResponse{Title: d.Title, Summary: d.Summary, Concepts: d.Concepts}
	}
	return narrativeResponse{
		Context:        b.Context,
		Theme:          string(b.Theme),
		HeadlinePrompt: b.HeadlinePrompt,
		VisualPrompt:   b.VisualPrompt,
		Documents:      docs,
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
