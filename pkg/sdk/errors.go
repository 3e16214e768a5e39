package beliefgraph

import "github.com/kailas-cloud/beliefgraph/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrModelNotFound  = domain.ErrModelNotFound
	ErrInvalidModel   = domain.ErrInvalidModel
	ErrUnknownNode    = domain.ErrUnknownNode
	ErrInvalidRequest = domain.ErrInvalidRequest
)
