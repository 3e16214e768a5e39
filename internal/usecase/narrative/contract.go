package narrative

import "github.com/kailas-cloud/beliefgraph/internal/domain"

// DocumentSource provides the loaded corpus.
type DocumentSource interface {
	Documents() []domain.Document
}
