package training

import (
	"context"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	"github.com/kailas-cloud/beliefgraph/internal/repository/corpus"
	"github.com/kailas-cloud/beliefgraph/internal/repository/graphstore"
	"github.com/kailas-cloud/beliefgraph/internal/repository/model"
)

// CorpusLoader reads documents from corpus files.
type CorpusLoader interface {
	Load(ctx context.Context, paths ...string) ([]domain.Document, corpus.Report, error)
}

// Trainer fits an embedding model to a graph.
type Trainer interface {
	Train(ctx context.Context, g *graph.Graph) (*embedding.Model, error)
}

// ModelStore persists trained models.
type ModelStore interface {
	Save(ctx context.Context, m *embedding.Model) (model.Info, error)
	Location() string
}

// GraphExporter mirrors a graph into an external graph database.
type GraphExporter interface {
	Export(ctx context.Context, g *graph.Graph) (graphstore.Stats, error)
}
