package node2vec

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
)

// Trainer turns a co-occurrence graph into an embedding model.
type Trainer struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a trainer. The config is validated on every Train call.
func New(cfg Config, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{cfg: cfg, logger: logger}
}

// Config returns the trainer hyperparameters.
func (t *Trainer) Config() Config { return t.cfg }

// Train samples walks from every connected node and fits skip-gram vectors.
// Isolated nodes cannot appear in any walk context and are left out of the
// model. A graph without edges yields domain.ErrEmptyGraph.
func (t *Trainer) Train(ctx context.Context, g *graph.Graph) (*embedding.Model, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trainer config: %w", err)
	}
	if g == nil || g.Len() == 0 {
		return nil, fmt.Errorf("%w: no nodes", domain.ErrEmptyGraph)
	}

	w := newWalker(g, t.cfg.P, t.cfg.Q)
	if len(w.names) == 0 {
		return nil, fmt.Errorf("%w: %d nodes but no edges", domain.ErrEmptyGraph, g.Len())
	}
	if skipped := g.Len() - len(w.names); skipped > 0 {
		t.logger.Warn("Isolated nodes are not embedded", zap.Int("count", skipped))
	}

	start := time.Now()
	walks, err := w.generateWalks(ctx, t.cfg)
	if err != nil {
		return nil, fmt.Errorf("generate walks: %w", err)
	}
	t.logger.Info("Random walks generated",
		zap.Int("walks", len(walks)),
		zap.Int("nodes", len(w.names)),
		zap.Duration("elapsed", time.Since(start)),
	)

	counts := make([]int, len(w.names))
	for _, walk := range walks {
		for _, n := range walk {
			counts[n]++
		}
	}

	start = time.Now()
	sg := newSkipGram(len(w.names), t.cfg.Dimensions, counts, t.cfg.Seed)
	if err := sg.train(ctx, walks, t.cfg); err != nil {
		return nil, fmt.Errorf("train skip-gram: %w", err)
	}
	t.logger.Info("Skip-gram trained",
		zap.Int("dimensions", t.cfg.Dimensions),
		zap.Int("epochs", t.cfg.Epochs),
		zap.Duration("elapsed", time.Since(start)),
	)

	return embedding.NewModel(w.names, sg.vectors())
}
