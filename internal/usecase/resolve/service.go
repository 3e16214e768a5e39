package resolve

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
)

// MaxSimilarK caps raw neighbour lookups.
const MaxSimilarK = 100

// Service owns the shared, read-only parts of resolution and hands out one
// Resolver per session.
type Service struct {
	model   Model
	matcher *Matcher
	cfg     domain.ResolverConfig
	logger  *zap.Logger
}

// NewService indexes the model vocabulary once for all sessions.
func NewService(model Model, cfg domain.ResolverConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = domain.DefaultResolverConfig().FuzzyThreshold
	}
	m := NewMatcher(model.Vocabulary(), cfg.FuzzyThreshold)
	logger.Info("Resolver index ready", zap.Int("labels", m.Len()))
	return &Service{model: model, matcher: m, cfg: cfg, logger: logger}
}

// NewResolver creates a resolver with an empty seen-set.
func (s *Service) NewResolver() *Resolver {
	return NewResolver(s.matcher, s.model, s.cfg, s.logger)
}

// Candidates exposes candidate lookup without session state.
func (s *Service) Candidates(query string) []string {
	return s.matcher.FindCandidateNodes(query, s.cfg.MaxCandidates)
}

// Similar returns the raw nearest neighbours of one vocabulary node.
func (s *Service) Similar(name string, k int) ([]domain.Neighbor, error) {
	if k <= 0 || k > MaxSimilarK {
		return nil, fmt.Errorf("%w: k must be in [1,%d]", domain.ErrInvalidRequest, MaxSimilarK)
	}
	neighbors, err := s.model.MostSimilar(name, k)
	if err != nil {
		return nil, fmt.Errorf("similar %q: %w", name, err)
	}
	return neighbors, nil
}
