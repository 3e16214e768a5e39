package resolve

import (
	"sort"
	"sync"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/domain/concept"
	"github.com/kailas-cloud/beliefgraph/internal/metrics"
)

// Resolver maps queries to unseen graph concepts for one session. The
// seen-set records raw queries and chosen central nodes in insertion order;
// nothing is removed from it except by Reset.
type Resolver struct {
	mu      sync.Mutex
	matcher *Matcher
	model   NeighborSource
	cfg     domain.ResolverConfig
	seen    *linkedhashset.Set
	logger  *zap.Logger
}

// NewResolver creates a resolver in the FRESH state. The matcher and model
// are shared read-only; the seen-set belongs to this resolver alone.
func NewResolver(matcher *Matcher, model NeighborSource, cfg domain.ResolverConfig, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := domain.DefaultResolverConfig()
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.NeighborsPerCandidate <= 0 {
		cfg.NeighborsPerCandidate = def.NeighborsPerCandidate
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = def.DefaultTopN
	}
	return &Resolver{
		matcher: matcher,
		model:   model,
		cfg:     cfg,
		seen:    linkedhashset.New(),
		logger:  logger,
	}
}

// Resolve maps query to vocabulary candidates and returns up to topn fresh
// neighbours pooled across all candidates. topn <= 0 uses the configured
// default. An unmatched query leaves the seen-set untouched.
func (r *Resolver) Resolve(query string, topn int) Result {
	if topn <= 0 {
		topn = r.cfg.DefaultTopN
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	candidates, phase := r.matcher.find(query, r.cfg.MaxCandidates, r.isSeen)
	metrics.CandidatePhaseTotal.WithLabelValues(string(phase)).Inc()

	if len(candidates) == 0 {
		r.logger.Info("No node match",
			zap.String("query", query),
			zap.String("singular", concept.NaiveSingular(concept.Normalize(query))),
		)
		r.observe(OutcomeNoMatch, 0)
		return Result{Query: query, Suggestions: []string{}, Phase: phase, Outcome: OutcomeNoMatch}
	}

	central := candidates[0]
	r.seen.Add(query, central)
	r.logger.Info("Mapped query to node",
		zap.String("query", query),
		zap.String("central", central),
		zap.String("phase", string(phase)),
		zap.Int("candidates", len(candidates)),
	)

	suggestions := r.suggest(candidates, topn)

	outcome := OutcomeMatched
	if len(suggestions) < topn {
		outcome = OutcomeExhausted
		r.logger.Warn("Neighbourhood exhausted",
			zap.String("query", query),
			zap.String("central", central),
			zap.Int("wanted", topn),
			zap.Int("got", len(suggestions)),
		)
	}

	if r.cfg.MarkSuggestionsSeen {
		for _, s := range suggestions {
			r.seen.Add(s)
		}
	}

	r.observe(outcome, len(suggestions))
	return Result{
		Query:       query,
		Central:     central,
		Candidates:  candidates,
		Suggestions: suggestions,
		Phase:       phase,
		Outcome:     outcome,
	}
}

// suggest pools the nearest neighbours of every candidate, drops seen names,
// and keeps the first occurrence of each name by descending score.
func (r *Resolver) suggest(candidates []string, topn int) []string {
	var pool []domain.Neighbor
	for _, c := range candidates {
		neighbors, err := r.model.MostSimilar(c, r.cfg.NeighborsPerCandidate)
		if err != nil {
			// Candidates come from the model vocabulary, so this is a wiring bug.
			r.logger.Error("Neighbour lookup failed", zap.String("node", c), zap.Error(err))
			continue
		}
		for _, n := range neighbors {
			if r.isSeen(n.Name) {
				continue
			}
			pool = append(pool, n)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score > pool[j].Score
		}
		return pool[i].Name < pool[j].Name
	})

	// topn comes from callers unchecked; size by the pool instead.
	n := min(topn, len(pool))
	out := make([]string, 0, n)
	picked := make(map[string]struct{}, n)
	for _, n := range pool {
		if len(out) == topn {
			break
		}
		if _, dup := picked[n.Name]; dup {
			continue
		}
		picked[n.Name] = struct{}{}
		out = append(out, n.Name)
	}
	return out
}

func (r *Resolver) isSeen(name string) bool {
	return r.seen.Contains(name)
}

func (r *Resolver) observe(outcome Outcome, n int) {
	metrics.ResolveTotal.WithLabelValues(string(outcome)).Inc()
	metrics.SuggestionsReturned.Observe(float64(n))
}

// Reset clears the seen-set and returns the resolver to FRESH.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen.Clear()
}

// State reports FRESH or ACTIVE.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen.Empty() {
		return StateFresh
	}
	return StateActive
}

// Seen returns the seen-set in insertion order.
func (r *Resolver) Seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	values := r.seen.Values()
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
