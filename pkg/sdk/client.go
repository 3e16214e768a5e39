package beliefgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/db"
	dbRedis "github.com/kailas-cloud/beliefgraph/internal/db/redis"
	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	modelrepo "github.com/kailas-cloud/beliefgraph/internal/repository/model"
	healthuc "github.com/kailas-cloud/beliefgraph/internal/usecase/health"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can swap the use cases.
type resolveUseCase interface {
	NewResolver() *resolve.Resolver
	Candidates(query string) []string
	Similar(name string, k int) ([]domain.Neighbor, error)
}

type modelLoader interface {
	Load(ctx context.Context) (*embedding.Model, error)
}

// Client is the beliefgraph SDK entry point. It is safe for concurrent use.
type Client struct {
	store      db.Store
	model      *embedding.Model
	resolveSvc resolveUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// Open loads the trained model and prepares the resolver.
// The provided context bounds the readiness check and the model load.
func Open(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: domain.KeyPrefix,
		modelName: "default",
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	loader, store, err := openLoader(ctx, cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := loader.Load(ctx)
	obs.observe("load_model", start, err)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("beliefgraph: load model: %w", err)
	}

	return wireClient(m, store, cfg, obs), nil
}

func openLoader(ctx context.Context, cfg *clientConfig) (modelLoader, db.Store, error) {
	switch {
	case cfg.modelPath != "":
		return modelrepo.NewFileStore(cfg.modelPath), nil, nil
	case len(cfg.redisAddrs) > 0:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("beliefgraph: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("beliefgraph: redis not ready: %w", err)
		}
		return modelrepo.NewKVStore(s, cfg.keyPrefix, cfg.modelName), s, nil
	default:
		return nil, nil, errors.New("beliefgraph: model source required (use WithModelFile or WithRedis)")
	}
}

func wireClient(m *embedding.Model, store db.Store, cfg *clientConfig, obs *observer) *Client {
	rc := domain.DefaultResolverConfig()
	o := cfg.resolver
	if o.MaxCandidates > 0 {
		rc.MaxCandidates = o.MaxCandidates
	}
	if o.NeighborsPerCandidate > 0 {
		rc.NeighborsPerCandidate = o.NeighborsPerCandidate
	}
	if o.FuzzyThreshold > 0 {
		rc.FuzzyThreshold = o.FuzzyThreshold
	}
	if o.DefaultTopN > 0 {
		rc.DefaultTopN = o.DefaultTopN
	}
	rc.MarkSuggestionsSeen = o.MarkSuggestionsSeen

	// Pass a nil interface, not a typed nil, when the model came from a file.
	var pinger healthuc.StorePinger
	if store != nil {
		pinger = store
	}

	return &Client{
		store:      store,
		model:      m,
		// resolve outcomes reach the caller's slog logger through obs
		resolveSvc: resolve.NewService(m, rc, zap.NewNop()),
		healthSvc:  healthuc.New(m, pinger),
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Vocabulary returns every concept the model knows, in model order.
func (c *Client) Vocabulary() []string {
	return c.model.Vocabulary()
}

// NewSession starts a session with an empty seen-set.
func (c *Client) NewSession() *Session {
	return &Session{r: c.resolveSvc.NewResolver(), obs: c.obs}
}

// Candidates returns the concepts a query matches, ignoring session state.
func (c *Client) Candidates(query string) []string {
	return c.resolveSvc.Candidates(query)
}

// Similar returns the k nearest neighbours of a known concept.
func (c *Client) Similar(name string, k int) (_ []Neighbor, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	ns, err := c.resolveSvc.Similar(name, k)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	out := make([]Neighbor, len(ns))
	for i, n := range ns {
		out[i] = Neighbor{Name: n.Name, Score: n.Score}
	}
	return out, nil
}
