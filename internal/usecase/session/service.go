package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/metrics"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
)

// DefaultIdleTTL is how long an untouched session survives.
const DefaultIdleTTL = 30 * time.Minute

// Session binds a resolver to an id.
type Session struct {
	ID        string
	CreatedAt time.Time
	Resolver  *resolve.Resolver

	lastUsed time.Time
}

// Registry holds live sessions in memory.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  ResolverFactory
	idleTTL  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewRegistry creates an empty registry. idleTTL <= 0 uses DefaultIdleTTL.
func NewRegistry(factory ResolverFactory, idleTTL time.Duration, logger *zap.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		idleTTL:  idleTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Create starts a session with a FRESH resolver.
func (r *Registry) Create() *Session {
	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Resolver:  r.factory.NewResolver(),
		lastUsed:  now,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	r.logger.Debug("Session created", zap.String("session_id", s.ID))
	return s
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %q: %w", id, domain.ErrSessionNotFound)
	}
	s.lastUsed = r.now()
	return s, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("delete session %q: %w", id, domain.ErrSessionNotFound)
	}
	metrics.SessionsActive.Set(float64(n))
	r.logger.Debug("Session deleted", zap.String("session_id", id))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the TTL at now and returns
// how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	evicted := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastUsed) > r.idleTTL {
			delete(r.sessions, id)
			evicted++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if evicted > 0 {
		metrics.SessionsEvictedTotal.Add(float64(evicted))
		r.logger.Info("Idle sessions evicted", zap.Int("evicted", evicted), zap.Int("remaining", n))
	}
	metrics.SessionsActive.Set(float64(n))
	return evicted
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}
