package beliefgraph

import (
	"time"

	"github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
)

// Session resolves queries against one seen-set. It is safe for concurrent
// use, but interleaved queries from several users should use separate
// sessions.
type Session struct {
	r   *resolve.Resolver
	obs *observer
}

// Resolve maps a free-text query to a concept and returns up to topn of its
// neighbours not yet shown in this session. topn <= 0 uses the default.
func (s *Session) Resolve(query string, topn int) Result {
	start := time.Now()
	res := resultFromUC(s.r.Resolve(query, topn))
	s.obs.resolved(start, res)
	return res
}

// Reset forgets every concept shown in this session.
func (s *Session) Reset() {
	s.r.Reset()
}

// Seen returns the concepts shown so far, oldest first.
func (s *Session) Seen() []string {
	return s.r.Seen()
}

// Active reports whether the session has resolved a query since the last reset.
func (s *Session) Active() bool {
	return s.r.State() == resolve.StateActive
}
