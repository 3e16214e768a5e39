package session

import "github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"

// ResolverFactory creates a resolver with an empty seen-set.
type ResolverFactory interface {
	NewResolver() *resolve.Resolver
}
