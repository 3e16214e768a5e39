package domain

// KeyPrefix namespaces every key written to the KV store.
const KeyPrefix = "beliefgraph:"

// ResolverConfig holds the matching and recommendation knobs of a resolver.
type ResolverConfig struct {
	MaxCandidates         int
	NeighborsPerCandidate int
	FuzzyThreshold        float64
	DefaultTopN           int
	// MarkSuggestionsSeen also records returned neighbours in the seen-set.
	MarkSuggestionsSeen bool
}

// DefaultResolverConfig returns the settings the demo shipped with.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MaxCandidates:         5,
		NeighborsPerCandidate: 2,
		FuzzyThreshold:        0.75,
		DefaultTopN:           5,
	}
}
