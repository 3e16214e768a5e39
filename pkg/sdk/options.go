package beliefgraph

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	modelPath string

	redisAddrs    []string
	redisPassword string
	keyPrefix     string
	modelName     string

	resolver ResolverOptions

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// ResolverOptions tunes matching and recommendation. Zero fields keep defaults.
type ResolverOptions struct {
	MaxCandidates         int
	NeighborsPerCandidate int
	FuzzyThreshold        float64
	DefaultTopN           int
	MarkSuggestionsSeen   bool
}

// WithModelFile loads the model from a file written by `beliefctl train`.
func WithModelFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.modelPath = path
	})
}

// WithRedis loads the model stored under name in a Redis instance.
func WithRedis(addr, password, name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
		c.modelName = name
	})
}

// WithKeyPrefix overrides the Redis key prefix. Default: "beliefgraph:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithResolver overrides resolver settings for every session.
func WithResolver(o ResolverOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.resolver = o
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
