package metrics

import "github.com/prometheus/client_golang/prometheus"

// Resolve outcomes.
const (
	OutcomeMatched   = "matched"
	OutcomeExhausted = "exhausted"
	OutcomeNoMatch   = "no_match"
)

// Candidate matching phases.
const (
	PhaseSubstring = "substring"
	PhaseFuzzy     = "fuzzy"
	PhaseNone      = "none"
)

// Resolver and session metrics.
var (
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Resolve calls by outcome",
		},
		[]string{"outcome"},
	)

	CandidatePhaseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_phase_total",
			Help:      "Candidate lookups by the phase that produced the result",
		},
		[]string{"phase"},
	)

	SuggestionsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggestions_returned",
			Help:      "Number of suggestions returned per resolve call",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Resolver sessions currently held in memory",
		},
	)

	SessionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions removed by the idle sweeper",
		},
	)
)

var resolverMetricsRegistered bool

// RegisterResolverMetrics registers resolver and session metrics. Must be called once from main.
func RegisterResolverMetrics() {
	if resolverMetricsRegistered {
		return
	}
	prometheus.MustRegister(ResolveTotal)
	prometheus.MustRegister(CandidatePhaseTotal)
	prometheus.MustRegister(SuggestionsReturned)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(SessionsEvictedTotal)
	resolverMetricsRegistered = true
}
