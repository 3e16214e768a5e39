package metrics

import "github.com/prometheus/client_golang/prometheus"

// Training pipeline metrics. The CLI records them for a single run; the
// server sets the model gauges once after loading.
var (
	TrainingStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_stage_duration_seconds",
			Help:      "Duration of offline pipeline stages",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"stage"}, // "load" / "build" / "train" / "save" / "export"
	)

	TrainingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_runs_total",
			Help:      "Training runs by status",
		},
		[]string{"status"},
	)

	CorpusRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_records_total",
			Help:      "Corpus records read, by result",
		},
		[]string{"result"}, // "loaded" / "skipped"
	)

	GraphSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_size",
			Help:      "Size of the last built co-occurrence graph",
		},
		[]string{"kind"}, // "nodes" / "edges" / "isolated"
	)

	ModelVocabularySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_vocabulary_size",
			Help:      "Nodes in the loaded embedding model",
		},
	)
)

var trainingMetricsRegistered bool

// RegisterTrainingMetrics registers training and model metrics.
func RegisterTrainingMetrics() {
	if trainingMetricsRegistered {
		return
	}
	prometheus.MustRegister(TrainingStageDuration)
	prometheus.MustRegister(TrainingRunsTotal)
	prometheus.MustRegister(CorpusRecordsTotal)
	prometheus.MustRegister(GraphSize)
	prometheus.MustRegister(ModelVocabularySize)
	trainingMetricsRegistered = true
}
