// Package training orchestrates the offline pipeline: corpus to graph, graph
// to embedding model, model to storage.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	"github.com/kailas-cloud/beliefgraph/internal/metrics"
	"github.com/kailas-cloud/beliefgraph/internal/repository/corpus"
	"github.com/kailas-cloud/beliefgraph/internal/repository/model"
)

// Stage labels for TrainingStageDuration.
const (
	StageLoad   = "load"
	StageBuild  = "build"
	StageExport = "export"
	StageTrain  = "train"
	StageSave   = "save"
)

// Service runs pipeline stages and records their metrics.
type Service struct {
	loader   CorpusLoader
	trainer  Trainer
	store    ModelStore
	exporter GraphExporter
	logger   *zap.Logger
}

// New creates a training service. trainer and store may be nil for
// build-only use; exporter may be nil to skip the graph export.
func New(loader CorpusLoader, trainer Trainer, store ModelStore, exporter GraphExporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		loader:   loader,
		trainer:  trainer,
		store:    store,
		exporter: exporter,
		logger:   logger,
	}
}

// BuildGraph loads the corpus and counts concept co-occurrences.
// Missing or malformed sources are skipped by the loader.
func (s *Service) BuildGraph(ctx context.Context, paths []string) (*graph.Graph, corpus.Report, error) {
	start := time.Now()
	docs, report, err := s.loader.Load(ctx, paths...)
	observeStage(StageLoad, start)
	if err != nil {
		return nil, report, fmt.Errorf("load corpus: %w", err)
	}
	metrics.CorpusRecordsTotal.WithLabelValues("loaded").Add(float64(report.Records))
	metrics.CorpusRecordsTotal.WithLabelValues("skipped").Add(float64(report.SkippedRecords))

	start = time.Now()
	g := graph.Build(docs)
	observeStage(StageBuild, start)

	st := g.Stats()
	metrics.GraphSize.WithLabelValues("nodes").Set(float64(st.Nodes))
	metrics.GraphSize.WithLabelValues("edges").Set(float64(st.Edges))
	metrics.GraphSize.WithLabelValues("isolated").Set(float64(st.Isolated))

	s.logger.Info("Graph built",
		zap.Int("documents", len(docs)),
		zap.Int("sources_missing", len(report.MissingFiles)),
		zap.Int("records_skipped", report.SkippedRecords),
		zap.Int("nodes", st.Nodes),
		zap.Int("edges", st.Edges),
		zap.Int("isolated", st.Isolated),
		zap.Int("total_weight", st.TotalWeight),
	)
	if st.Nodes == 0 {
		s.logger.Warn("Graph is empty, training will fail")
	}

	if s.exporter != nil {
		start = time.Now()
		_, err := s.exporter.Export(ctx, g)
		observeStage(StageExport, start)
		if err != nil {
			return g, report, fmt.Errorf("export graph: %w", err)
		}
	}

	return g, report, nil
}

// Train fits the embedding model and persists it.
func (s *Service) Train(ctx context.Context, g *graph.Graph) (*embedding.Model, model.Info, error) {
	m, info, err := s.train(ctx, g)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.TrainingRunsTotal.WithLabelValues(status).Inc()
	return m, info, err
}

func (s *Service) train(ctx context.Context, g *graph.Graph) (*embedding.Model, model.Info, error) {
	if s.trainer == nil || s.store == nil {
		return nil, model.Info{}, errors.New("training service built without trainer or store")
	}

	start := time.Now()
	m, err := s.trainer.Train(ctx, g)
	elapsed := observeStage(StageTrain, start)
	if err != nil {
		s.logger.Error("Training failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, model.Info{}, fmt.Errorf("train: %w", err)
	}
	s.logger.Info("Model trained",
		zap.Int("nodes", m.Len()),
		zap.Int("dimensions", m.Dimensions()),
		zap.Duration("elapsed", elapsed),
	)

	start = time.Now()
	info, err := s.store.Save(ctx, m)
	observeStage(StageSave, start)
	if err != nil {
		return nil, model.Info{}, fmt.Errorf("save model to %s: %w", s.store.Location(), err)
	}
	metrics.ModelVocabularySize.Set(float64(m.Len()))

	s.logger.Info("Model saved",
		zap.String("location", s.store.Location()),
		zap.Int("bytes", info.Bytes),
	)
	return m, info, nil
}

func observeStage(stage string, start time.Time) time.Duration {
	d := time.Since(start)
	metrics.TrainingStageDuration.WithLabelValues(stage).Observe(d.Seconds())
	return d
}
