package training

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	"github.com/kailas-cloud/beliefgraph/internal/metrics"
	"github.com/kailas-cloud/beliefgraph/internal/repository/corpus"
	"github.com/kailas-cloud/beliefgraph/internal/repository/graphstore"
	"github.com/kailas-cloud/beliefgraph/internal/repository/model"
)

// --- Mocks ---

type mockLoader struct {
	docs   []domain.Document
	report corpus.Report
	err    error
	paths  []string
}

func (m *mockLoader) Load(_ context.Context, paths ...string) ([]domain.Document, corpus.Report, error) {
	m.paths = paths
	return m.docs, m.report, m.err
}

type mockTrainer struct {
	model *embedding.Model
	err   error
	got   *graph.Graph
}

func (m *mockTrainer) Train(_ context.Context, g *graph.Graph) (*embedding.Model, error) {
	m.got = g
	return m.model, m.err
}

type mockStore struct {
	saved *embedding.Model
	err   error
}

func (m *mockStore) Save(_ context.Context, em *embedding.Model) (model.Info, error) {
	if m.err != nil {
		return model.Info{}, m.err
	}
	m.saved = em
	return model.Info{Nodes: em.Len(), Dimensions: em.Dimensions(), Bytes: 42}, nil
}

func (m *mockStore) Location() string { return "memory" }

type mockExporter struct {
	calls int
	err   error
}

func (m *mockExporter) Export(_ context.Context, g *graph.Graph) (graphstore.Stats, error) {
	m.calls++
	return graphstore.Stats{Nodes: g.Len()}, m.err
}

func corpusDocs() []domain.Document {
	return []domain.Document{
		{Title: "1", Concepts: []string{"vaccines", "cdc"}},
		{Title: "2", Concepts: []string{"vaccines", "cdc", "fauci"}},
		{Title: "3", Concepts: []string{"moon landing"}},
	}
}

func smallModel(t *testing.T) *embedding.Model {
	t.Helper()
	m, err := embedding.NewModel([]string{"cdc", "vaccines"}, [][]float32{{1, 0}, {0.9, 0.1}})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

// --- Tests ---

func TestBuildGraph(t *testing.T) {
	loader := &mockLoader{docs: corpusDocs(), report: corpus.Report{Records: 3, SkippedRecords: 1}}
	svc := New(loader, nil, nil, nil, nil)

	before := testutil.ToFloat64(metrics.CorpusRecordsTotal.WithLabelValues("skipped"))
	g, report, err := svc.BuildGraph(context.Background(), []string{"a.json", "b.json"})
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(loader.paths) != 2 {
		t.Errorf("loader got paths %v", loader.paths)
	}
	if report.Records != 3 {
		t.Errorf("report not passed through: %+v", report)
	}
	if g.Len() != 4 {
		t.Errorf("nodes = %d, want 4", g.Len())
	}
	if w := g.Weight("cdc", "vaccines"); w != 2 {
		t.Errorf("weight(cdc, vaccines) = %d, want 2", w)
	}
	if v := testutil.ToFloat64(metrics.GraphSize.WithLabelValues("isolated")); v != 1 {
		t.Errorf("isolated gauge = %f, want 1", v)
	}
	if d := testutil.ToFloat64(metrics.CorpusRecordsTotal.WithLabelValues("skipped")) - before; d != 1 {
		t.Errorf("skipped counter moved by %f, want 1", d)
	}
}

func TestBuildGraph_Export(t *testing.T) {
	exp := &mockExporter{}
	svc := New(&mockLoader{docs: corpusDocs()}, nil, nil, exp, nil)

	if _, _, err := svc.BuildGraph(context.Background(), nil); err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if exp.calls != 1 {
		t.Errorf("export calls = %d, want 1", exp.calls)
	}
}

func TestBuildGraph_ExportError(t *testing.T) {
	exp := &mockExporter{err: errors.New("neo4j down")}
	svc := New(&mockLoader{docs: corpusDocs()}, nil, nil, exp, nil)

	g, _, err := svc.BuildGraph(context.Background(), nil)
	if err == nil {
		t.Fatal("expected export error")
	}
	if g == nil {
		t.Error("graph should still be returned when only the export fails")
	}
}

func TestBuildGraph_LoadError(t *testing.T) {
	svc := New(&mockLoader{err: context.Canceled}, nil, nil, nil, nil)

	if _, _, err := svc.BuildGraph(context.Background(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTrain(t *testing.T) {
	m := smallModel(t)
	trainer := &mockTrainer{model: m}
	store := &mockStore{}
	svc := New(nil, trainer, store, nil, nil)
	g := graph.Build(corpusDocs())

	before := testutil.ToFloat64(metrics.TrainingRunsTotal.WithLabelValues("ok"))
	got, info, err := svc.Train(context.Background(), g)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got != m || store.saved != m || trainer.got != g {
		t.Error("model did not flow from trainer to store")
	}
	if info.Bytes != 42 || info.Nodes != 2 {
		t.Errorf("unexpected info: %+v", info)
	}
	if d := testutil.ToFloat64(metrics.TrainingRunsTotal.WithLabelValues("ok")) - before; d != 1 {
		t.Errorf("ok runs moved by %f, want 1", d)
	}
	if v := testutil.ToFloat64(metrics.ModelVocabularySize); v != 2 {
		t.Errorf("vocabulary gauge = %f, want 2", v)
	}
}

func TestTrain_TrainerError(t *testing.T) {
	store := &mockStore{}
	svc := New(nil, &mockTrainer{err: domain.ErrEmptyGraph}, store, nil, nil)

	before := testutil.ToFloat64(metrics.TrainingRunsTotal.WithLabelValues("error"))
	_, _, err := svc.Train(context.Background(), graph.New())
	if !errors.Is(err, domain.ErrEmptyGraph) {
		t.Errorf("expected ErrEmptyGraph, got %v", err)
	}
	if store.saved != nil {
		t.Error("nothing should be saved after a failed training")
	}
	if d := testutil.ToFloat64(metrics.TrainingRunsTotal.WithLabelValues("error")) - before; d != 1 {
		t.Errorf("error runs moved by %f, want 1", d)
	}
}

func TestTrain_SaveError(t *testing.T) {
	svc := New(nil, &mockTrainer{model: smallModel(t)}, &mockStore{err: errors.New("disk full")}, nil, nil)

	if _, _, err := svc.Train(context.Background(), graph.New()); err == nil {
		t.Fatal("expected save error")
	}
}

func TestTrain_NotConfigured(t *testing.T) {
	svc := New(&mockLoader{}, nil, nil, nil, nil)

	if _, _, err := svc.Train(context.Background(), graph.New()); err == nil {
		t.Fatal("expected error without trainer")
	}
}
