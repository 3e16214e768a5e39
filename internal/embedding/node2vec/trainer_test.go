package node2vec

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Dimensions = 16
	cfg.WalkLength = 20
	cfg.NumWalks = 40
	cfg.Window = 4
	cfg.Workers = 2
	cfg.Seed = 7
	return cfg
}

func clique(t *testing.T, g *graph.Graph, nodes ...string) {
	t.Helper()
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			mustEdge(t, g, nodes[i], nodes[j], 1)
		}
	}
}

func TestTrain_CoOccurringNodesRankHigher(t *testing.T) {
	g := graph.New()
	health := []string{"vaccines", "vaccine mandates", "bill gates", "big pharma"}
	space := []string{"moon landing", "nasa", "stanley kubrick", "apollo"}
	clique(t, g, health...)
	clique(t, g, space...)
	mustEdge(t, g, "vaccines", "vaccine mandates", 3)

	m, err := New(smallConfig(), nil).Train(context.Background(), g)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if m.Len() != 8 || m.Dimensions() != 16 {
		t.Fatalf("unexpected model shape %dx%d", m.Len(), m.Dimensions())
	}

	inHealth := map[string]bool{}
	for _, n := range health {
		inHealth[n] = true
	}

	top, err := m.MostSimilar("vaccines", 3)
	if err != nil {
		t.Fatalf("MostSimilar: %v", err)
	}
	foundMandates := false
	for _, n := range top {
		if !inHealth[n.Name] {
			t.Errorf("neighbour %q of vaccines comes from the unrelated cluster (top=%v)", n.Name, top)
		}
		if n.Name == "vaccine mandates" {
			foundMandates = true
		}
	}
	if !foundMandates {
		t.Errorf("expected vaccine mandates among top neighbours, got %v", top)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	g := testGraph(t)
	cfg := smallConfig()
	cfg.NumWalks = 5

	a, err := New(cfg, nil).Train(context.Background(), g)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	cfg.Workers = 1
	b, err := New(cfg, nil).Train(context.Background(), g)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	for _, n := range a.Vocabulary() {
		va, _ := a.Vector(n)
		vb, _ := b.Vector(n)
		for i := range va {
			if va[i] != vb[i] {
				t.Fatalf("vector %q differs between runs with the same seed", n)
			}
		}
	}
}

func TestTrain_SkipsIsolated(t *testing.T) {
	cfg := smallConfig()
	cfg.NumWalks = 2
	m, err := New(cfg, nil).Train(context.Background(), testGraph(t))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if m.HasNode("isolated") {
		t.Error("isolated node must not be embedded")
	}
	if !m.HasNode("a") {
		t.Error("connected node missing from model")
	}
}

func TestTrain_EmptyGraph(t *testing.T) {
	tr := New(smallConfig(), nil)

	if _, err := tr.Train(context.Background(), graph.New()); !errors.Is(err, domain.ErrEmptyGraph) {
		t.Errorf("expected ErrEmptyGraph for no nodes, got %v", err)
	}

	g := graph.New()
	g.AddNode("alone")
	if _, err := tr.Train(context.Background(), g); !errors.Is(err, domain.ErrEmptyGraph) {
		t.Errorf("expected ErrEmptyGraph for no edges, got %v", err)
	}
}

func TestTrain_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Window = 0
	if _, err := New(cfg, nil).Train(context.Background(), testGraph(t)); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must be valid: %v", err)
	}
	mutations := map[string]func(*Config){
		"dimensions": func(c *Config) { c.Dimensions = 0 },
		"walk":       func(c *Config) { c.WalkLength = 1 },
		"walks":      func(c *Config) { c.NumWalks = 0 },
		"p":          func(c *Config) { c.P = 0 },
		"negative":   func(c *Config) { c.Negative = 0 },
		"epochs":     func(c *Config) { c.Epochs = 0 },
		"lr":         func(c *Config) { c.MinLearningRate = 1 },
		"workers":    func(c *Config) { c.Workers = 0 },
	}
	for name, mutate := range mutations {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
