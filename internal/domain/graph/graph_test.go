package graph

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
)

func TestSetEdge_Rejects(t *testing.T) {
	g := New()
	if err := g.SetEdge("a", "a", 1); err == nil {
		t.Error("expected error for self edge")
	}
	if err := g.SetEdge("a", "b", 0); err == nil {
		t.Error("expected error for zero weight")
	}
	if err := g.SetEdge("", "b", 1); err == nil {
		t.Error("expected error for empty node")
	}
}

func TestNeighbors_Sorted(t *testing.T) {
	g := New()
	_ = g.SetEdge("hub", "zeta", 1)
	_ = g.SetEdge("hub", "alpha", 4)
	_ = g.SetEdge("hub", "mid", 2)

	nbrs := g.Neighbors("hub")
	want := []Neighbor{{"alpha", 4}, {"mid", 2}, {"zeta", 1}}
	if len(nbrs) != len(want) {
		t.Fatalf("expected %d neighbours, got %d", len(want), len(nbrs))
	}
	for i := range want {
		if nbrs[i] != want[i] {
			t.Errorf("neighbour[%d] = %v, want %v", i, nbrs[i], want[i])
		}
	}
	if g.Degree("hub") != 3 {
		t.Errorf("Degree(hub) = %d, want 3", g.Degree("hub"))
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	g := Build(docs(
		[]string{"trump", "trump tower"},
		[]string{"trump", "melania trump", "trump tower"},
		[]string{"isolated"},
	))

	var buf bytes.Buffer
	if err := g.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if got.Stats() != g.Stats() {
		t.Errorf("stats differ: got %+v, want %+v", got.Stats(), g.Stats())
	}
	if got.Weight("trump", "trump tower") != 2 {
		t.Errorf("expected weight 2, got %d", got.Weight("trump", "trump tower"))
	}
	if !got.HasNode("isolated") {
		t.Error("isolated node lost in round trip")
	}
}

func TestReadJSON_InvalidEdge(t *testing.T) {
	tests := map[string]string{
		"self edge":   `{"nodes":["a"],"edges":[{"source":"a","target":"a","weight":1}]}`,
		"zero weight": `{"nodes":["a","b"],"edges":[{"source":"a","target":"b","weight":0}]}`,
		"not json":    `nodes: a`,
	}
	for name, body := range tests {
		body := body
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(body))
			if !errors.Is(err, domain.ErrInvalidGraph) {
				t.Fatalf("expected ErrInvalidGraph, got %v", err)
			}
		})
	}
}
