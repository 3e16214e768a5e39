package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
)

type fileDTO struct {
	Nodes []string  `json:"nodes"`
	Edges []edgeDTO `json:"edges"`
}

type edgeDTO struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// WriteJSON serialises the graph as {"nodes": [...], "edges": [...]}.
func (g *Graph) WriteJSON(w io.Writer) error {
	edges := g.Edges()
	dto := fileDTO{Nodes: g.Nodes(), Edges: make([]edgeDTO, len(edges))}
	for i, e := range edges {
		dto.Edges[i] = edgeDTO{Source: e.Source, Target: e.Target, Weight: e.Weight}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph written by WriteJSON. Edges that break the graph
// invariants (self edges, weight < 1) are rejected with domain.ErrInvalidGraph.
func ReadJSON(r io.Reader) (*Graph, error) {
	var dto fileDTO
	if err := json.NewDecoder(r).Decode(&dto); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domain.ErrInvalidGraph, err)
	}

	g := New()
	for _, n := range dto.Nodes {
		if n != "" {
			g.AddNode(n)
		}
	}
	for _, e := range dto.Edges {
		if err := g.SetEdge(e.Source, e.Target, e.Weight); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidGraph, err)
		}
	}
	return g, nil
}
