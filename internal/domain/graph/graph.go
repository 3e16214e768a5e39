// Package graph is the weighted, undirected concept co-occurrence graph.
package graph

import (
	"fmt"
	"sort"
)

// Edge is an undirected weighted edge. Source sorts before Target.
type Edge struct {
	Source string
	Target string
	Weight int
}

// Neighbor is an adjacent node and the weight of the connecting edge.
type Neighbor struct {
	Name   string
	Weight int
}

// Stats summarises a graph.
type Stats struct {
	Nodes       int
	Edges       int
	Isolated    int
	TotalWeight int
}

// Graph is an undirected graph over concept labels.
// The zero value is not usable; create graphs with New or Build.
type Graph struct {
	adj map[string]map[string]int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[string]map[string]int)}
}

// AddNode inserts a node if absent.
func (g *Graph) AddNode(name string) {
	if _, ok := g.adj[name]; !ok {
		g.adj[name] = make(map[string]int)
	}
}

// SetEdge creates or overwrites the edge between a and b.
func (g *Graph) SetEdge(a, b string, weight int) error {
	if a == "" || b == "" {
		return fmt.Errorf("edge %q-%q: empty node name", a, b)
	}
	if a == b {
		return fmt.Errorf("self edge on %q", a)
	}
	if weight < 1 {
		return fmt.Errorf("edge %q-%q: weight must be >= 1, got %d", a, b, weight)
	}
	g.AddNode(a)
	g.AddNode(b)
	g.adj[a][b] = weight
	g.adj[b][a] = weight
	return nil
}

// HasNode reports whether name is a node of the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.adj[name]
	return ok
}

// Weight returns the weight of the a-b edge, or 0 if there is none.
func (g *Graph) Weight(a, b string) int {
	return g.adj[a][b]
}

// Degree returns the number of distinct neighbours of name.
func (g *Graph) Degree(name string) int {
	return len(g.adj[name])
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.adj) }

// Nodes returns all node names in lexicographic order.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.adj))
	for n := range g.adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Neighbors returns the neighbours of name ordered by name.
func (g *Graph) Neighbors(name string) []Neighbor {
	nbrs := g.adj[name]
	out := make([]Neighbor, 0, len(nbrs))
	for n, w := range nbrs {
		out = append(out, Neighbor{Name: n, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Edges returns every edge once, ordered by (Source, Target).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for a, nbrs := range g.adj {
		for b, w := range nbrs {
			if a < b {
				out = append(out, Edge{Source: a, Target: b, Weight: w})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Isolated returns the nodes without any edge, ordered by name.
func (g *Graph) Isolated() []string {
	var out []string
	for n, nbrs := range g.adj {
		if len(nbrs) == 0 {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// Stats computes node, edge and weight totals.
func (g *Graph) Stats() Stats {
	var s Stats
	s.Nodes = len(g.adj)
	for a, nbrs := range g.adj {
		if len(nbrs) == 0 {
			s.Isolated++
		}
		for b, w := range nbrs {
			if a < b {
				s.Edges++
				s.TotalWeight += w
			}
		}
	}
	return s
}
