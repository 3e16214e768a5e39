package graph

import "github.com/kailas-cloud/beliefgraph/internal/domain"

// pair is an unordered concept pair stored with a < b.
type pair struct {
	a, b string
}

func newPair(x, y string) pair {
	if y < x {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

// Build counts concept co-occurrences across documents.
//
// Each document contributes at most one to any pair: its concepts are
// deduplicated first. Every non-empty concept becomes a node, including
// concepts that never co-occur with another one.
func Build(docs []domain.Document) *Graph {
	g := New()
	counts := make(map[pair]int)

	for i := range docs {
		set := dedupe(docs[i].Concepts)
		for _, c := range set {
			g.AddNode(c)
		}
		for x := 0; x < len(set); x++ {
			for y := x + 1; y < len(set); y++ {
				counts[newPair(set[x], set[y])]++
			}
		}
	}

	for p, w := range counts {
		// a != b and w >= 1 by construction
		_ = g.SetEdge(p.a, p.b, w)
	}
	return g
}

// dedupe keeps the first occurrence of each non-empty concept.
func dedupe(concepts []string) []string {
	seen := make(map[string]struct{}, len(concepts))
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
