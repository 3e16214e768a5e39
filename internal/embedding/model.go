// Package embedding holds a trained node embedding and its nearest-neighbour
// queries.
package embedding

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
)

var _ domain.Embeddings = (*Model)(nil)

// Model maps node names to fixed-length vectors. It is immutable after
// construction and safe for concurrent readers.
type Model struct {
	dim     int
	names   []string
	index   map[string]int
	vectors [][]float32
	unit    [][]float32
}

// NewModel builds a model from parallel name/vector slices.
func NewModel(names []string, vectors [][]float32) (*Model, error) {
	if len(names) != len(vectors) {
		return nil, fmt.Errorf("%w: %d names for %d vectors", domain.ErrInvalidModel, len(names), len(vectors))
	}
	m := &Model{
		names:   make([]string, len(names)),
		index:   make(map[string]int, len(names)),
		vectors: make([][]float32, len(vectors)),
		unit:    make([][]float32, len(vectors)),
	}
	copy(m.names, names)

	for i, name := range names {
		if len(name) > maxLabelLen {
			return nil, fmt.Errorf("%w: node label of %d bytes exceeds %d",
				domain.ErrInvalidModel, len(name), maxLabelLen)
		}
		if _, dup := m.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate node %q", domain.ErrInvalidModel, name)
		}
		if i == 0 {
			m.dim = len(vectors[i])
		} else if len(vectors[i]) != m.dim {
			return nil, fmt.Errorf("%w: node %q has %d dims, want %d",
				domain.ErrInvalidModel, name, len(vectors[i]), m.dim)
		}
		m.index[name] = i
		v := make([]float32, len(vectors[i]))
		copy(v, vectors[i])
		m.vectors[i] = v
		m.unit[i] = normalize(v)
	}
	return m, nil
}

// Dimensions returns the vector length.
func (m *Model) Dimensions() int { return m.dim }

// Len returns the vocabulary size.
func (m *Model) Len() int { return len(m.names) }

// Vocabulary returns node names in index order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// HasNode reports whether name has a vector.
func (m *Model) HasNode(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Vector returns a copy of the raw vector for name.
func (m *Model) Vector(name string) ([]float32, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, domain.NewUnknownNode(name)
	}
	out := make([]float32, m.dim)
	copy(out, m.vectors[i])
	return out, nil
}

// MostSimilar returns up to k nodes ordered by descending cosine similarity to
// name, excluding name itself. Equal scores are ordered by name.
func (m *Model) MostSimilar(name string, k int) ([]domain.Neighbor, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, domain.NewUnknownNode(name)
	}
	if k <= 0 {
		return nil, nil
	}

	q := m.unit[i]
	all := make([]domain.Neighbor, 0, len(m.names)-1)
	for j, u := range m.unit {
		if j == i {
			continue
		}
		all = append(all, domain.Neighbor{Name: m.names[j], Score: dot(q, u)})
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].Score != all[b].Score {
			return all[a].Score > all[b].Score
		}
		return all[a].Name < all[b].Name
	})
	if len(all) > k {
		all = all[:k]
	}
	return all, nil
}

// Similarity returns the cosine similarity between two nodes.
func (m *Model) Similarity(a, b string) (float64, error) {
	i, ok := m.index[a]
	if !ok {
		return 0, domain.NewUnknownNode(a)
	}
	j, ok := m.index[b]
	if !ok {
		return 0, domain.NewUnknownNode(b)
	}
	return dot(m.unit[i], m.unit[j]), nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
