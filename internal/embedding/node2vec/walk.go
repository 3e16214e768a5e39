package node2vec

import (
	"context"
	"math/rand"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
)

// walker samples node2vec walks over an index-based copy of the graph.
// Node indices follow lexicographic name order, so every neighbour list is
// sorted ascending and membership is a binary search.
type walker struct {
	names   []string
	nbrs    [][]int32
	weights [][]float64
	cum     [][]float64 // cumulative weights for first-order steps
	p, q    float64
}

func newWalker(g *graph.Graph, p, q float64) *walker {
	var names []string
	for _, n := range g.Nodes() {
		if g.Degree(n) > 0 {
			names = append(names, n)
		}
	}
	idx := make(map[string]int32, len(names))
	for i, n := range names {
		idx[n] = int32(i)
	}

	w := &walker{
		names:   names,
		nbrs:    make([][]int32, len(names)),
		weights: make([][]float64, len(names)),
		cum:     make([][]float64, len(names)),
		p:       p,
		q:       q,
	}
	for i, n := range names {
		adj := g.Neighbors(n)
		w.nbrs[i] = make([]int32, len(adj))
		w.weights[i] = make([]float64, len(adj))
		w.cum[i] = make([]float64, len(adj))
		var total float64
		for j, a := range adj {
			w.nbrs[i][j] = idx[a.Name]
			w.weights[i][j] = float64(a.Weight)
			total += float64(a.Weight)
			w.cum[i][j] = total
		}
	}
	return w
}

func (w *walker) isNeighbor(a, b int32) bool {
	list := w.nbrs[a]
	k := sort.Search(len(list), func(i int) bool { return list[i] >= b })
	return k < len(list) && list[k] == b
}

// firstOrder picks a neighbour of cur with probability proportional to weight.
func (w *walker) firstOrder(rng *rand.Rand, cur int32) int32 {
	cum := w.cum[cur]
	r := rng.Float64() * cum[len(cum)-1]
	k := sort.SearchFloat64s(cum, r)
	if k < len(cum) && cum[k] == r {
		k++
	}
	if k >= len(cum) {
		k = len(cum) - 1
	}
	return w.nbrs[cur][k]
}

// secondOrder applies the p/q bias relative to the previous node.
func (w *walker) secondOrder(rng *rand.Rand, prev, cur int32, scratch []float64) int32 {
	nbrs := w.nbrs[cur]
	scratch = scratch[:0]
	var total float64
	for j, x := range nbrs {
		wt := w.weights[cur][j]
		switch {
		case x == prev:
			wt /= w.p
		case !w.isNeighbor(prev, x):
			wt /= w.q
		}
		total += wt
		scratch = append(scratch, total)
	}
	r := rng.Float64() * total
	for j, c := range scratch {
		if r < c {
			return nbrs[j]
		}
	}
	return nbrs[len(nbrs)-1]
}

func (w *walker) walk(rng *rand.Rand, start int32, length int, scratch []float64) []int32 {
	path := make([]int32, 1, length)
	path[0] = start
	unbiased := w.p == 1 && w.q == 1
	for len(path) < length {
		cur := path[len(path)-1]
		if len(w.nbrs[cur]) == 0 {
			break
		}
		var next int32
		if len(path) == 1 || unbiased {
			next = w.firstOrder(rng, cur)
		} else {
			next = w.secondOrder(rng, path[len(path)-2], cur, scratch)
		}
		path = append(path, next)
	}
	return path
}

// generateWalks runs numWalks rounds; every round starts one walk from every
// node in a shuffled order. Each round has its own RNG derived from seed and
// writes into its own slots, so the result does not depend on workers.
func (w *walker) generateWalks(ctx context.Context, cfg Config) ([][]int32, error) {
	n := len(w.names)
	walks := make([][]int32, cfg.NumWalks*n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for round := 0; round < cfg.NumWalks; round++ {
		round := round
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(cfg.Seed + int64(round)*7919))
			order := rng.Perm(n)
			scratch := make([]float64, 0, 16)
			for i, start := range order {
				walks[round*n+i] = w.walk(rng, int32(start), cfg.WalkLength, scratch)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return walks, nil
}
