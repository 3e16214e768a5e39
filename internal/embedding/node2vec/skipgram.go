package node2vec

import (
	"context"
	"math"
	"math/rand"
)

const (
	unigramTableSize = 1_000_000
	maxExp           = 6.0
)

// skipGram is a single-threaded skip-gram model with negative sampling.
// Training is sequential so that a fixed seed reproduces the same vectors.
type skipGram struct {
	vocab   int
	dim     int
	syn0    []float32
	syn1neg []float32
	table   []int32
	rng     *rand.Rand
}

func newSkipGram(vocab, dim int, counts []int, seed int64) *skipGram {
	sg := &skipGram{
		vocab:   vocab,
		dim:     dim,
		syn0:    make([]float32, vocab*dim),
		syn1neg: make([]float32, vocab*dim),
		rng:     rand.New(rand.NewSource(seed)),
	}
	for i := range sg.syn0 {
		sg.syn0[i] = (sg.rng.Float32() - 0.5) / float32(dim)
	}
	sg.table = unigramTable(counts, unigramTableSize)
	return sg
}

// unigramTable fills a table with word indices proportionally to count^0.75.
func unigramTable(counts []int, size int) []int32 {
	if len(counts) == 0 {
		return nil
	}
	var total float64
	for _, c := range counts {
		total += math.Pow(float64(c), 0.75)
	}
	table := make([]int32, size)
	i := 0
	acc := math.Pow(float64(counts[0]), 0.75) / total
	for a := range table {
		table[a] = int32(i)
		if float64(a)/float64(size) > acc && i < len(counts)-1 {
			i++
			acc += math.Pow(float64(counts[i]), 0.75) / total
		}
	}
	return table
}

func (sg *skipGram) row(m []float32, i int32) []float32 {
	off := int(i) * sg.dim
	return m[off : off+sg.dim]
}

// train runs the configured number of epochs over the walk corpus.
func (sg *skipGram) train(ctx context.Context, walks [][]int32, cfg Config) error {
	var totalWords int64
	for _, w := range walks {
		totalWords += int64(len(w))
	}
	totalWords *= int64(cfg.Epochs)
	if totalWords == 0 {
		return nil
	}

	neu1e := make([]float32, sg.dim)
	var processed int64
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for wi, walk := range walks {
			if wi%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			progress := float64(processed) / float64(totalWords)
			alpha := cfg.LearningRate - (cfg.LearningRate-cfg.MinLearningRate)*progress
			if alpha < cfg.MinLearningRate {
				alpha = cfg.MinLearningRate
			}
			sg.trainWalk(walk, cfg.Window, cfg.Negative, float32(alpha), neu1e)
			processed += int64(len(walk))
		}
	}
	return nil
}

func (sg *skipGram) trainWalk(walk []int32, window, negative int, alpha float32, neu1e []float32) {
	for pos, word := range walk {
		reduced := window - sg.rng.Intn(window)
		for c := pos - reduced; c <= pos+reduced; c++ {
			if c < 0 || c >= len(walk) || c == pos {
				continue
			}
			sg.trainPair(word, walk[c], negative, alpha, neu1e)
		}
	}
}

// trainPair updates the vector of ctxWord towards predicting word.
func (sg *skipGram) trainPair(word, ctxWord int32, negative int, alpha float32, neu1e []float32) {
	l1 := sg.row(sg.syn0, ctxWord)
	for i := range neu1e {
		neu1e[i] = 0
	}

	for d := 0; d <= negative; d++ {
		target := word
		var label float32 = 1
		if d > 0 {
			target = sg.table[sg.rng.Intn(len(sg.table))]
			if target == word {
				continue
			}
			label = 0
		}
		l2 := sg.row(sg.syn1neg, target)

		var f float64
		for i := range l1 {
			f += float64(l1[i]) * float64(l2[i])
		}
		var g float32
		switch {
		case f > maxExp:
			g = (label - 1) * alpha
		case f < -maxExp:
			g = label * alpha
		default:
			g = (label - float32(1/(1+math.Exp(-f)))) * alpha
		}
		for i := range neu1e {
			neu1e[i] += g * l2[i]
		}
		for i := range l2 {
			l2[i] += g * l1[i]
		}
	}
	for i := range l1 {
		l1[i] += neu1e[i]
	}
}

// vectors copies the input embeddings out, one row per word.
func (sg *skipGram) vectors() [][]float32 {
	out := make([][]float32, sg.vocab)
	for i := range out {
		v := make([]float32, sg.dim)
		copy(v, sg.row(sg.syn0, int32(i)))
		out[i] = v
	}
	return out
}
