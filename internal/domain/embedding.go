package domain

// Neighbor is a node returned by a nearest-neighbour query together with its
// cosine similarity to the query node.
type Neighbor struct {
	Name  string
	Score float64
}

// Embeddings is the read-only contract the resolver needs from a trained model.
type Embeddings interface {
	HasNode(name string) bool
	Vector(name string) ([]float32, error)
	MostSimilar(name string, k int) ([]Neighbor, error)
	Vocabulary() []string
}
