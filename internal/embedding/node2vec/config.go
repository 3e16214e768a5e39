// Package node2vec trains node embeddings from biased random walks over a
// weighted graph followed by skip-gram with negative sampling.
package node2vec

import "fmt"

// Config holds walk and skip-gram hyperparameters.
type Config struct {
	Dimensions      int
	WalkLength      int
	NumWalks        int
	Window          int
	P               float64 // return parameter
	Q               float64 // in-out parameter
	Negative        int
	Epochs          int
	LearningRate    float64
	MinLearningRate float64
	Workers         int
	Seed            int64
}

// DefaultConfig mirrors the settings the belief graph demo was trained with.
func DefaultConfig() Config {
	return Config{
		Dimensions:      64,
		WalkLength:      30,
		NumWalks:        200,
		Window:          10,
		P:               1,
		Q:               1,
		Negative:        5,
		Epochs:          5,
		LearningRate:    0.025,
		MinLearningRate: 0.0001,
		Workers:         4,
		Seed:            1,
	}
}

// Validate checks that every hyperparameter is usable.
func (c Config) Validate() error {
	switch {
	case c.Dimensions <= 0:
		return fmt.Errorf("dimensions must be > 0, got %d", c.Dimensions)
	case c.WalkLength < 2:
		return fmt.Errorf("walk_length must be >= 2, got %d", c.WalkLength)
	case c.NumWalks <= 0:
		return fmt.Errorf("num_walks must be > 0, got %d", c.NumWalks)
	case c.Window <= 0:
		return fmt.Errorf("window must be > 0, got %d", c.Window)
	case c.P <= 0 || c.Q <= 0:
		return fmt.Errorf("p and q must be > 0, got p=%g q=%g", c.P, c.Q)
	case c.Negative <= 0:
		return fmt.Errorf("negative must be > 0, got %d", c.Negative)
	case c.Epochs <= 0:
		return fmt.Errorf("epochs must be > 0, got %d", c.Epochs)
	case c.LearningRate <= 0 || c.MinLearningRate < 0 || c.MinLearningRate > c.LearningRate:
		return fmt.Errorf("invalid learning rate range [%g, %g]", c.MinLearningRate, c.LearningRate)
	case c.Workers <= 0:
		return fmt.Errorf("workers must be > 0, got %d", c.Workers)
	}
	return nil
}
