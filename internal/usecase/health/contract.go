package health

import "context"

// StorePinger checks KV store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ModelSizer reports how many nodes the loaded model serves.
type ModelSizer interface {
	Len() int
}
