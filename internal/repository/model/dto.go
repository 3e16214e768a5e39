package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/beliefgraph/internal/embedding"
)

// Info describes a persisted model without decoding it.
type Info struct {
	Nodes      int
	Dimensions int
	Bytes      int
	SavedAt    time.Time
}

func infoOf(m *embedding.Model, size int, now time.Time) Info {
	return Info{Nodes: m.Len(), Dimensions: m.Dimensions(), Bytes: size, SavedAt: now.UTC()}
}

func infoToHash(i Info) map[string]string {
	return map[string]string{
		"nodes":      strconv.Itoa(i.Nodes),
		"dimensions": strconv.Itoa(i.Dimensions),
		"bytes":      strconv.Itoa(i.Bytes),
		"saved_at":   i.SavedAt.Format(time.RFC3339),
	}
}

func infoFromHash(m map[string]string) (Info, error) {
	var (
		i   Info
		err error
	)
	if i.Nodes, err = strconv.Atoi(m["nodes"]); err != nil {
		return Info{}, fmt.Errorf("nodes: %w", err)
	}
	if i.Dimensions, err = strconv.Atoi(m["dimensions"]); err != nil {
		return Info{}, fmt.Errorf("dimensions: %w", err)
	}
	if i.Bytes, err = strconv.Atoi(m["bytes"]); err != nil {
		return Info{}, fmt.Errorf("bytes: %w", err)
	}
	if i.SavedAt, err = time.Parse(time.RFC3339, m["saved_at"]); err != nil {
		return Info{}, fmt.Errorf("saved_at: %w", err)
	}
	return i, nil
}
