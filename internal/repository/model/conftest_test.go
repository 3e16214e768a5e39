package model

import (
	"context"
	"testing"

	"github.com/kailas-cloud/beliefgraph/internal/db"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
)

// mockStore is an in-memory implementation of the consumer interface.
type mockStore struct {
	kv     map[string][]byte
	hashes map[string]map[string]string

	setErr  error
	getErr  error
	hsetErr error
}

func newMockStore() *mockStore {
	return &mockStore{kv: map[string][]byte{}, hashes: map[string]map[string]string{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.kv[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return m.hashes[key], nil
}

func testModel(t *testing.T) *embedding.Model {
	t.Helper()
	m, err := embedding.NewModel(
		[]string{"vaccines", "vaccine mandates", "moon landing"},
		[][]float32{{1, 0, 0.1}, {0.9, 0.1, 0.1}, {0, 1, 0}},
	)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func assertSameModel(t *testing.T, got, want *embedding.Model) {
	t.Helper()
	if got.Len() != want.Len() || got.Dimensions() != want.Dimensions() {
		t.Fatalf("shape mismatch: %dx%d vs %dx%d", got.Len(), got.Dimensions(), want.Len(), want.Dimensions())
	}
	for _, name := range want.Vocabulary() {
		a, _ := got.Vector(name)
		b, _ := want.Vector(name)
		for i := range b {
			if a[i] != b[i] {
				t.Fatalf("vector %q differs at %d", name, i)
			}
		}
	}
}
