package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/beliefgraph/internal/db"
	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
)

// store is the consumer interface for model persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// KVStore keeps the model blob and its metadata in Redis.
type KVStore struct {
	store store
	key   string
	now   func() time.Time
}

// NewKVStore creates a store under <prefix>model:<name>.
func NewKVStore(s store, prefix, name string) *KVStore {
	return &KVStore{store: s, key: prefix + "model:" + name, now: time.Now}
}

func (s *KVStore) metaKey() string { return s.key + ":meta" }

// Save writes the blob first and the metadata second, so metadata never
// describes a blob that was not written.
func (s *KVStore) Save(ctx context.Context, m *embedding.Model) (Info, error) {
	data := embedding.Encode(m)
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return Info{}, fmt.Errorf("model SET %s: %w", s.key, err)
	}
	info := infoOf(m, len(data), s.now())
	if err := s.store.HSet(ctx, s.metaKey(), infoToHash(info)); err != nil {
		return Info{}, fmt.Errorf("model HSET %s: %w", s.metaKey(), err)
	}
	return info, nil
}

// Load fetches and decodes the model blob.
func (s *KVStore) Load(ctx context.Context) (*embedding.Model, error) {
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, s.key)
		}
		return nil, fmt.Errorf("model GET %s: %w", s.key, err)
	}
	m, err := embedding.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode model %s: %w", s.key, err)
	}
	return m, nil
}

// Info reads the metadata written by the last Save.
func (s *KVStore) Info(ctx context.Context) (Info, error) {
	fields, err := s.store.HGetAll(ctx, s.metaKey())
	if err != nil {
		return Info{}, fmt.Errorf("model HGETALL %s: %w", s.metaKey(), err)
	}
	if len(fields) == 0 {
		return Info{}, fmt.Errorf("%w: %s", domain.ErrModelNotFound, s.metaKey())
	}
	info, err := infoFromHash(fields)
	if err != nil {
		return Info{}, fmt.Errorf("model meta %s: %w", s.metaKey(), err)
	}
	return info, nil
}

// Location describes where the model lives.
func (s *KVStore) Location() string { return "redis:" + s.key }
