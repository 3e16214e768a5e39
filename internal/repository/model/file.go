// Package model persists trained embedding models.
package model

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
)

// FileStore keeps the model in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

// Save writes to a temporary file next to the target and renames it into place.
func (s *FileStore) Save(ctx context.Context, m *embedding.Model) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	data := embedding.Encode(m)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Info{}, fmt.Errorf("model dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return Info{}, fmt.Errorf("model temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Info{}, fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Info{}, fmt.Errorf("close model: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return Info{}, fmt.Errorf("rename model: %w", err)
	}
	return infoOf(m, len(data), time.Now()), nil
}

// Load reads and decodes the model file.
func (s *FileStore) Load(ctx context.Context) (*embedding.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, s.path)
		}
		return nil, fmt.Errorf("read model %s: %w", s.path, err)
	}
	m, err := embedding.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode model %s: %w", s.path, err)
	}
	return m, nil
}

// Location describes where the model lives.
func (s *FileStore) Location() string { return s.path }
