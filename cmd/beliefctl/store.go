package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/config"
	"github.com/kailas-cloud/beliefgraph/internal/db"
	dbRedis "github.com/kailas-cloud/beliefgraph/internal/db/redis"
	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	modelrepo "github.com/kailas-cloud/beliefgraph/internal/repository/model"
)

type modelStore interface {
	Load(ctx context.Context) (*embedding.Model, error)
	Save(ctx context.Context, m *embedding.Model) (modelrepo.Info, error)
	Location() string
}

// openModelStore returns the configured model store and, for redis, the
// connection the caller must close.
func openModelStore(ctx context.Context, c *config.Config) (modelStore, db.Store, error) {
	if c.Model.Store != config.ModelStoreRedis {
		return modelrepo.NewFileStore(c.Model.Path), nil, nil
	}

	kv, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    c.Database.Addrs,
		Password: c.Database.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create redis store: %w", err)
	}
	if err := kv.WaitForReady(ctx, time.Duration(c.Database.ReadinessTimeout)*time.Second); err != nil {
		kv.Close()
		return nil, nil, fmt.Errorf("redis not ready: %w", err)
	}
	return modelrepo.NewKVStore(kv, c.Storage.KeyPrefix, c.Model.Name), kv, nil
}

// loadModel opens the store, loads the model and closes the connection.
func loadModel(ctx context.Context, c *config.Config) (*embedding.Model, error) {
	store, kv, err := openModelStore(ctx, c)
	if err != nil {
		return nil, err
	}
	if kv != nil {
		defer kv.Close()
	}
	m, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model from %s: %w", store.Location(), err)
	}
	logger.Debug("Model loaded", zap.String("location", store.Location()), zap.Int("nodes", m.Len()))
	return m, nil
}

func writeGraph(path string, g *graph.Graph) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create graph dir: %w", err)
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create graph file: %w", err)
	}
	if err := g.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close graph file: %w", err)
	}
	return nil
}

func readGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()
	return graph.ReadJSON(f)
}

func writeWord2Vec(path string, m *embedding.Model) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create word2vec dir: %w", err)
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create word2vec file: %w", err)
	}
	if err := embedding.WriteWord2Vec(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close word2vec file: %w", err)
	}
	logger.Info("Word2vec vectors written", zap.String("path", path), zap.Int("nodes", m.Len()))
	return nil
}
