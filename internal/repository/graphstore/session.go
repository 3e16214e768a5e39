package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// CypherRunner runs one statement inside a transaction.
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

// Session is the slice of a neo4j session the exporter needs.
type Session interface {
	ExecuteWrite(ctx context.Context, work func(tx CypherRunner) error) error
	Close(ctx context.Context) error
}

// SessionOpener opens write sessions.
type SessionOpener interface {
	OpenSession(ctx context.Context) Session
}

// driverOpener opens sessions on a real driver.
type driverOpener struct {
	driver   neo4j.DriverWithContext
	database string
}

func (o *driverOpener) OpenSession(ctx context.Context) Session {
	return &driverSession{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: o.database,
	})}
}

type driverSession struct {
	sess neo4j.SessionWithContext
}

func (s *driverSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) error) error {
	_, err := s.sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(&txRunner{tx: tx})
	})
	return err //nolint:wrapcheck // callers add context
}

func (s *driverSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx) //nolint:wrapcheck // delegating
}

type txRunner struct {
	tx neo4j.ManagedTransaction
}

func (r *txRunner) Run(ctx context.Context, cypher string, params map[string]any) error {
	res, err := r.tx.Run(ctx, cypher, params)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if _, err := res.Consume(ctx); err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	return nil
}

// Config holds connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Dial connects to Neo4j and verifies connectivity. The caller closes the
// returned driver.
func Dial(ctx context.Context, cfg Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j verify: %w", err)
	}
	return driver, nil
}
