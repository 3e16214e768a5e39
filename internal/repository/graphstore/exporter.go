// Package graphstore mirrors the co-occurrence graph into Neo4j for
// exploration with Cypher. The resolver never reads from it.
package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
)

// DefaultBatchSize is the number of rows per UNWIND statement.
const DefaultBatchSize = 500

const (
	cypherConstraint = `CREATE CONSTRAINT concept_name IF NOT EXISTS FOR (c:Concept) REQUIRE c.name IS UNIQUE`

	cypherNodes = `UNWIND $rows AS row
MERGE (c:Concept {name: row.name})
SET c.degree = row.degree`

	cypherEdges = `UNWIND $rows AS row
MATCH (a:Concept {name: row.source})
MATCH (b:Concept {name: row.target})
MERGE (a)-[r:CO_OCCURS]-(b)
SET r.weight = row.weight`
)

// Stats counts what an export wrote.
type Stats struct {
	Nodes   int
	Edges   int
	Batches int
}

// Exporter writes graphs to Neo4j.
type Exporter struct {
	opener    SessionOpener
	batchSize int
	logger    *zap.Logger
}

// NewExporter creates an exporter on a live driver.
func NewExporter(driver neo4j.DriverWithContext, database string, batchSize int, logger *zap.Logger) *Exporter {
	return NewExporterWithOpener(&driverOpener{driver: driver, database: database}, batchSize, logger)
}

// NewExporterWithOpener creates an exporter over any session source.
func NewExporterWithOpener(opener SessionOpener, batchSize int, logger *zap.Logger) *Exporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{opener: opener, batchSize: batchSize, logger: logger}
}

// Export merges every node, then every edge. MERGE makes reruns idempotent;
// edge weights are overwritten with the current counts.
func (e *Exporter) Export(ctx context.Context, g *graph.Graph) (Stats, error) {
	sess := e.opener.OpenSession(ctx)
	defer func() { _ = sess.Close(ctx) }()

	if err := sess.ExecuteWrite(ctx, func(tx CypherRunner) error {
		return tx.Run(ctx, cypherConstraint, nil)
	}); err != nil {
		return Stats{}, fmt.Errorf("neo4j constraint: %w", err)
	}

	var stats Stats

	nodes := g.Nodes()
	for start := 0; start < len(nodes); start += e.batchSize {
		end := min(start+e.batchSize, len(nodes))
		rows := make([]map[string]any, 0, end-start)
		for _, n := range nodes[start:end] {
			rows = append(rows, map[string]any{"name": n, "degree": g.Degree(n)})
		}
		if err := e.writeBatch(ctx, sess, cypherNodes, rows); err != nil {
			return stats, fmt.Errorf("neo4j nodes [%d:%d]: %w", start, end, err)
		}
		stats.Nodes += len(rows)
		stats.Batches++
	}

	edges := g.Edges()
	for start := 0; start < len(edges); start += e.batchSize {
		end := min(start+e.batchSize, len(edges))
		rows := make([]map[string]any, 0, end-start)
		for _, ed := range edges[start:end] {
			rows = append(rows, map[string]any{"source": ed.Source, "target": ed.Target, "weight": ed.Weight})
		}
		if err := e.writeBatch(ctx, sess, cypherEdges, rows); err != nil {
			return stats, fmt.Errorf("neo4j edges [%d:%d]: %w", start, end, err)
		}
		stats.Edges += len(rows)
		stats.Batches++
	}

	e.logger.Info("Graph exported to Neo4j",
		zap.Int("nodes", stats.Nodes),
		zap.Int("edges", stats.Edges),
		zap.Int("batches", stats.Batches),
	)
	return stats, nil
}

func (e *Exporter) writeBatch(ctx context.Context, sess Session, cypher string, rows []map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return sess.ExecuteWrite(ctx, func(tx CypherRunner) error {
		return tx.Run(ctx, cypher, map[string]any{"rows": rows})
	})
}
