package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/repository/corpus"
	"github.com/kailas-cloud/beliefgraph/internal/repository/graphstore"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/training"
)

var (
	buildOut         string
	buildMerged      string
	buildExportNeo4j bool
)

var buildCmd = &cobra.Command{
	Use:   "build [corpus files...]",
	Short: "Build the co-occurrence graph from corpus files",
	Long: `Reads the extracted corpus files (default: corpus.files from config),
counts concept co-occurrences per document and writes the graph as JSON.
Missing files are reported and skipped.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "graph output path (default corpus.graph_path)")
	buildCmd.Flags().StringVar(&buildMerged, "merged", "", "also write the merged corpus to this path")
	buildCmd.Flags().BoolVar(&buildExportNeo4j, "export-neo4j", false, "mirror the graph into Neo4j")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	paths := args
	if len(paths) == 0 {
		paths = cfg.Corpus.Files
	}
	if len(paths) == 0 {
		return errors.New("no corpus files given and corpus.files is empty")
	}
	out := buildOut
	if out == "" {
		out = cfg.Corpus.GraphPath
	}

	var exporter training.GraphExporter
	if buildExportNeo4j || cfg.Neo4j.Enabled {
		driver, err := graphstore.Dial(ctx, graphstore.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		})
		if err != nil {
			return err
		}
		defer func() { _ = driver.Close(ctx) }()
		exporter = graphstore.NewExporter(driver, cfg.Neo4j.Database, cfg.Neo4j.BatchSize, logger)
	}

	loader := corpus.NewLoader(logger)
	svc := training.New(loader, nil, nil, exporter, logger)

	g, report, err := svc.BuildGraph(ctx, paths)
	if g == nil {
		return err
	}
	if werr := writeGraph(out, g); werr != nil {
		return werr
	}
	if err != nil {
		// the graph file is already written; only the export failed
		logger.Error("Graph export failed", zap.String("graph", out), zap.Error(err))
		return err
	}

	if buildMerged != "" {
		if err := writeMerged(cmd, loader, paths, buildMerged); err != nil {
			return err
		}
	}

	st := g.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "graph: %d nodes, %d edges (%d isolated) -> %s\n",
		st.Nodes, st.Edges, st.Isolated, out)
	for _, p := range report.MissingFiles {
		fmt.Fprintf(cmd.OutOrStdout(), "missing: %s\n", p)
	}
	return nil
}

func writeMerged(cmd *cobra.Command, loader *corpus.Loader, paths []string, out string) error {
	docs, _, err := loader.Load(cmd.Context(), paths...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return fmt.Errorf("create merged dir: %w", err)
	}
	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return fmt.Errorf("create merged corpus: %w", err)
	}
	defer f.Close()
	if err := corpus.Merge(f, docs); err != nil {
		return err
	}
	logger.Info("Merged corpus written", zap.String("path", out), zap.Int("documents", len(docs)))
	return nil
}
