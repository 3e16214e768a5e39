package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain/graph"
	"github.com/kailas-cloud/beliefgraph/internal/embedding/node2vec"
	"github.com/kailas-cloud/beliefgraph/internal/repository/corpus"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/training"
)

var (
	trainGraph      string
	trainFromCorpus bool
	trainDimensions int
	trainEpochs     int
	trainSeed       int64
	trainExportW2V  string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the node2vec embedding model",
	Long: `Trains node embeddings on the co-occurrence graph and saves the model to
the configured store. The graph is read from corpus.graph_path; when that
file does not exist (or --from-corpus is set) it is built from the corpus.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainGraph, "graph", "g", "", "graph file (default corpus.graph_path)")
	trainCmd.Flags().BoolVar(&trainFromCorpus, "from-corpus", false, "rebuild the graph from corpus.files")
	trainCmd.Flags().IntVar(&trainDimensions, "dimensions", 0, "override trainer.dimensions")
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 0, "override trainer.epochs")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 0, "override trainer.seed")
	trainCmd.Flags().StringVar(&trainExportW2V, "export-w2v", "", "also write the vectors in word2vec text format")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	n2v := cfg.Node2Vec()
	if trainDimensions > 0 {
		n2v.Dimensions = trainDimensions
	}
	if trainEpochs > 0 {
		n2v.Epochs = trainEpochs
	}
	if trainSeed != 0 {
		n2v.Seed = trainSeed
	}

	store, kv, err := openModelStore(ctx, &cfg)
	if err != nil {
		return err
	}
	if kv != nil {
		defer kv.Close()
	}

	svc := training.New(corpus.NewLoader(logger), node2vec.New(n2v, logger), store, nil, logger)

	g, err := graphForTraining(cmd, svc)
	if err != nil {
		return err
	}

	m, info, err := svc.Train(ctx, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "model: %d nodes x %d dims, %d bytes -> %s\n",
		m.Len(), m.Dimensions(), info.Bytes, store.Location())

	if trainExportW2V != "" {
		if err := writeWord2Vec(trainExportW2V, m); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "word2vec: -> %s\n", trainExportW2V)
	}
	return nil
}

func graphForTraining(cmd *cobra.Command, svc *training.Service) (*graph.Graph, error) {
	path := trainGraph
	if path == "" {
		path = cfg.Corpus.GraphPath
	}
	if !trainFromCorpus {
		g, err := readGraph(path)
		if err == nil {
			logger.Info("Graph loaded", zap.String("path", path), zap.Int("nodes", g.Len()))
			return g, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Info("No graph file, building from corpus", zap.String("path", path))
	}

	g, _, err := svc.BuildGraph(cmd.Context(), cfg.Corpus.Files)
	if err != nil {
		return nil, err
	}
	return g, nil
}
