package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/config"
	logpkg "github.com/kailas-cloud/beliefgraph/internal/logger"
	"github.com/kailas-cloud/beliefgraph/internal/metrics"
	"github.com/kailas-cloud/beliefgraph/internal/version"
)

// Global flags
var (
	envName    string
	configFile string
	logLevel   string
)

// Loaded by PersistentPreRunE for every subcommand.
var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "beliefctl",
	Short: "Build, train and query the belief graph",
	Long: `beliefctl runs the offline belief graph pipeline:

  build    corpus files -> co-occurrence graph (optionally mirrored to Neo4j)
  train    graph -> node2vec embedding model
  query    interactive resolver over the trained model
  similar  raw nearest neighbours of one concept`,
	Version:           version.Version,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	var err error
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load(envName)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err = logpkg.NewLogger("cli", level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	// Registered so stage timings are recorded; the CLI never serves them.
	metrics.RegisterTrainingMetrics()
	metrics.RegisterResolverMetrics()
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "explicit config file, overrides --env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(similarCmd)
}
