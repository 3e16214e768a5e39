package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
)

var similarK int

var similarCmd = &cobra.Command{
	Use:   "similar <concept>",
	Short: "Print the nearest neighbours of one concept",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarK, "top", "k", 10, "number of neighbours")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	m, err := loadModel(cmd.Context(), &cfg)
	if err != nil {
		return err
	}
	neighbors, err := resolve.NewService(m, cfg.DomainResolver(), logger).Similar(args[0], similarK)
	if err != nil {
		return err
	}
	for _, n := range neighbors {
		fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n", n.Score, n.Name)
	}
	return nil
}
