package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
)

var queryTopN int

var queryCmd = &cobra.Command{
	Use:   "query [queries...]",
	Short: "Resolve queries against the trained model",
	Long: `Resolves free-text queries to concepts and prints fresh neighbours.
All queries share one session, so concepts already shown are not repeated.

With arguments, each argument is resolved in order. Without arguments an
interactive prompt reads one query per line. Prompt commands:

  :reset   clear the session
  :seen    list concepts seen in this session
  :quit    exit`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopN, "topn", "n", 0, "suggestions per query (default resolver.default_topn)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	m, err := loadModel(cmd.Context(), &cfg)
	if err != nil {
		return err
	}
	r := resolve.NewService(m, cfg.DomainResolver(), logger).NewResolver()

	if len(args) > 0 {
		for _, q := range args {
			printResult(cmd.OutOrStdout(), r.Resolve(q, queryTopN))
		}
		return nil
	}
	return repl(cmd.InOrStdin(), cmd.OutOrStdout(), r, queryTopN)
}

// repl reads queries line by line until EOF or :quit.
func repl(in io.Reader, out io.Writer, r *resolve.Resolver, topn int) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
		case ":quit", ":q":
			return nil
		case ":reset":
			r.Reset()
			fmt.Fprintln(out, "session reset")
		case ":seen":
			fmt.Fprintf(out, "%s: %s\n", r.State(), strings.Join(r.Seen(), ", "))
		default:
			printResult(out, r.Resolve(line, topn))
		}
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func printResult(out io.Writer, res resolve.Result) {
	switch res.Outcome {
	case resolve.OutcomeNoMatch:
		fmt.Fprintf(out, "%q: no matching concept\n", res.Query)
		return
	case resolve.OutcomeExhausted:
		fmt.Fprintf(out, "%q -> %s (%s, neighbourhood exhausted)\n", res.Query, res.Central, res.Phase)
	default:
		fmt.Fprintf(out, "%q -> %s (%s)\n", res.Query, res.Central, res.Phase)
	}
	for i, s := range res.Suggestions {
		fmt.Fprintf(out, "  %d. %s\n", i+1, s)
	}
}
