package main

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	"github.com/kailas-cloud/beliefgraph/internal/usecase/resolve"
)

func testResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	m, err := embedding.NewModel(
		[]string{"vaccines", "vaccine mandates", "cdc", "moon landing"},
		[][]float32{{1, 0}, {0.95, 0.05}, {0.8, 0.2}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return resolve.NewService(m, domain.DefaultResolverConfig(), zap.NewNop()).NewResolver()
}

func TestRepl_SessionCommands(t *testing.T) {
	in := strings.NewReader("vaccines\n:seen\n:reset\n:seen\nzzzz\n:quit\nnever read\n")
	var out bytes.Buffer

	if err := repl(in, &out, testResolver(t), 0); err != nil {
		t.Fatalf("repl: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		`"vaccines" -> vaccines (substring, neighbourhood exhausted)`,
		"  1. vaccine mandates",
		"ACTIVE: vaccines",
		"session reset",
		"FRESH: ",
		`"zzzz": no matching concept`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "never read") {
		t.Error(":quit should stop reading")
	}
}

func TestRepl_EOF(t *testing.T) {
	var out bytes.Buffer
	if err := repl(strings.NewReader("cdc"), &out, testResolver(t), 1); err != nil {
		t.Fatalf("repl: %v", err)
	}
	if !strings.Contains(out.String(), `"cdc" -> cdc (substring)`) {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
