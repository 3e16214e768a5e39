package beliefgraph

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/beliefgraph/internal/embedding"
	modelrepo "github.com/kailas-cloud/beliefgraph/internal/repository/model"
)

// writeModel saves a small model and returns its path.
func writeModel(t *testing.T) string {
	t.Helper()
	m, err := embedding.NewModel(
		[]string{"vaccines", "vaccine mandates", "cdc", "moon landing"},
		[][]float32{{1, 0}, {0.95, 0.05}, {0.8, 0.2}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.bgem")
	if _, err := modelrepo.NewFileStore(path).Save(context.Background(), m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func openTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := Open(context.Background(), append([]Option{WithModelFile(writeModel(t))}, opts...)...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestOpen_NoSource(t *testing.T) {
	_, err := Open(context.Background())
	if err == nil {
		t.Fatal("expected error when no model source provided")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), WithModelFile(filepath.Join(t.TempDir(), "none.bgem")))
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithModelFile("m.bgem").apply(cfg)
	if cfg.modelPath != "m.bgem" {
		t.Errorf("modelPath = %q", cfg.modelPath)
	}

	WithRedis("localhost:6379", "secret", "prod").apply(cfg)
	if cfg.redisAddrs[0] != "localhost:6379" || cfg.redisPassword != "secret" || cfg.modelName != "prod" {
		t.Errorf("redis options not applied: %+v", cfg)
	}

	WithKeyPrefix("bg:").apply(cfg)
	if cfg.keyPrefix != "bg:" {
		t.Errorf("keyPrefix = %q", cfg.keyPrefix)
	}

	WithResolver(ResolverOptions{DefaultTopN: 3}).apply(cfg)
	if cfg.resolver.DefaultTopN != 3 {
		t.Errorf("resolver = %+v", cfg.resolver)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestClient_Vocabulary(t *testing.T) {
	c := openTestClient(t)
	if n := len(c.Vocabulary()); n != 4 {
		t.Errorf("vocabulary size = %d, want 4", n)
	}
}

func TestClient_Candidates(t *testing.T) {
	c := openTestClient(t)

	got := c.Candidates("Vaccines")
	want := []string{"vaccines", "vaccine mandates"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates = %v, want %v", got, want)
	}
}

func TestClient_Similar(t *testing.T) {
	c := openTestClient(t)

	ns, err := c.Similar("vaccines", 2)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(ns) != 2 || ns[0].Name != "vaccine mandates" || ns[1].Name != "cdc" {
		t.Errorf("unexpected neighbours: %+v", ns)
	}

	if _, err := c.Similar("unknown", 2); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
	if _, err := c.Similar("cdc", 0); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestClient_Health(t *testing.T) {
	c := openTestClient(t)

	h := c.Health(context.Background())
	if h.Status != "ok" || h.Checks["model"] != "ok" || h.Checks["store"] != "skipped" {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestSession_ResolveAndReset(t *testing.T) {
	c := openTestClient(t)
	s := c.NewSession()

	if s.Active() {
		t.Fatal("new session should be fresh")
	}

	res := s.Resolve("vaccines", 5)
	if res.Central != "vaccines" || res.Outcome != OutcomeExhausted {
		t.Errorf("unexpected result: %+v", res)
	}
	if !reflect.DeepEqual(res.Suggestions, []string{"vaccine mandates", "cdc"}) {
		t.Errorf("suggestions = %v", res.Suggestions)
	}
	if !s.Active() || !reflect.DeepEqual(s.Seen(), []string{"vaccines"}) {
		t.Errorf("seen = %v", s.Seen())
	}

	s.Reset()
	if s.Active() || len(s.Seen()) != 0 {
		t.Error("reset should clear the session")
	}
}

func TestSession_NoMatch(t *testing.T) {
	c := openTestClient(t)

	res := c.NewSession().Resolve("zzzz", 3)
	if res.Outcome != OutcomeNoMatch || res.Suggestions == nil || len(res.Suggestions) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSessions_AreIndependent(t *testing.T) {
	c := openTestClient(t)
	a, b := c.NewSession(), c.NewSession()

	a.Resolve("cdc", 1)
	if b.Active() {
		t.Error("sessions must not share seen-sets")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := openTestClient(t, WithPrometheus(reg))

	c.NewSession().Resolve("cdc", 1)
	_, _ = c.Similar("unknown", 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "beliefgraph_sdk_operations_total" {
			found = true
			// load_model/ok, resolve/ok, similar/error
			if len(f.GetMetric()) != 3 {
				t.Errorf("expected 3 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("beliefgraph_sdk_operations_total not found")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}

func TestObserver_ResolveOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := openTestClient(t, WithPrometheus(reg), WithLogger(logger))

	s := c.NewSession()
	s.Resolve("vaccines", 5) // two unseen neighbours -> exhausted
	s.Resolve("zzzz", 5)
	c.NewSession().Resolve("cdc", 1)

	m, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatalf("newSDKMetrics: %v", err)
	}
	for outcome, want := range map[Outcome]float64{
		OutcomeExhausted: 1,
		OutcomeNoMatch:   1,
		OutcomeMatched:   1,
	} {
		if got := testutil.ToFloat64(m.outcomes.WithLabelValues(string(outcome))); got != want {
			t.Errorf("outcome %s = %v, want %v", outcome, got, want)
		}
	}

	out := buf.String()
	for _, want := range []string{
		"neighbourhood exhausted",
		"central=vaccines",
		"no concept matched query",
		"query=zzzz",
		"query resolved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
