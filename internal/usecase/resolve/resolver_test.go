package resolve

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/embedding"
)

// fakeModel returns the first k entries of a fixed neighbour list.
type fakeModel struct {
	neighbors map[string][]domain.Neighbor
	calls     map[string]int
}

func (f *fakeModel) MostSimilar(name string, k int) ([]domain.Neighbor, error) {
	if f.calls != nil {
		f.calls[name]++
	}
	list, ok := f.neighbors[name]
	if !ok {
		return nil, domain.NewUnknownNode(name)
	}
	if k < len(list) {
		list = list[:k]
	}
	return list, nil
}

func (f *fakeModel) vocab() []string {
	out := make([]string, 0, len(f.neighbors))
	for name := range f.neighbors {
		out = append(out, name)
	}
	return out
}

func politicsModel() *fakeModel {
	return &fakeModel{neighbors: map[string][]domain.Neighbor{
		"trump": {
			{Name: "donald trump", Score: 0.9},
			{Name: "white house", Score: 0.85},
			{Name: "trump tower", Score: 0.8},
		},
		"trump tower": {
			{Name: "trump", Score: 0.95},
			{Name: "donald trump", Score: 0.7},
		},
		"donald trump": {
			{Name: "trump", Score: 0.9},
			{Name: "melania trump", Score: 0.6},
		},
		"melania trump": {
			{Name: "donald trump", Score: 0.6},
			{Name: "election", Score: 0.5},
		},
		"white house": {
			{Name: "election", Score: 0.7},
			{Name: "donald trump", Score: 0.65},
		},
		"election": {
			{Name: "white house", Score: 0.7},
			{Name: "vaccines", Score: 0.1},
		},
		"vaccines": {
			{Name: "vaccine mandates", Score: 0.92},
			{Name: "election", Score: 0.1},
		},
		"vaccine mandates": {
			{Name: "vaccines", Score: 0.92},
			{Name: "election", Score: 0.2},
		},
	}}
}

func newTestResolver(model *fakeModel, markSeen bool) *Resolver {
	cfg := domain.DefaultResolverConfig()
	cfg.MarkSuggestionsSeen = markSeen
	return NewResolver(NewMatcher(model.vocab(), cfg.FuzzyThreshold), model, cfg, zap.NewNop())
}

func TestResolve_TrumpScenario(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	res := r.Resolve("trump", 5)

	if res.Central != "trump" {
		t.Fatalf("central = %q, want trump", res.Central)
	}
	wantCandidates := []string{"trump", "trump tower", "donald trump", "melania trump"}
	if !reflect.DeepEqual(res.Candidates, wantCandidates) {
		t.Errorf("candidates = %v, want %v", res.Candidates, wantCandidates)
	}
	if !reflect.DeepEqual(r.Seen(), []string{"trump"}) {
		t.Errorf("seen = %v, want [trump]", r.Seen())
	}
	if res.Phase != PhaseSubstring {
		t.Errorf("phase = %q", res.Phase)
	}
}

func TestResolve_PoolsNeighboursAcrossCandidates(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	res := r.Resolve("trump", 5)

	// Pool: donald .9, white house .85, donald .7, donald .6, melania .6,
	// election .5; "trump" dropped as seen; repeats suppressed.
	want := []string{"donald trump", "white house", "melania trump", "election"}
	if !reflect.DeepEqual(res.Suggestions, want) {
		t.Fatalf("suggestions = %v, want %v", res.Suggestions, want)
	}
	if res.Outcome != OutcomeExhausted {
		t.Errorf("outcome = %q, want exhausted (4 < 5)", res.Outcome)
	}
}

func TestResolve_OnlyTopTwoNeighboursPerCandidate(t *testing.T) {
	model := politicsModel()
	model.calls = map[string]int{}
	r := newTestResolver(model, false)

	res := r.Resolve("trump", 5)

	// "trump tower" is the third neighbour of trump and must not surface.
	if contains(res.Suggestions, "trump tower") {
		t.Errorf("suggestions %v contain a third-ranked neighbour", res.Suggestions)
	}
	for _, c := range res.Candidates {
		if model.calls[c] != 1 {
			t.Errorf("candidate %q queried %d times, want 1", c, model.calls[c])
		}
	}
}

func TestResolve_RespectsTopN(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	for _, topn := range []int{1, 2, 3, 10} {
		r.Reset()
		res := r.Resolve("trump", topn)
		if len(res.Suggestions) > topn {
			t.Errorf("topn %d: got %d suggestions", topn, len(res.Suggestions))
		}
	}

	r.Reset()
	res := r.Resolve("trump", 2)
	if !reflect.DeepEqual(res.Suggestions, []string{"donald trump", "white house"}) {
		t.Errorf("got %v", res.Suggestions)
	}
	if res.Outcome != OutcomeMatched {
		t.Errorf("outcome = %q, want matched", res.Outcome)
	}
}

func TestResolve_HugeTopNIsBoundedByPool(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	res := r.Resolve("trump", math.MaxInt)

	want := []string{"donald trump", "white house", "melania trump", "election"}
	if !reflect.DeepEqual(res.Suggestions, want) {
		t.Fatalf("suggestions = %v, want %v", res.Suggestions, want)
	}
	if res.Outcome != OutcomeExhausted {
		t.Errorf("outcome = %q, want exhausted", res.Outcome)
	}
	if !reflect.DeepEqual(r.Seen(), []string{"trump"}) {
		t.Errorf("seen = %v, want [trump]", r.Seen())
	}
}

func TestResolve_DefaultTopN(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	res := r.Resolve("vaccines", 0)
	if len(res.Suggestions) > 5 {
		t.Fatalf("default topn exceeded: %v", res.Suggestions)
	}
	if res.Outcome != OutcomeExhausted {
		t.Errorf("outcome = %q, want exhausted", res.Outcome)
	}
}

func TestResolve_NoMatchIsIdempotent(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	for i := 0; i < 2; i++ {
		res := r.Resolve("xyzzy", 5)
		if res.Suggestions == nil || len(res.Suggestions) != 0 {
			t.Fatalf("call %d: suggestions = %#v, want empty non-nil", i, res.Suggestions)
		}
		if res.Outcome != OutcomeNoMatch {
			t.Errorf("call %d: outcome = %q", i, res.Outcome)
		}
		if res.Central != "" {
			t.Errorf("call %d: central = %q", i, res.Central)
		}
	}
	if r.State() != StateFresh {
		t.Errorf("state = %s, want FRESH", r.State())
	}
	if len(r.Seen()) != 0 {
		t.Errorf("seen = %v, want empty", r.Seen())
	}
}

func TestResolve_NoMatchKeepsActiveSeenSet(t *testing.T) {
	r := newTestResolver(politicsModel(), false)
	r.Resolve("trump", 5)
	before := r.Seen()

	r.Resolve("xyzzy", 5)

	if !reflect.DeepEqual(r.Seen(), before) {
		t.Errorf("seen changed on no-match: %v -> %v", before, r.Seen())
	}
}

func TestResolve_RecordsRawQuery(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	res := r.Resolve("Vaccines", 5)

	if res.Central != "vaccines" {
		t.Fatalf("central = %q, want vaccines", res.Central)
	}
	if !reflect.DeepEqual(r.Seen(), []string{"Vaccines", "vaccines"}) {
		t.Errorf("seen = %v, want [Vaccines vaccines]", r.Seen())
	}
	if contains(res.Suggestions, "vaccines") {
		t.Errorf("central node suggested: %v", res.Suggestions)
	}
}

func TestResolve_SeenSetIsMonotonic(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	var centrals []string
	prev := 0
	for i := 0; i < 6; i++ {
		res := r.Resolve("trump", 5)
		seen := r.Seen()
		if len(seen) < prev {
			t.Fatalf("seen-set shrank: %d -> %d", prev, len(seen))
		}
		prev = len(seen)
		if res.Central != "" {
			centrals = append(centrals, res.Central)
		}
		for _, c := range centrals {
			if !contains(seen, c) {
				t.Fatalf("central %q missing from seen %v", c, seen)
			}
		}
	}

	// Repeated queries drift across the candidates and then run dry.
	want := []string{"trump", "trump tower", "donald trump", "melania trump"}
	if !reflect.DeepEqual(centrals, want) {
		t.Errorf("centrals = %v, want %v", centrals, want)
	}
}

func TestResolve_ResetAllowsCentralAgain(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	first := r.Resolve("trump", 5)
	second := r.Resolve("trump", 5)
	if second.Central == first.Central {
		t.Fatalf("central %q chosen twice without reset", first.Central)
	}

	r.Reset()
	if r.State() != StateFresh {
		t.Fatalf("state after reset = %s", r.State())
	}

	again := r.Resolve("trump", 5)
	if again.Central != first.Central {
		t.Errorf("central after reset = %q, want %q", again.Central, first.Central)
	}
	if !reflect.DeepEqual(again.Suggestions, first.Suggestions) {
		t.Errorf("suggestions after reset = %v, want %v", again.Suggestions, first.Suggestions)
	}
}

func TestResolve_StateTransitions(t *testing.T) {
	r := newTestResolver(politicsModel(), false)
	if r.State() != StateFresh {
		t.Fatalf("new resolver state = %s", r.State())
	}
	r.Resolve("election", 5)
	if r.State() != StateActive {
		t.Fatalf("state after match = %s", r.State())
	}
	r.Reset()
	if r.State() != StateFresh {
		t.Fatalf("state after reset = %s", r.State())
	}
}

func TestResolve_SuggestionsNotMarkedSeenByDefault(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	first := r.Resolve("vaccines", 5)
	if !contains(first.Suggestions, "vaccine mandates") {
		t.Fatalf("suggestions = %v", first.Suggestions)
	}
	if contains(r.Seen(), "vaccine mandates") {
		t.Errorf("suggestion leaked into seen-set: %v", r.Seen())
	}

	second := r.Resolve("election", 5)
	if !contains(second.Suggestions, "vaccines") && !contains(second.Suggestions, "white house") {
		t.Errorf("second suggestions = %v", second.Suggestions)
	}
}

func TestResolve_MarkSuggestionsSeenPolicy(t *testing.T) {
	r := newTestResolver(politicsModel(), true)

	first := r.Resolve("trump", 5)
	seen := r.Seen()
	for _, s := range first.Suggestions {
		if !contains(seen, s) {
			t.Errorf("suggestion %q not marked seen: %v", s, seen)
		}
	}

	r2 := newTestResolver(politicsModel(), true)
	r2.Resolve("vaccines", 5)
	res := r2.Resolve("vaccine", 5)
	// "vaccine mandates" was suggested and is now excluded from candidates.
	if res.Outcome != OutcomeNoMatch {
		t.Errorf("outcome = %q, want no_match once every match is seen", res.Outcome)
	}
}

func TestResolve_UnknownCandidateIsSkipped(t *testing.T) {
	model := politicsModel()
	cfg := domain.DefaultResolverConfig()
	vocab := append(model.vocab(), "ghost")
	r := NewResolver(NewMatcher(vocab, cfg.FuzzyThreshold), model, cfg, zap.NewNop())

	res := r.Resolve("ghost", 5)

	if res.Central != "ghost" {
		t.Fatalf("central = %q", res.Central)
	}
	if len(res.Suggestions) != 0 || res.Outcome != OutcomeExhausted {
		t.Errorf("got %v / %q, want empty exhausted result", res.Suggestions, res.Outcome)
	}
}

func TestResolve_FuzzyCentral(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	res := r.Resolve("electon", 5)

	if res.Central != "election" || res.Phase != PhaseFuzzy {
		t.Fatalf("central = %q phase = %q, want election via fuzzy", res.Central, res.Phase)
	}
}

func TestResolve_ConcurrentSessionsAreIndependent(t *testing.T) {
	model := politicsModel()
	cfg := domain.DefaultResolverConfig()
	matcher := NewMatcher(model.vocab(), cfg.FuzzyThreshold)

	resolvers := make([]*Resolver, 8)
	for i := range resolvers {
		resolvers[i] = NewResolver(matcher, model, cfg, zap.NewNop())
	}

	var wg sync.WaitGroup
	results := make([]Result, len(resolvers))
	for i, r := range resolvers {
		i, r := i, r
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.Resolve("trump", 5)
		}()
	}
	wg.Wait()

	for i, res := range results {
		if res.Central != "trump" {
			t.Errorf("session %d: central = %q, want trump", i, res.Central)
		}
	}
}

func TestResolve_ConcurrentCallersOnOneSession(t *testing.T) {
	r := newTestResolver(politicsModel(), false)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%5 == 0 {
				r.Reset()
				return
			}
			res := r.Resolve(fmt.Sprintf("trump %d", i%3), 3)
			if len(res.Suggestions) > 3 {
				t.Errorf("length bound violated: %v", res.Suggestions)
			}
		}()
	}
	wg.Wait()
}

func TestResolve_WithTrainedModelVectors(t *testing.T) {
	names := []string{"vaccines", "vaccine mandates", "moon landing", "nasa"}
	vectors := [][]float32{
		{1, 0.1, 0},
		{0.95, 0.15, 0},
		{0, 0.1, 1},
		{0, 0.2, 0.9},
	}
	m, err := embedding.NewModel(names, vectors)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	cfg := domain.DefaultResolverConfig()
	r := NewResolver(NewMatcher(m.Vocabulary(), cfg.FuzzyThreshold), m, cfg, zap.NewNop())

	res := r.Resolve("vaccines", 2)

	if len(res.Suggestions) == 0 || res.Suggestions[0] != "vaccine mandates" {
		t.Fatalf("suggestions = %v, want vaccine mandates first", res.Suggestions)
	}
	var unknown *domain.UnknownNodeError
	if _, err := m.MostSimilar("flat earth", 2); !errors.As(err, &unknown) {
		t.Errorf("expected UnknownNodeError, got %v", err)
	}
}
