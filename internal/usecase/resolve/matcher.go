package resolve

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kailas-cloud/beliefgraph/internal/domain/concept"
)

// Matcher maps free text onto vocabulary labels. It is immutable and safe to
// share between resolvers built over the same model.
type Matcher struct {
	labels    []string
	lower     []string
	runes     [][]string
	threshold float64
}

// NewMatcher indexes vocab for matching. threshold is the minimum fuzzy ratio.
func NewMatcher(vocab []string, threshold float64) *Matcher {
	m := &Matcher{
		labels:    make([]string, 0, len(vocab)),
		lower:     make([]string, 0, len(vocab)),
		runes:     make([][]string, 0, len(vocab)),
		threshold: threshold,
	}
	seen := make(map[string]struct{}, len(vocab))
	for _, label := range vocab {
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		l := strings.ToLower(label)
		m.labels = append(m.labels, label)
		m.lower = append(m.lower, l)
		m.runes = append(m.runes, splitRunes(l))
	}
	return m
}

// Len returns the number of indexed labels.
func (m *Matcher) Len() int { return len(m.labels) }

// FindCandidateNodes returns up to maxCandidates labels matching query.
func (m *Matcher) FindCandidateNodes(query string, maxCandidates int) []string {
	out, _ := m.find(query, maxCandidates, nil)
	return out
}

// find runs the substring phase and, only when it yields nothing, the fuzzy
// phase. Labels for which skip returns true are never candidates.
func (m *Matcher) find(query string, maxCandidates int, skip func(string) bool) ([]string, Phase) {
	if concept.IsBlank(query) || maxCandidates <= 0 {
		return nil, PhaseNone
	}
	q := concept.Normalize(query)

	if out := m.substring(q, maxCandidates, skip); len(out) > 0 {
		return out, PhaseSubstring
	}
	if out := m.fuzzy(q, maxCandidates, skip); len(out) > 0 {
		return out, PhaseFuzzy
	}
	return nil, PhaseNone
}

func (m *Matcher) substring(q string, limit int, skip func(string) bool) []string {
	singular := concept.NaiveSingular(q)
	trySingular := singular != q && singular != ""

	var hits []string
	for i, l := range m.lower {
		if !strings.Contains(l, q) && !(trySingular && strings.Contains(l, singular)) {
			continue
		}
		if skip != nil && skip(m.labels[i]) {
			continue
		}
		hits = append(hits, m.labels[i])
	}

	sort.Slice(hits, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(hits[i]), utf8.RuneCountInString(hits[j])
		if li != lj {
			return li < lj
		}
		return hits[i] < hits[j]
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

type scored struct {
	name  string
	score float64
}

func (m *Matcher) fuzzy(q string, limit int, skip func(string) bool) []string {
	qr := splitRunes(q)

	var hits []scored
	for i, lr := range m.runes {
		// 2*min/(la+lb) bounds the ratio from above.
		total := len(qr) + len(lr)
		if total == 0 || 2*float64(min(len(qr), len(lr)))/float64(total) < m.threshold {
			continue
		}
		if skip != nil && skip(m.labels[i]) {
			continue
		}
		r := difflib.NewMatcher(qr, lr).Ratio()
		if r >= m.threshold {
			hits = append(hits, scored{name: m.labels[i], score: r})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].name < hits[j].name
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// Ratio returns the character-level similarity of two strings in [0,1],
// compared case-insensitively.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(strings.ToLower(a)), splitRunes(strings.ToLower(b))).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
