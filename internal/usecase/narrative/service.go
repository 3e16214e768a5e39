// Package narrative turns clicked concepts into prompt material for the
// downstream text and image generators. It makes no network calls.
package narrative

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/repository/corpus"
)

// DefaultMaxDocuments bounds the documents folded into one context.
const DefaultMaxDocuments = 20

// Brief is everything the generation layer needs for one narrative.
type Brief struct {
	Context        string
	Theme          Theme
	HeadlinePrompt string
	VisualPrompt   string
	Documents      []domain.Document
}

// Service builds briefs over the in-memory corpus.
type Service struct {
	source       DocumentSource
	maxDocuments int
	logger       *zap.Logger
}

// New creates a Service. maxDocuments <= 0 uses DefaultMaxDocuments.
func New(source DocumentSource, maxDocuments int, logger *zap.Logger) *Service {
	if maxDocuments <= 0 {
		maxDocuments = DefaultMaxDocuments
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, maxDocuments: maxDocuments, logger: logger}
}

// Compose filters the corpus by the clicked concepts and builds the prompts.
// summary is the generated narrative when one exists; without it the theme
// and visual prompt are derived from the matched documents.
func (s *Service) Compose(clicked []string, summary string) (Brief, error) {
	clicked = nonBlank(clicked)
	if len(clicked) == 0 {
		return Brief{}, fmt.Errorf("%w: at least one concept is required", domain.ErrInvalidRequest)
	}

	docs := corpus.FilterByConcepts(s.source.Documents(), clicked)
	if len(docs) > s.maxDocuments {
		docs = docs[:s.maxDocuments]
	}

	if strings.TrimSpace(summary) == "" {
		summary = joinSummaries(docs)
	}
	theme := DetectTheme(clicked, summary)
	context := BuildContext(clicked, docs)

	s.logger.Debug("Narrative brief composed",
		zap.Strings("concepts", clicked),
		zap.Int("documents", len(docs)),
		zap.String("theme", string(theme)),
	)

	return Brief{
		Context:        context,
		Theme:          theme,
		HeadlinePrompt: HeadlinePrompt(context),
		VisualPrompt:   VisualPrompt(theme, ShortSummary(summary)),
		Documents:      docs,
	}, nil
}

// BuildContext renders the concept header followed by one line per document.
func BuildContext(clicked []string, docs []domain.Document) string {
	var b strings.Builder
	b.WriteString("Key concepts: ")
	b.WriteString(strings.Join(clicked, ", "))
	b.WriteString(".\n\nRelated information:")
	for _, d := range docs {
		b.WriteString("\n- ")
		b.WriteString(d.Title)
		b.WriteString(": ")
		b.WriteString(snippet(d.Summary))
		b.WriteString("...")
	}
	return b.String()
}

func joinSummaries(docs []domain.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Summary != "" {
			parts = append(parts, d.Summary)
		}
	}
	return strings.Join(parts, " ")
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
