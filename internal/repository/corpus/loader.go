// Package corpus reads extracted document records from JSON files.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
	"github.com/kailas-cloud/beliefgraph/internal/domain/concept"
)

// Report summarises one Load call.
type Report struct {
	Files          int
	MissingFiles   []string
	MalformedFiles []string
	Records        int
	SkippedRecords int
}

// Loader reads corpus files. Problems with individual files or records are
// logged and skipped; they never abort a load.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a corpus loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads every path in order and returns the concatenated documents.
// The only returned error is context cancellation.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]domain.Document, Report, error) {
	var (
		docs   []domain.Document
		report Report
	)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		report.Files++

		fileDocs, skipped, err := l.loadFile(p)
		switch {
		case errors.Is(err, domain.ErrMissingInput):
			l.logger.Warn("Corpus file not found, skipping", zap.String("path", p))
			report.MissingFiles = append(report.MissingFiles, p)
			continue
		case err != nil:
			l.logger.Warn("Corpus file unreadable, skipping", zap.String("path", p), zap.Error(err))
			report.MalformedFiles = append(report.MalformedFiles, p)
			continue
		}

		docs = append(docs, fileDocs...)
		report.Records += len(fileDocs)
		report.SkippedRecords += skipped
		l.logger.Info("Corpus file loaded",
			zap.String("path", p),
			zap.Int("records", len(fileDocs)),
			zap.Int("skipped", skipped),
		)
	}
	return docs, report, nil
}

func (l *Loader) loadFile(path string) ([]domain.Document, int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", domain.ErrMissingInput, path)
		}
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return l.decode(path, f)
}

func (l *Loader) decode(path string, r io.Reader) ([]domain.Document, int, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("%w: %s is not a JSON array: %w", domain.ErrMalformedInput, path, err)
	}

	docs := make([]domain.Document, 0, len(raw))
	skipped := 0
	for i, msg := range raw {
		var rec recordDTO
		if err := json.Unmarshal(msg, &rec); err != nil {
			l.logger.Warn("Malformed record, skipping",
				zap.String("path", path), zap.Int("index", i), zap.Error(err))
			skipped++
			continue
		}
		doc, err := rec.toDomain()
		if err != nil {
			l.logger.Warn("Record without concepts, skipping",
				zap.String("path", path), zap.Int("index", i), zap.Error(err))
			skipped++
			continue
		}
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

// Merge writes docs as a single indented JSON array in the normalised
// record shape, readable again by Load.
func Merge(w io.Writer, docs []domain.Document) error {
	out := make([]outDTO, len(docs))
	for i := range docs {
		out[i] = fromDomain(&docs[i])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	return nil
}

// FilterByConcepts returns the documents sharing at least one concept with
// clicked, compared case-insensitively.
func FilterByConcepts(docs []domain.Document, clicked []string) []domain.Document {
	wanted := make(map[string]struct{}, len(clicked))
	for _, c := range clicked {
		wanted[strings.ToLower(c)] = struct{}{}
	}
	var out []domain.Document
	for _, d := range docs {
		for _, c := range d.Concepts {
			if _, ok := wanted[strings.ToLower(c)]; ok {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// HasConcept reports whether doc lists c, ignoring case.
func HasConcept(doc *domain.Document, c string) bool {
	for _, have := range doc.Concepts {
		if concept.EqualFold(have, c) {
			return true
		}
	}
	return false
}
