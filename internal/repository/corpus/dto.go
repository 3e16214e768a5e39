package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/beliefgraph/internal/domain"
)

// recordDTO is one extracted record as written by the concept extractor.
// Sources disagree on field names, so several aliases are accepted. Text
// fields never reject a record; only the concept list is strict.
type recordDTO struct {
	Title         flexText  `json:"title"`
	Summary       flexText  `json:"summary"`
	Content       flexText  `json:"content"`
	Concept       flexText  `json:"concept"`
	ConceptsSpacy *[]string `json:"concepts_spacy"`
	Concepts      *[]string `json:"concepts"`
}

// flexText accepts a string, a list of text values, a number, a bool or
// null. Objects decode to empty text.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), data[0] == '{':
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("text: %w", err)
		}
		*t = flexText(s)
	case data[0] == '[':
		var parts []flexText
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("text list: %w", err)
		}
		words := make([]string, 0, len(parts))
		for _, p := range parts {
			if p != "" {
				words = append(words, string(p))
			}
		}
		*t = flexText(strings.Join(words, " "))
	default:
		// numbers and booleans keep their literal form
		*t = flexText(data)
	}
	return nil
}

// toDomain converts a record; records without any concept field are rejected.
func (r *recordDTO) toDomain() (domain.Document, error) {
	var concepts []string
	switch {
	case r.ConceptsSpacy != nil:
		concepts = *r.ConceptsSpacy
	case r.Concepts != nil:
		concepts = *r.Concepts
	default:
		return domain.Document{}, fmt.Errorf("%w: no concepts_spacy field", domain.ErrMalformedInput)
	}

	summary := string(r.Summary)
	if summary == "" {
		summary = string(r.Content)
	}
	if summary == "" {
		summary = string(r.Concept)
	}

	return domain.Document{
		Title:    string(r.Title),
		Summary:  summary,
		Concepts: concepts,
	}, nil
}

// outDTO is the normalised shape written by Merge.
type outDTO struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	ConceptsSpacy []string `json:"concepts_spacy"`
}

func fromDomain(d *domain.Document) outDTO {
	concepts := d.Concepts
	if concepts == nil {
		concepts = []string{}
	}
	return outDTO{Title: d.Title, Summary: d.Summary, ConceptsSpacy: concepts}
}
