package domain

// Document is one extracted source record: a title, a summary and the
// concepts the extractor found in them.
type Document struct {
	Title    string
	Summary  string
	Concepts []string
}

// HasConcepts reports whether the document carries at least one concept.
func (d *Document) HasConcepts() bool { return len(d.Concepts) > 0 }
