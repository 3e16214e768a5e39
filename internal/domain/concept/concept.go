// Package concept holds the string normalisation rules applied to concept
// labels and free-text queries before they are compared.
package concept

import "strings"

// Normalize lowercases a query or label for comparison. Whitespace and
// punctuation are kept, so "trump " only matches labels containing "trump ".
func Normalize(s string) string {
	return strings.ToLower(s)
}

// IsBlank reports whether s holds nothing but whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NaiveSingular strips every trailing 's' from an already normalised string.
//
// This is a heuristic, not lemmatisation: "vaccines" becomes "vaccine", but
// irregular plurals ("mice") are untouched and words ending in a double s lose
// both ("bass" becomes "ba").
func NaiveSingular(s string) string {
	return strings.TrimRight(s, "s")
}

// EqualFold reports whether two concept labels match case-insensitively.
func EqualFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
