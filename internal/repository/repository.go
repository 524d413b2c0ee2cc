package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// MatchMode selects how document text is compared against a search query.
type MatchMode string

const (
	// MatchSubstring is a case-insensitive substring test.
	MatchSubstring MatchMode = "substring"
	// MatchPhrase uses the database full-text index with phrase semantics.
	MatchPhrase MatchMode = "phrase"
)

// ParseMatchMode maps a configuration value to a MatchMode, defaulting to substring.
func ParseMatchMode(s string) MatchMode {
	if MatchMode(s) == MatchPhrase {
		return MatchPhrase
	}
	return MatchSubstring
}
