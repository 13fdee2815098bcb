package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// DictionaryEntry maps one corrupted fragment to its restored text.
type DictionaryEntry struct {
	Pattern     string `json:"pattern"     yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// RepairDictionary is an immutable, longest-first list of entries.
// Build it with NewRepairDictionary.
type RepairDictionary struct {
	source  string
	entries []DictionaryEntry
}

// NewRepairDictionary validates the entries and orders them by descending
// pattern length in code points. Entries of equal length keep their
// input order.
func NewRepairDictionary(source string, entries []DictionaryEntry) (*RepairDictionary, error) {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.Pattern == "" {
			return nil, fmt.Errorf("%w: entry %d has an empty pattern", ErrInvalidDictionary, i)
		}
		if !strings.ContainsRune(e.Pattern, ReplacementChar) {
			return nil, fmt.Errorf("%w: pattern %q does not contain U+FFFD", ErrInvalidDictionary, e.Pattern)
		}
		if strings.ContainsRune(e.Replacement, ReplacementChar) {
			return nil, fmt.Errorf("%w: replacement for %q contains U+FFFD", ErrInvalidDictionary, e.Pattern)
		}
		if seen[e.Pattern] {
			return nil, fmt.Errorf("%w: duplicate pattern %q", ErrInvalidDictionary, e.Pattern)
		}
		seen[e.Pattern] = true
	}

	sorted := append([]DictionaryEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i].Pattern) > utf8.RuneCountInString(sorted[j].Pattern)
	})
	return &RepairDictionary{source: source, entries: sorted}, nil
}

// Entries returns a copy of the ordered entries.
func (d *RepairDictionary) Entries() []DictionaryEntry {
	if d == nil {
		return nil
	}
	return append([]DictionaryEntry(nil), d.entries...)
}

// Len returns the number of entries.
func (d *RepairDictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Source names where the dictionary was loaded from.
func (d *RepairDictionary) Source() string {
	if d == nil {
		return ""
	}
	return d.source
}
