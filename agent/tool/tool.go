// Package tool holds the pipeline's closed set of stages: query refinement,
// catalog search, and result filtering. Every stage takes plain data in and
// returns a structured result; faults never cross the boundary.
package tool

import (
	"strings"
)

const (
	NameRefine = "query_refinement"
	NameSearch = "product_search"
	NameFilter = "result_filter"
)

// Set is the closed collection of pipeline stages. There is no open
// registry; agents reach for a stage by field.
type Set struct {
	Refine *Refine
	Search *Search
	Filter *Filter
}

// stopWords are stripped from a query before keyword matching against
// product names.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "for": {}, "of": {}, "to": {}, "in": {},
	"on": {}, "with": {}, "and": {}, "or": {}, "me": {}, "my": {}, "i": {},
	"do": {}, "you": {}, "have": {}, "show": {}, "find": {}, "need": {},
	"want": {}, "looking": {}, "some": {}, "any": {}, "please": {},
	"is": {}, "are": {}, "what": {}, "whats": {}, "how": {}, "much": {},
}

// significantTerms lower-cases the query and drops stop-words and
// punctuation, keeping the terms that should appear in a relevant product
// name.
func significantTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		}
		return true
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopWords[f]; skip {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
