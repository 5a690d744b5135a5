package citation

import (
	"sort"
	"strings"
	"unicode"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/graph"
)

const (
	// fallbackCitations bounds the catalog-wide fallback when no candidate resolves.
	fallbackCitations = 3

	// searchCitations bounds the content matches cited for a general query.
	searchCitations = 5

	minTermLen = 3
)

// stopwords never count as search terms.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "what": true,
	"who": true, "where": true, "show": true, "about": true, "from": true,
	"that": true, "this": true, "have": true, "any": true, "are": true,
	"was": true, "were": true, "did": true, "does": true, "can": true,
	"you": true, "tell": true, "give": true, "there": true, "their": true,
}

// queryTerms splits a query into lowercase words worth matching against
// artifact content.
func queryTerms(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < minTermLen || stopwords[w] {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// Cite ranks the artifacts that justify an answer of category c to query
// over snap. Every returned id resolves in catalog and appears once. The
// result is empty only when the catalog is.
func Cite(c Category, query string, snap graph.Snapshot, catalog artifact.Catalog) []string {
	var candidates []string

	switch c {
	case CategoryFinancial:
		candidates = append(candidates, refsFor(c)...)
		for _, a := range catalog.ByType(artifact.TypeTransaction) {
			candidates = append(candidates, a.ID)
		}
	case CategoryTimeline:
		candidates = chronological(refsFor(c), catalog)
	case CategoryNetwork:
		for _, e := range snap.RankedByConnections() {
			candidates = append(candidates, e.ArtifactIDs...)
		}
		candidates = append(candidates, refsFor(c)...)
	default:
		// Artifacts naming a query term lead the standing references.
		if terms := queryTerms(query); len(terms) > 0 {
			for _, a := range catalog.Search(terms, searchCitations) {
				candidates = append(candidates, a.ID)
			}
		}
		candidates = append(candidates, refsFor(c)...)
	}

	out := resolvable(candidates, catalog)
	if len(out) > 0 {
		return out
	}

	for _, a := range catalog.List() {
		if len(out) == fallbackCitations {
			break
		}
		out = append(out, a.ID)
	}
	return out
}

// resolvable keeps the first occurrence of every id the catalog knows.
func resolvable(ids []string, catalog artifact.Catalog) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := catalog.Get(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// chronological orders the resolvable ids by artifact timestamp.
func chronological(ids []string, catalog artifact.Catalog) []string {
	found := make([]artifact.Artifact, 0, len(ids))
	for _, id := range ids {
		if a, ok := catalog.Get(id); ok {
			found = append(found, a)
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Before(found[j]) })

	out := make([]string, len(found))
	for i, a := range found {
		out[i] = a.ID
	}
	return out
}
