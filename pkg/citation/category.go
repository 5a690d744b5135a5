// Package citation answers investigator queries and binds every answer to the
// evidence artifacts that justify it.
package citation

import (
	"fmt"
	"strings"
)

// Category is the answer family a query is classified into.
type Category uint8

const (
	// CategoryDefault is the capability summary given for unclassifiable queries.
	CategoryDefault Category = iota
	CategoryFinancial
	CategoryEvidence
	CategoryTimeline
	CategoryNetwork
)

var categoryNames = map[Category]string{
	CategoryDefault:   "default",
	CategoryFinancial: "financial",
	CategoryEvidence:  "evidence",
	CategoryTimeline:  "timeline",
	CategoryNetwork:   "network",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name.
func (c *Category) UnmarshalText(text []byte) error {
	for cat, name := range categoryNames {
		if strings.EqualFold(name, string(text)) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", text)
}

type rule struct {
	category Category
	keywords []string
	refs     []string // Artifacts the category cites first, most relevant first
}

// taxonomy is checked in order; the first rule with a matching keyword wins.
var taxonomy = []rule{
	{
		category: CategoryFinancial,
		keywords: []string{"crypto", "bitcoin"},
		refs:     []string{"MSG_001", "MSG_047", "MSG_089", "TXN_002", "TXN_015"},
	},
	{
		category: CategoryEvidence,
		keywords: []string{"evidence", "proof"},
		refs:     []string{"MSG_001", "CALL_001", "LOC_001", "FILE_001"},
	},
	{
		category: CategoryTimeline,
		keywords: []string{"timeline", "time", "when"},
		refs:     []string{"MSG_001", "MSG_002", "CALL_001", "CALL_002", "LOC_001", "LOC_002"},
	},
	{
		category: CategoryNetwork,
		keywords: []string{"connection", "relationship", "network"},
		refs:     []string{"CONTACT_001", "MSG_001", "CALL_001", "LOC_001"},
	},
}

var defaultRefs = []string{"MSG_001", "CALL_001", "CONTACT_001"}

// Classify maps a query to its category by case-insensitive keyword
// containment. It is a pure function of the query text.
func Classify(query string) Category {
	q := strings.ToLower(query)
	for _, r := range taxonomy {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.category
			}
		}
	}
	return CategoryDefault
}

func refsFor(c Category) []string {
	for _, r := range taxonomy {
		if r.category == c {
			return r.refs
		}
	}
	return defaultRefs
}
