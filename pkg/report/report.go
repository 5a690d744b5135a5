// Package report assembles the data behind an exported case report: network
// statistics and the source artifacts of the answers it quotes. Rendering is
// left to the caller.
package report

import (
	"time"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/citation"
	"github.com/dan-solli/cognis/pkg/graph"
)

// DefaultCentralEntities is how many entities Summarize ranks by default.
const DefaultCentralEntities = 3

// CentralEntity is one of the most connected entities in the network.
type CentralEntity struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Kind        graph.Kind `json:"kind"`
	Connections int        `json:"connections"`
	Weight      int        `json:"weight"`
}

// Summary holds the network statistics of a report.
type Summary struct {
	TotalNodes       int                `json:"totalNodes"`
	TotalConnections int                `json:"totalConnections"`
	TotalWeight      int                `json:"totalWeight"`
	KindCounts       map[graph.Kind]int `json:"kindCounts"`
	CentralEntities  []CentralEntity    `json:"centralEntities"`
}

// Summarize computes network statistics. topN <= 0 uses DefaultCentralEntities;
// entities with no connections are never central.
func Summarize(snap graph.Snapshot, topN int) Summary {
	if topN <= 0 {
		topN = DefaultCentralEntities
	}

	s := Summary{
		TotalNodes:       len(snap.Entities),
		TotalConnections: len(snap.Relationships),
		TotalWeight:      snap.TotalWeight(),
		KindCounts:       make(map[graph.Kind]int),
		CentralEntities:  make([]CentralEntity, 0, topN),
	}
	for _, e := range snap.Entities {
		s.KindCounts[e.Kind]++
	}

	for _, e := range snap.RankedByConnections() {
		if len(s.CentralEntities) == topN || e.Connections == 0 {
			break
		}
		s.CentralEntities = append(s.CentralEntities, CentralEntity{
			ID:          e.ID,
			DisplayName: e.DisplayName,
			Kind:        e.Kind,
			Connections: e.Connections,
			Weight:      snap.WeightOf(e.ID),
		})
	}
	return s
}

// SourceArtifacts resolves a citation set in citation order. Ids the catalog
// does not know are skipped.
func SourceArtifacts(catalog artifact.Catalog, citations []string) []artifact.Artifact {
	out := make([]artifact.Artifact, 0, len(citations))
	for _, id := range citations {
		if a, ok := catalog.Get(id); ok {
			out = append(out, a)
		}
	}
	return out
}

// Report is everything an exported report shows.
type Report struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Summary     Summary             `json:"networkSummary"`
	Findings    []Finding           `json:"findings"`
	Sources     []artifact.Artifact `json:"sourceArtifacts"`
}

// Finding is one quoted answer with its resolved sources.
type Finding struct {
	AnswerID string              `json:"answerId"`
	Query    string              `json:"query"`
	Category citation.Category   `json:"category"`
	Text     string              `json:"text"`
	Sources  []artifact.Artifact `json:"sources"`
}

// Build assembles a report. Sources lists every artifact cited by any
// answer, once, in order of first citation.
func Build(snap graph.Snapshot, catalog artifact.Catalog, answers []citation.Answer, generatedAt time.Time) Report {
	r := Report{
		GeneratedAt: generatedAt,
		Summary:     Summarize(snap, DefaultCentralEntities),
		Findings:    make([]Finding, 0, len(answers)),
		Sources:     make([]artifact.Artifact, 0),
	}

	seen := make(map[string]bool)
	for _, a := range answers {
		sources := SourceArtifacts(catalog, a.Citations)
		r.Findings = append(r.Findings, Finding{
			AnswerID: a.ID,
			Query:    a.Query,
			Category: a.Category,
			Text:     a.Text,
			Sources:  sources,
		})
		for _, s := range sources {
			if !seen[s.ID] {
				seen[s.ID] = true
				r.Sources = append(r.Sources, s)
			}
		}
	}
	return r
}
