package citation

import (
	"fmt"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/graph"
)

// compose renders the answer text from graph and citation statistics.
func compose(c Category, snap graph.Snapshot, cited []artifact.Artifact) string {
	switch c {
	case CategoryFinancial:
		txns := 0
		for _, a := range cited {
			if a.Type == artifact.TypeTransaction {
				txns++
			}
		}
		return fmt.Sprintf("Found %d artifacts describing cryptocurrency activity, %d of them transactions.%s",
			len(cited), txns, hub(snap))

	case CategoryEvidence:
		sources := make(map[string]bool)
		for _, a := range cited {
			sources[a.SourceSystem] = true
		}
		return fmt.Sprintf("Collected %d supporting artifacts from %d source systems.", len(cited), len(sources))

	case CategoryTimeline:
		if len(cited) == 0 {
			return "No timestamped artifacts are available to build a timeline."
		}
		first, last := cited[0], cited[len(cited)-1]
		return fmt.Sprintf("Reconstructed %d events between %s and %s, starting with %s.",
			len(cited), first.Timestamp.Format("2006-01-02 15:04:05"), last.Timestamp.Format("2006-01-02 15:04:05"), first.ID)

	case CategoryNetwork:
		return fmt.Sprintf("The network holds %d entities and %d relationships.%s",
			len(snap.Entities), len(snap.Relationships), hub(snap))

	default:
		return fmt.Sprintf("I can trace financial activity, rebuild timelines or map connections across %d entities. Try asking about one of those.",
			len(snap.Entities))
	}
}

// hub names the most connected entity, if any.
func hub(snap graph.Snapshot) string {
	ranked := snap.RankedByConnections()
	if len(ranked) == 0 || ranked[0].Connections == 0 {
		return ""
	}
	return fmt.Sprintf(" %s is the most connected entity with %d connections.", ranked[0].DisplayName, ranked[0].Connections)
}
