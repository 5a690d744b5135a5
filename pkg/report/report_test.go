package report

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/citation"
	"github.com/dan-solli/cognis/pkg/graph"
)

func sampleSnapshot(t *testing.T) graph.Snapshot {
	t.Helper()
	s := graph.NewMemoryStore()
	require.NoError(t, graph.Load(context.Background(), s, graph.SampleNetwork()))
	return s.Snapshot()
}

func sampleCatalog(t *testing.T) *artifact.MemoryCatalog {
	t.Helper()
	c := artifact.NewMemoryCatalog()
	require.NoError(t, c.IngestAll(context.Background(), artifact.SampleCase()))
	return c
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleSnapshot(t), 2)

	assert.Equal(t, 4, s.TotalNodes)
	assert.Equal(t, 4, s.TotalConnections)
	assert.Equal(t, 20, s.TotalWeight)
	assert.Equal(t, 1, s.KindCounts[graph.KindPerson])
	assert.Equal(t, 0, s.KindCounts[graph.KindAddress])

	require.Len(t, s.CentralEntities, 2)
	assert.Equal(t, "john_doe", s.CentralEntities[0].ID)
	assert.Equal(t, 3, s.CentralEntities[0].Connections)
	assert.Equal(t, 12, s.CentralEntities[0].Weight)
	assert.Equal(t, "phone_123", s.CentralEntities[1].ID)
}

func TestSummarize_SkipsIsolatedEntities(t *testing.T) {
	snap := graph.Snapshot{Entities: []graph.Entity{{ID: "a", Kind: graph.KindFile}}}

	s := Summarize(snap, 0)
	assert.Equal(t, 1, s.TotalNodes)
	assert.Empty(t, s.CentralEntities)
}

func TestSourceArtifacts(t *testing.T) {
	got := SourceArtifacts(sampleCatalog(t), []string{"TXN_002", "MSG_999", "MSG_001"})
	require.Len(t, got, 2)
	assert.Equal(t, "TXN_002", got[0].ID)
	assert.Equal(t, "MSG_001", got[1].ID)
}

func TestBuild(t *testing.T) {
	catalog := sampleCatalog(t)
	answers := []citation.Answer{
		{ID: "a1", Query: "crypto", Category: citation.CategoryFinancial, Citations: []string{"MSG_001", "TXN_002"}},
		{ID: "a2", Query: "where", Category: citation.CategoryDefault, Citations: []string{"TXN_002", "LOC_001"}},
	}
	at := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

	r := Build(sampleSnapshot(t), catalog, answers, at)

	assert.Equal(t, at, r.GeneratedAt)
	require.Len(t, r.Findings, 2)
	assert.Len(t, r.Findings[1].Sources, 2)

	var ids []string
	for _, s := range r.Sources {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"MSG_001", "TXN_002", "LOC_001"}, ids)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"networkSummary"`)
	assert.Contains(t, string(data), `"category":"financial"`)
}

func TestBuild_NoAnswers(t *testing.T) {
	r := Build(graph.Snapshot{}, artifact.NewMemoryCatalog(), nil, time.Time{})
	assert.Empty(t, r.Findings)
	assert.NotNil(t, r.Sources)
	assert.Equal(t, 0, r.Summary.TotalNodes)
}
