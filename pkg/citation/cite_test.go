package citation

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-solli/cognis/pkg/artifact"
	"github.com/dan-solli/cognis/pkg/graph"
)

func sampleCatalog(t *testing.T) *artifact.MemoryCatalog {
	t.Helper()
	c := artifact.NewMemoryCatalog()
	require.NoError(t, c.IngestAll(context.Background(), artifact.SampleCase()))
	return c
}

func sampleSnapshot(t *testing.T) graph.Snapshot {
	t.Helper()
	s := graph.NewMemoryStore()
	require.NoError(t, graph.Load(context.Background(), s, graph.SampleNetwork()))
	return s.Snapshot()
}

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  Category
	}{
		{"show me crypto activity", CategoryFinancial},
		{"Any BITCOIN addresses?", CategoryFinancial},
		{"what proof do we have", CategoryEvidence},
		{"list the evidence", CategoryEvidence},
		{"what's the timeline?", CategoryTimeline},
		{"when did they meet", CategoryTimeline},
		{"show connections between suspects", CategoryNetwork},
		{"relationship map", CategoryNetwork},
		{"hello", CategoryDefault},
		{"", CategoryDefault},
		// Earlier taxonomy rules win.
		{"crypto timeline", CategoryFinancial},
		{"evidence of network ties", CategoryEvidence},
		{"network over time", CategoryTimeline},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestCite_SampleCase(t *testing.T) {
	catalog := sampleCatalog(t)
	snap := sampleSnapshot(t)

	tests := []struct {
		category Category
		want     []string
	}{
		{CategoryFinancial, []string{"MSG_001", "MSG_047", "MSG_089", "TXN_002", "TXN_015", "TXN_001"}},
		{CategoryEvidence, []string{"MSG_001", "CALL_001", "LOC_001", "FILE_001"}},
		{CategoryTimeline, []string{"CALL_001", "MSG_001", "MSG_002", "LOC_001", "CALL_002", "LOC_002"}},
		{CategoryNetwork, []string{"MSG_001", "CALL_001", "CONTACT_001", "TXN_002", "CALL_002", "LOC_001", "LOC_002", "FILE_001"}},
		{CategoryDefault, []string{"MSG_001", "CALL_001", "CONTACT_001"}},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			got := Cite(tt.category, "", snap, catalog)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Cite(%s) mismatch (-want +got):\n%s", tt.category, diff)
			}
		})
	}
}

func TestCite_EveryIDResolvesOnce(t *testing.T) {
	catalog := sampleCatalog(t)
	snap := sampleSnapshot(t)

	for c := CategoryDefault; c <= CategoryNetwork; c++ {
		ids := Cite(c, "any wallet", snap, catalog)
		require.NotEmpty(t, ids, c.String())

		seen := make(map[string]bool)
		for _, id := range ids {
			_, ok := catalog.Get(id)
			assert.True(t, ok, "%s cites unknown artifact %s", c, id)
			assert.False(t, seen[id], "%s cites %s twice", c, id)
			seen[id] = true
		}
	}
}

func TestCite_DropsUnresolvable(t *testing.T) {
	ctx := context.Background()
	catalog := artifact.NewMemoryCatalog()
	require.NoError(t, catalog.Ingest(ctx, artifact.Artifact{ID: "MSG_047", Type: artifact.TypeMessage}))
	require.NoError(t, catalog.Ingest(ctx, artifact.Artifact{ID: "TXN_015", Type: artifact.TypeTransaction}))

	got := Cite(CategoryFinancial, "", graph.Snapshot{}, catalog)
	assert.Equal(t, []string{"MSG_047", "TXN_015"}, got)
}

func TestCite_FallsBackToEarliestArtifacts(t *testing.T) {
	ctx := context.Background()
	catalog := artifact.NewMemoryCatalog()
	base := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := 5; i >= 1; i-- {
		a := artifact.Artifact{ID: artifact.FormatID(artifact.TypeFile, 100+i), Type: artifact.TypeFile, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, catalog.Ingest(ctx, a))
	}

	got := Cite(CategoryDefault, "hello", graph.Snapshot{}, catalog)
	assert.Equal(t, []string{"FILE_101", "FILE_102", "FILE_103"}, got)
}

func TestCite_GeneralQueryMatchesContent(t *testing.T) {
	catalog := sampleCatalog(t)
	snap := sampleSnapshot(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"where is the usual wallet?", []string{"MSG_047", "FILE_001", "TXN_015", "MSG_001", "CALL_001", "CONTACT_001"}},
		{"3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", []string{"TXN_001", "MSG_001", "CALL_001", "CONTACT_001"}},
		{"Who is John Doe?", []string{"CONTACT_001", "MSG_001", "CALL_001"}},
		{"hello there", []string{"MSG_001", "CALL_001", "CONTACT_001"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			require.Equal(t, CategoryDefault, Classify(tt.query))
			got := Cite(CategoryDefault, tt.query, snap, catalog)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Cite(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestCite_SearchOnlyForGeneralQueries(t *testing.T) {
	catalog := sampleCatalog(t)
	snap := sampleSnapshot(t)

	// A categorized answer keeps its own ranking whatever the query names.
	assert.Equal(t, Cite(CategoryTimeline, "", snap, catalog), Cite(CategoryTimeline, "timeline of the usual wallet", snap, catalog))
}

func TestQueryTerms(t *testing.T) {
	assert.Equal(t, []string{"usual", "wallet"}, queryTerms("Where is the USUAL wallet?"))
	assert.Equal(t, []string{"john", "doe", "555", "0123"}, queryTerms("john doe, +1-555-0123"))
	assert.Empty(t, queryTerms("is it? a of"))
	assert.Empty(t, queryTerms(""))
}

func TestCite_EmptyCatalog(t *testing.T) {
	got := Cite(CategoryNetwork, "", sampleSnapshot(t), artifact.NewMemoryCatalog())
	assert.Empty(t, got)
}

func TestCategory_Text(t *testing.T) {
	data, err := CategoryTimeline.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "timeline", string(data))

	var c Category
	require.NoError(t, c.UnmarshalText([]byte("Network")))
	assert.Equal(t, CategoryNetwork, c)
	assert.Error(t, c.UnmarshalText([]byte("astrology")))
}
