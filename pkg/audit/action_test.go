package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTable(t *testing.T) {
	actions := Actions()
	assert.Len(t, actions, 13)

	for _, a := range actions {
		assert.True(t, a.Valid())
		assert.NotEmpty(t, a.Group(), "action %s has no group", a)

		parsed, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	assert.Equal(t, "AI Response Generated", ActionAIResponseGenerated.String())
	assert.Equal(t, GroupNetwork, ActionNodeSelected.Group())
	assert.Equal(t, "Action(200)", Action(200).String())
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("  ai query sent ")
	require.NoError(t, err)
	assert.Equal(t, ActionAIQuerySent, a)

	_, err = ParseAction("Deleted Evidence")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		text, action string
		want         Filter
		wantErr      bool
	}{
		{"", "", Filter{}, false},
		{"bitcoin", "all", Filter{Text: "bitcoin"}, false},
		{" x ", "ALL", Filter{Text: "x"}, false},
		{"", "Login", Filter{Action: ActionLogin}, false},
		{"", "network", Filter{Group: GroupNetwork}, false},
		{"doe", " AI ", Filter{Text: "doe", Group: GroupAI}, false},
		{"", "Purge", Filter{}, true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.text, tt.action)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownAction)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGroup_Actions(t *testing.T) {
	total := 0
	for _, g := range Groups() {
		members := g.Actions()
		require.NotEmpty(t, members, string(g))
		for _, a := range members {
			assert.Equal(t, g, a.Group())
		}
		total += len(members)
	}
	assert.Equal(t, len(Actions()), total, "every action belongs to exactly one group")
	assert.Equal(t, []Action{ActionNodeSelected, ActionNetworkSearch}, GroupNetwork.Actions())

	_, err := ParseGroup("forensics")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestEntry_JSON(t *testing.T) {
	data, err := json.Marshal(Entry{ID: 7, Action: ActionCaseAssignment, Actor: "admin"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"Case Assignment"`)

	var e Entry
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, ActionCaseAssignment, e.Action)
}
