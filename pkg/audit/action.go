// Package audit is the append-only audit trail: the compliance record of every
// user and system action taken during an investigation session.
package audit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned for action names outside the closed set.
var ErrUnknownAction = errors.New("unknown audit action")

// Action is the closed set of auditable actions.
type Action uint8

const (
	// ActionUnknown is the zero value; in a Filter it means "any action".
	ActionUnknown Action = iota
	ActionLogin
	ActionLogout
	ActionFileUploaded
	ActionSearchPerformed
	ActionAIQuerySent
	ActionAIResponseGenerated
	ActionReportExported
	ActionNodeSelected
	ActionNetworkSearch
	ActionCaseCreated
	ActionCaseAssignment
	ActionAdminPanelAccess
	ActionAccountCreated
)

// Group buckets actions for display.
type Group string

const (
	GroupAuth     Group = "auth"
	GroupEvidence Group = "evidence"
	GroupAI       Group = "ai"
	GroupNetwork  Group = "network"
	GroupReport   Group = "report"
	GroupAdmin    Group = "admin"
)

// Groups returns every group in display order.
func Groups() []Group {
	return []Group{GroupAuth, GroupEvidence, GroupAI, GroupNetwork, GroupReport, GroupAdmin}
}

// ParseGroup resolves a group by name, case-insensitively.
func ParseGroup(s string) (Group, error) {
	name := strings.TrimSpace(s)
	for _, g := range Groups() {
		if strings.EqualFold(string(g), name) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: no action or group %q", ErrUnknownAction, s)
}

// Actions returns the actions in group g in declaration order.
func (g Group) Actions() []Action {
	var out []Action
	for _, a := range Actions() {
		if actionTable[a].group == g {
			out = append(out, a)
		}
	}
	return out
}

type actionInfo struct {
	name  string
	group Group
}

var actionTable = map[Action]actionInfo{
	ActionLogin:               {name: "Login", group: GroupAuth},
	ActionLogout:              {name: "Logout", group: GroupAuth},
	ActionFileUploaded:        {name: "File Uploaded", group: GroupEvidence},
	ActionSearchPerformed:     {name: "Search Performed", group: GroupAI},
	ActionAIQuerySent:         {name: "AI Query Sent", group: GroupAI},
	ActionAIResponseGenerated: {name: "AI Response Generated", group: GroupAI},
	ActionReportExported:      {name: "Report Exported", group: GroupReport},
	ActionNodeSelected:        {name: "Node Selected", group: GroupNetwork},
	ActionNetworkSearch:       {name: "Network Search", group: GroupNetwork},
	ActionCaseCreated:         {name: "Case Created", group: GroupAdmin},
	ActionCaseAssignment:      {name: "Case Assignment", group: GroupAdmin},
	ActionAdminPanelAccess:    {name: "Admin Panel Access", group: GroupAdmin},
	ActionAccountCreated:      {name: "Account Created", group: GroupAdmin},
}

// Actions returns every valid action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, len(actionTable))
	for a := ActionLogin; a <= ActionAccountCreated; a++ {
		out = append(out, a)
	}
	return out
}

// ParseAction resolves an action by display name, case-insensitively.
func ParseAction(s string) (Action, error) {
	name := strings.TrimSpace(s)
	for _, a := range Actions() {
		if strings.EqualFold(actionTable[a].name, name) {
			return a, nil
		}
	}
	return ActionUnknown, fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Valid reports whether a is one of the declared actions.
func (a Action) Valid() bool {
	_, ok := actionTable[a]
	return ok
}

func (a Action) String() string {
	if info, ok := actionTable[a]; ok {
		return info.name
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// Group returns the display group of the action.
func (a Action) Group() Group {
	return actionTable[a].group
}

// MarshalText encodes the action by display name.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a))
	}
	return []byte(actionTable[a].name), nil
}

// UnmarshalText decodes a display name.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
