package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrWrite is returned when an entry could not be persisted.
var ErrWrite = errors.New("audit write failed")

// WriteError reports an entry the durable sink refused. The entry was not
// appended and its id was not consumed; it is carried here for retry.
type WriteError struct {
	Entry Entry
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("audit write failed for entry %d (%s): %v", e.Entry.ID, e.Entry.Action, e.Err)
}

// Unwrap exposes both ErrWrite and the sink's own error.
func (e *WriteError) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}

// Entry is one immutable audit record.
type Entry struct {
	ID        int64     `json:"id"`
	Action    Action    `json:"action"`
	Actor     string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

// Filter selects entries. The zero Filter matches everything.
type Filter struct {
	// Text is matched case-insensitively as a substring of the action name,
	// actor or details.
	Text string

	// Action, when not ActionUnknown, must equal the entry's action.
	Action Action

	// Group, when set, must equal the group of the entry's action.
	Group Group
}

// ParseFilter builds a Filter from presentation input. An empty action or
// "all" means no action filter. A name that is not an action is tried as a
// group, so "network" selects both network actions.
func ParseFilter(text, action string) (Filter, error) {
	f := Filter{Text: strings.TrimSpace(text)}

	action = strings.TrimSpace(action)
	if action == "" || strings.EqualFold(action, "all") {
		return f, nil
	}

	a, err := ParseAction(action)
	if err == nil {
		f.Action = a
		return f, nil
	}
	g, gerr := ParseGroup(action)
	if gerr != nil {
		return Filter{}, err
	}
	f.Group = g
	return f, nil
}

func (f Filter) compile() func(Entry) bool {
	needle := strings.ToLower(f.Text)
	return func(e Entry) bool {
		if f.Action != ActionUnknown && e.Action != f.Action {
			return false
		}
		if f.Group != "" && e.Action.Group() != f.Group {
			return false
		}
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(e.Action.String()), needle) ||
			strings.Contains(strings.ToLower(e.Actor), needle) ||
			strings.Contains(strings.ToLower(e.Details), needle)
	}
}
