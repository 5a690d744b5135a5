// Package artifact holds the immutable evidence records that graph entities
// and answer citations point to.
package artifact

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidID is returned when an id is not of the form <TYPE>_<seq>.
	ErrInvalidID = errors.New("invalid artifact id")

	// ErrDuplicate is returned when an artifact id is ingested twice.
	ErrDuplicate = errors.New("artifact already ingested")

	// ErrUnknownType is returned for artifact type names outside the closed set.
	ErrUnknownType = errors.New("unknown artifact type")
)

// Type is the closed set of evidence record types.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeMessage
	TypeCallLog
	TypeTransaction
	TypeLocation
	TypeContact
	TypeFile
)

type typeInfo struct {
	name   string
	prefix string
}

var typeTable = map[Type]typeInfo{
	TypeMessage:     {name: "Message", prefix: "MSG"},
	TypeCallLog:     {name: "Call Log", prefix: "CALL"},
	TypeTransaction: {name: "Transaction", prefix: "TXN"},
	TypeLocation:    {name: "Location", prefix: "LOC"},
	TypeContact:     {name: "Contact", prefix: "CONTACT"},
	TypeFile:        {name: "File", prefix: "FILE"},
}

// Types returns every valid type in declaration order.
func Types() []Type {
	return []Type{TypeMessage, TypeCallLog, TypeTransaction, TypeLocation, TypeContact, TypeFile}
}

// ParseType resolves a type by display name or id prefix, case-insensitively.
func ParseType(s string) (Type, error) {
	name := strings.TrimSpace(s)
	for _, t := range Types() {
		info := typeTable[t]
		if strings.EqualFold(info.name, name) || strings.EqualFold(info.prefix, name) {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	_, ok := typeTable[t]
	return ok
}

func (t Type) String() string {
	if info, ok := typeTable[t]; ok {
		return info.name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Prefix returns the id prefix for the type, e.g. "MSG".
func (t Type) Prefix() string {
	return typeTable[t].prefix
}

// MarshalText encodes the type by display name.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
	return []byte(typeTable[t].name), nil
}

// UnmarshalText decodes a display name or prefix.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// FormatID builds the canonical id for the seq-th artifact of type t.
// Sequences are zero-padded to three digits.
func FormatID(t Type, seq int) string {
	return fmt.Sprintf("%s_%03d", t.Prefix(), seq)
}

// ParseID splits an id into its type and sequence number.
func ParseID(id string) (Type, int, error) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 || i == len(id)-1 {
		return TypeUnknown, 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	prefix, digits := id[:i], id[i+1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return TypeUnknown, 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq <= 0 {
		return TypeUnknown, 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	for _, t := range Types() {
		if typeTable[t].prefix == prefix {
			return t, seq, nil
		}
	}
	return TypeUnknown, 0, fmt.Errorf("%w: %q has unknown prefix %q", ErrInvalidID, id, prefix)
}

// IsID reports whether s is a well-formed artifact id.
func IsID(s string) bool {
	_, _, err := ParseID(s)
	return err == nil
}

// Artifact is one immutable evidence record.
type Artifact struct {
	ID           string    `json:"id"`
	Type         Type      `json:"type"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	SourceSystem string    `json:"sourceSystem"`
}

// Before orders artifacts chronologically, breaking ties by id.
func (a Artifact) Before(b Artifact) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

// Catalog is the read surface over ingested artifacts.
type Catalog interface {
	// Get returns the artifact with id, or false.
	Get(id string) (Artifact, bool)

	// List returns every artifact in chronological order.
	List() []Artifact

	// ByType returns the artifacts of type t in chronological order.
	ByType(t Type) []Artifact

	// Search returns, in chronological order, the artifacts whose content
	// contains any of terms, ignoring case. A limit of zero or less returns
	// every match.
	Search(terms []string, limit int) []Artifact

	// Len returns the number of ingested artifacts.
	Len() int
}
