package trace

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrFreeText is returned by Validate for a record carrying text that is not
// an identifier.
var ErrFreeText = errors.New("trace record holds free text")

// maxIDLen bounds identifier values; uuids are 36 characters.
const maxIDLen = 64

// NewRecord assembles the exported form of one finished operation. errType is
// empty on success. A nil trace yields a record with no spans.
func NewRecord(operation, operationID string, start time.Time, ot *OperationTrace, errType string, ids map[string]interface{}) *TraceRecord {
	r := &TraceRecord{
		Timestamp:   start,
		OperationID: operationID,
		Operation:   operation,
		DurationMs:  time.Since(start).Milliseconds(),
		Status:      "success",
		Spans:       []SpanRecord{},
		ErrorType:   errType,
		IDs:         ids,
	}
	if ot != nil {
		r.Spans = append(r.Spans, ot.Spans...)
	}
	if errType != "" {
		r.Status = "error"
	}
	return r
}

// Validate checks that every string in the record is an identifier: short,
// with no whitespace. Numbers and booleans are always allowed.
func (r *TraceRecord) Validate() error {
	if err := checkID("operationId", r.OperationID); err != nil {
		return err
	}
	if err := checkID("operation", r.Operation); err != nil {
		return err
	}
	for key, v := range r.IDs {
		switch val := v.(type) {
		case string:
			if err := checkID("ids."+key, val); err != nil {
				return err
			}
		case int, int64, float64, bool, nil:
		default:
			return fmt.Errorf("%w: ids.%s has type %T", ErrFreeText, key, v)
		}
	}
	for _, s := range r.Spans {
		if err := checkID("spans.name", s.Name); err != nil {
			return err
		}
	}
	return nil
}

func checkID(field, s string) error {
	if len(s) > maxIDLen || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %s", ErrFreeText, field)
	}
	return nil
}
