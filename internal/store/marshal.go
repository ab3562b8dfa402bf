package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// marshalPayload converts an event's parsed data to JSON TEXT for storage.
// A nil map is stored as an empty object so reads never see NULL.
func marshalPayload(m map[string]any) (string, error) {
	if m == nil {
		m = map[string]any{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload decodes a stored JSON TEXT column back into a map.
// Empty or NULL columns decode to an empty map. A malformed payload is a
// coercion error; callers decide whether to skip the row or fail.
func unmarshalPayload(s sql.NullString) (map[string]any, error) {
	if !s.Valid || s.String == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(s.String), &m); err != nil {
		return nil, &StorageError{
			Code:    CodeCoercion,
			Message: "malformed parsed_data payload",
			Err:     err,
		}
	}
	return m, nil
}

// Decimal values live as REAL columns on disk (parity with the original
// file layout) and are converted exactly once, here at the store boundary.

func decToReal(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func realToDec(f sql.NullFloat64) decimal.Decimal {
	if !f.Valid {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f.Float64)
}

// timeOrNil converts a time into a storable value. The zero time is stored
// as NULL, which is how an open session's end_time is represented.
func timeOrNil(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
