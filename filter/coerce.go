package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"github.com/hugr-lab/filterql/schema"
)

// Decimal is a validated decimal literal kept in its textual form.
type Decimal string

// Coerce converts a raw filter value to the Go value used for comparison
// against a field of type t.
//
// Result types:
//   - TypeString → string, lower-cased
//   - TypeUUID → uuid.UUID
//   - TypeDate → time.Time at midnight UTC of the written calendar day
//   - TypeDateTime → time.Time in UTC
//   - TypeBool → bool
//   - TypeInteger → int64
//   - TypeFloat → float64
//   - TypeDecimal → Decimal
//   - TypeOther → string, unchanged
func Coerce(t schema.Type, raw string) (any, error) {
	switch t {
	case schema.TypeString:
		return strings.ToLower(raw), nil

	case schema.TypeUUID:
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, newError(KindType, raw, "%q is not a valid UUID", raw)
		}
		return id, nil

	case schema.TypeDate, schema.TypeDateTime:
		ts, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC)
		if err != nil {
			return nil, newError(KindType, raw, "%q is not a valid date", raw)
		}
		if t == schema.TypeDate {
			// the calendar day as written, whatever the offset
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		return ts.UTC(), nil

	case schema.TypeBool:
		return parseBool(raw)

	case schema.TypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, newError(KindType, raw, "%q is not a valid integer", raw)
		}
		return n, nil

	case schema.TypeFloat:
		s := strings.TrimSpace(raw)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !plainNumber(s) {
			return nil, newError(KindType, raw, "%q is not a valid number", raw)
		}
		return f, nil

	case schema.TypeDecimal:
		s := strings.TrimSpace(raw)
		if _, err := strconv.ParseFloat(s, 64); err != nil || !plainNumber(s) {
			return nil, newError(KindType, raw, "%q is not a valid decimal", raw)
		}
		return Decimal(s), nil
	}
	return raw, nil
}

// plainNumber rejects the hex, infinity, NaN and underscore forms
// strconv accepts but SQL does not.
func plainNumber(s string) bool {
	return !strings.ContainsAny(s, "xXpPiInN_")
}

// parseBool treats values starting with t or y, and the literal 1, as true.
func parseBool(raw string) (bool, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return false, newError(KindType, raw, "empty value is not a valid boolean")
	}
	return s[0] == 't' || s[0] == 'y' || s == "1", nil
}

// coerceAll coerces each raw value, stopping at the first failure.
func coerceAll(t schema.Type, raw []string) ([]any, error) {
	out := make([]any, len(raw))
	for i, r := range raw {
		v, err := Coerce(t, r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
