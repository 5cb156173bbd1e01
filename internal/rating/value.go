// Package rating holds the star rating rules shared by every surface that
// stores, edits, displays or indexes a star field.
package rating

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Value is a normalized rating. The zero Value is absent, which is distinct
// from a rating of 0.
type Value struct {
	stars int
	set   bool
}

func Absent() Value {
	return Value{}
}

// Of wraps n without clamping. Use Normalize for untrusted input.
func Of(n int) Value {
	return Value{stars: n, set: true}
}

func (v Value) IsAbsent() bool {
	return !v.set
}

// Int returns the star count and whether a rating is present.
func (v Value) Int() (int, bool) {
	return v.stars, v.set
}

// Ptr returns nil for absent so the value can be handed to code that models
// nullable integers as pointers.
func (v Value) Ptr() *int {
	if !v.set {
		return nil
	}
	n := v.stars
	return &n
}

func (v Value) String() string {
	if !v.set {
		return "absent"
	}
	return strconv.Itoa(v.stars)
}

// Normalize coerces raw into a rating bounded by [0, maxStars]. nil and empty
// strings are absent. Numbers are truncated toward zero, never rounded.
// Anything that does not read as a number is treated as absent.
func Normalize(raw any, maxStars int) Value {
	n, ok := coerce(raw)
	if !ok {
		return Absent()
	}
	return Of(clamp(n, maxStars))
}

func clamp(n int64, maxStars int) int {
	upper := int64(maxStars)
	if upper < 0 {
		upper = 0
	}
	if n < 0 {
		return 0
	}
	if n > upper {
		return int(upper)
	}
	return int(n)
}

func coerce(raw any) (int64, bool) {
	switch value := raw.(type) {
	case nil:
		return 0, false
	case Value:
		if value.IsAbsent() {
			return 0, false
		}
		return int64(value.stars), true
	case string:
		return coerceString(value)
	case []byte:
		return coerceString(string(value))
	case json.Number:
		return coerceString(value.String())
	case bool:
		if value {
			return 1, true
		}
		return 0, true
	case int:
		return int64(value), true
	case int8:
		return int64(value), true
	case int16:
		return int64(value), true
	case int32:
		return int64(value), true
	case int64:
		return value, true
	case uint:
		return coerceUint(uint64(value))
	case uint8:
		return int64(value), true
	case uint16:
		return int64(value), true
	case uint32:
		return int64(value), true
	case uint64:
		return coerceUint(value)
	case float32:
		return coerceFloat(float64(value))
	case float64:
		return coerceFloat(value)
	case sql.NullInt64:
		if !value.Valid {
			return 0, false
		}
		return value.Int64, true
	case sql.NullInt32:
		if !value.Valid {
			return 0, false
		}
		return int64(value.Int32), true
	case sql.NullInt16:
		if !value.Valid {
			return 0, false
		}
		return int64(value.Int16), true
	case sql.NullFloat64:
		if !value.Valid {
			return 0, false
		}
		return coerceFloat(value.Float64)
	case sql.NullString:
		if !value.Valid {
			return 0, false
		}
		return coerceString(value.String)
	}

	// Pointers to any of the above.
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return 0, false
		}
		return coerce(rv.Elem().Interface())
	}

	return 0, false
}

func coerceString(raw string) (int64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		// Overflowing digits parse to ±Inf, which clamps.
		return coerceFloat(f)
	}
	// "Inf" and "NaN" spelled out are words, not numbers.
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return coerceFloat(f)
}

func coerceUint(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return math.MaxInt64, true
	}
	return int64(n), true
}

func coerceFloat(f float64) (int64, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	}
	return int64(math.Trunc(f)), true
}

var jsonNull = []byte("null")

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(v.stars)), nil
}

// UnmarshalJSON accepts null or a JSON integer. It does not clamp; callers
// normalize against the owning field.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, jsonNull) {
		*v = Absent()
		return nil
	}
	var n int
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("rating must be an integer or null: %w", err)
	}
	*v = Of(n)
	return nil
}

// Scan implements sql.Scanner; NULL scans to absent.
func (v *Value) Scan(src any) error {
	if src == nil {
		*v = Absent()
		return nil
	}
	n, ok := coerce(src)
	if !ok {
		return fmt.Errorf("scan rating: unsupported value %T", src)
	}
	*v = Of(int(n))
	return nil
}

// Value implements driver.Valuer; absent is stored as NULL.
func (v Value) Value() (driver.Value, error) {
	if !v.set {
		return nil, nil
	}
	return int64(v.stars), nil
}
