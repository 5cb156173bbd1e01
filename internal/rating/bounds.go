package rating

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Bounds is the envelope an edited value must fit before it is normalized.
type Bounds struct {
	Min         int  `json:"min"`
	Max         int  `json:"max"`
	IntegerOnly bool `json:"integerOnly"`
}

func ValidationBounds(maxStars int) Bounds {
	return Bounds{Min: 0, Max: maxStars, IntegerOnly: true}
}

// BoundsError names the first rule a submitted value broke.
type BoundsError struct {
	Rule   string
	Bounds Bounds
}

const (
	RuleInteger = "integer"
	RuleMin     = "min"
	RuleMax     = "max"
)

func (e *BoundsError) Error() string {
	switch e.Rule {
	case RuleMin:
		return fmt.Sprintf("must be at least %d", e.Bounds.Min)
	case RuleMax:
		return fmt.Sprintf("must be no greater than %d", e.Bounds.Max)
	default:
		return "must be an integer"
	}
}

// Check reports whether raw fits the bounds. Absent input (nil, empty string)
// always passes; whether a value is required is the caller's business.
func (b Bounds) Check(raw any) error {
	raw = plain(raw)
	f, present, ok := numeric(raw)
	if !present {
		return nil
	}
	if !ok || (b.IntegerOnly && !isInteger(raw, f)) {
		return &BoundsError{Rule: RuleInteger, Bounds: b}
	}
	if f < float64(b.Min) {
		return &BoundsError{Rule: RuleMin, Bounds: b}
	}
	if f > float64(b.Max) {
		return &BoundsError{Rule: RuleMax, Bounds: b}
	}
	return nil
}

// plain unwraps pointers and turns textual and nullable inputs into the
// string, float64 or nil they carry, so every text form gets the same strict
// integer check.
func plain(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case json.Number:
		return string(v)
	case []byte:
		return string(v)
	case sql.NullString:
		if !v.Valid {
			return nil
		}
		return v.String
	case sql.NullFloat64:
		if !v.Valid {
			return nil
		}
		return v.Float64
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return plain(rv.Elem().Interface())
	}
	return raw
}

func isInteger(raw any, f float64) bool {
	if s, isString := raw.(string); isString {
		_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return err == nil || errors.Is(err, strconv.ErrRange)
	}
	return f == math.Trunc(f)
}

func numeric(raw any) (value float64, present bool, ok bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false, false
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, true, false
		}
		return f, true, true
	case float32:
		return numericFloat(float64(v))
	case float64:
		return numericFloat(v)
	case bool:
		return 0, true, false
	case Value:
		n, set := v.Int()
		return float64(n), set, set
	}

	n, ok := coerce(raw)
	if !ok {
		return 0, true, false
	}
	return float64(n), true, true
}

func numericFloat(f float64) (float64, bool, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, false
	}
	return f, true, true
}

// MutationDescription is the human-readable description attached to the
// nullable integer argument of the query API.
func MutationDescription(maxStars int) string {
	return fmt.Sprintf("The star rating value (0-%d)", maxStars)
}
