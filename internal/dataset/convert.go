package dataset

import (
	"math"
	"sort"
	"time"

	"github.com/spf13/cast"
)

// IsNull reports whether a cell value is missing: nil or a float NaN.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	if f, ok := v.(float32); ok {
		return math.IsNaN(float64(f))
	}
	return false
}

// Float coerces a cell to float64, returning nil for null, infinite,
// NaN, or non-convertible values. Booleans coerce to 0/1 and numeric
// strings parse.
func Float(v any) *float64 {
	if IsNull(v) {
		return nil
	}
	if _, isTime := v.(time.Time); isTime {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// String coerces a cell to its string form; null cells yield "".
func String(v any) string {
	if IsNull(v) {
		return ""
	}
	return cast.ToString(v)
}

// Time coerces a cell to a timestamp. Strings are parsed against the
// usual date layouts; integers are rejected rather than guessed as
// epochs.
func Time(v any) (time.Time, bool) {
	switch tv := v.(type) {
	case time.Time:
		return tv, true
	case string:
		return parseTime(tv)
	default:
		return time.Time{}, false
	}
}

func parseTime(s string) (time.Time, bool) {
	t, err := cast.StringToDateInDefaultLocation(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func sortSlice(s []string, less func(a, b string) bool) {
	sort.Slice(s, func(i, j int) bool { return less(s[i], s[j]) })
}
