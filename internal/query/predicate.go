package query

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
)

// applyPredicates returns the rows matching every predicate (sequential
// AND). Null cells satisfy only ne.
func applyPredicates(ds *dataset.Dataset, preds []models.Predicate) (*dataset.Dataset, error) {
	if len(preds) == 0 {
		return ds, nil
	}
	mask := make([]bool, ds.RowCount())
	for i := range mask {
		mask[i] = true
	}
	for _, p := range preds {
		vals, err := ds.Values(p.Field)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			if mask[i] {
				mask[i] = matchPredicate(v, p)
			}
		}
	}
	return ds.Select(mask)
}

func matchPredicate(v any, p models.Predicate) bool {
	switch p.Operator {
	case models.OpEq:
		return equalValues(v, p.Value)
	case models.OpNe:
		return !equalValues(v, p.Value)
	case models.OpGt:
		c, ok := compareValues(v, p.Value)
		return ok && c > 0
	case models.OpLt:
		c, ok := compareValues(v, p.Value)
		return ok && c < 0
	case models.OpGte:
		c, ok := compareValues(v, p.Value)
		return ok && c >= 0
	case models.OpLte:
		c, ok := compareValues(v, p.Value)
		return ok && c <= 0
	case models.OpContains:
		if dataset.IsNull(v) {
			return false
		}
		return strings.Contains(
			strings.ToLower(dataset.String(v)),
			strings.ToLower(dataset.String(p.Value)),
		)
	case models.OpIn:
		for _, item := range asList(p.Value) {
			if equalValues(v, item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	if dataset.IsNull(a) || dataset.IsNull(b) {
		return dataset.IsNull(a) && dataset.IsNull(b)
	}
	if fa, fb := dataset.Float(a), dataset.Float(b); fa != nil && fb != nil {
		return *fa == *fb
	}
	return dataset.String(a) == dataset.String(b)
}

// compareValues orders two cells: numerically when both coerce,
// chronologically when both are timestamps, lexicographically
// otherwise. ok is false when either side is null.
func compareValues(a, b any) (int, bool) {
	if dataset.IsNull(a) || dataset.IsNull(b) {
		return 0, false
	}
	if fa, fb := dataset.Float(a), dataset.Float(b); fa != nil && fb != nil {
		switch {
		case *fa < *fb:
			return -1, true
		case *fa > *fb:
			return 1, true
		default:
			return 0, true
		}
	}
	if ta, okA := dataset.Time(a); okA {
		if tb, okB := dataset.Time(b); okB {
			switch {
			case ta.Before(tb):
				return -1, true
			case ta.After(tb):
				return 1, true
			default:
				return 0, true
			}
		}
	}
	return strings.Compare(dataset.String(a), dataset.String(b)), true
}

// asList treats a non-sequence value as a single-element list.
func asList(v any) []any {
	switch tv := v.(type) {
	case []any:
		return tv
	case []string:
		out := make([]any, len(tv))
		for i, s := range tv {
			out[i] = s
		}
		return out
	}
	if items, err := cast.ToSliceE(v); err == nil {
		return items
	}
	return []any{v}
}
