package query

import (
	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/stats"
)

// runCorrelate coerces both fields to numeric (non-convertible cells
// become null and the pair is dropped) and computes the requested
// coefficient. A degenerate computation, such as a constant side,
// yields a null coefficient, not an error. A field with no convertible
// values at all over a non-empty dataset is a TypeError.
func runCorrelate(ds *dataset.Dataset, spec models.CorrelateSpec) ([]models.Row, []string, error) {
	method := spec.Method
	if method == "" {
		method = models.MethodPearson
	}

	as, err := ds.NumericValues(spec.FieldA)
	if err != nil {
		return nil, nil, err
	}
	bs, err := ds.NumericValues(spec.FieldB)
	if err != nil {
		return nil, nil, err
	}

	if ds.RowCount() > 0 {
		if allNil(as) {
			return nil, nil, models.NewTypeError(spec.FieldA, "no values are convertible to numeric")
		}
		if allNil(bs) {
			return nil, nil, models.NewTypeError(spec.FieldB, "no values are convertible to numeric")
		}
	}

	var xs, ys []float64
	for i := range as {
		if as[i] != nil && bs[i] != nil {
			xs = append(xs, *as[i])
			ys = append(ys, *bs[i])
		}
	}

	var coeff any
	var v float64
	var ok bool
	if method == models.MethodSpearman {
		v, ok = stats.Spearman(xs, ys)
	} else {
		v, ok = stats.Pearson(xs, ys)
	}
	if ok {
		coeff = stats.Round(v, 4)
	}

	row := models.Row{
		"field_a":     spec.FieldA,
		"field_b":     spec.FieldB,
		"method":      string(method),
		"correlation": coeff,
		"n":           len(xs),
	}
	return []models.Row{row}, []string{"field_a", "field_b", "method", "correlation", "n"}, nil
}

func allNil(vals []*float64) bool {
	for _, v := range vals {
		if v != nil {
			return false
		}
	}
	return true
}
