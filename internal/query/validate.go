package query

import (
	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
)

var validOperators = map[models.Operator]bool{
	models.OpEq: true, models.OpNe: true,
	models.OpGt: true, models.OpLt: true,
	models.OpGte: true, models.OpLte: true,
	models.OpContains: true, models.OpIn: true,
}

var validFunctions = map[models.AggregateFunc]bool{
	models.AggSum: true, models.AggAvg: true,
	models.AggMin: true, models.AggMax: true,
	models.AggCount: true, models.AggDistinct: true,
}

var validIntervals = map[models.Interval]bool{
	models.IntervalDay: true, models.IntervalWeek: true,
	models.IntervalMonth: true, models.IntervalQuarter: true,
	models.IntervalYear: true,
}

// validate checks the whole query against the dataset before any row
// is evaluated. Every failure is a ValidationError.
func validate(ds *dataset.Dataset, q models.Query) error {
	if q.Limit < 0 {
		return models.NewValidationError("limit", "must not be negative, got %d", q.Limit)
	}
	if q.Offset < 0 {
		return models.NewValidationError("offset", "must not be negative, got %d", q.Offset)
	}
	if err := validatePredicates(ds, q.Filters); err != nil {
		return err
	}

	switch s := q.Spec.(type) {
	case models.FilterSpec:
		return validatePredicates(ds, s.Predicates)

	case models.AggregateSpec:
		if len(s.GroupBy) == 0 {
			return models.NewValidationError("group_by", "aggregate queries require at least one group field")
		}
		for _, col := range s.GroupBy {
			if !ds.HasColumn(col) {
				return models.NewValidationError("group_by", "unknown column %q", col)
			}
		}
		if len(s.Aggregates) == 0 {
			return models.NewValidationError("aggregates", "aggregate queries require at least one aggregation")
		}
		for _, agg := range s.Aggregates {
			if !ds.HasColumn(agg.Field) {
				return models.NewValidationError("aggregates", "unknown column %q", agg.Field)
			}
			if !validFunctions[agg.Function] {
				return models.NewValidationError("aggregates", "unknown aggregate function %q", agg.Function)
			}
		}
		return nil

	case models.TrendSpec:
		if !ds.HasColumn(s.DateField) {
			return models.NewValidationError("date_field", "unknown column %q", s.DateField)
		}
		if !ds.HasColumn(s.ValueField) {
			return models.NewValidationError("value_field", "unknown column %q", s.ValueField)
		}
		if !validIntervals[s.Interval] {
			return models.NewValidationError("interval", "unknown interval %q", s.Interval)
		}
		if s.Function != "" && !validFunctions[s.Function] {
			return models.NewValidationError("aggregate_function", "unknown aggregate function %q", s.Function)
		}
		return nil

	case models.CompareSpec:
		if !ds.HasColumn(s.GroupField) {
			return models.NewValidationError("group_field", "unknown column %q", s.GroupField)
		}
		if !ds.HasColumn(s.ValueField) {
			return models.NewValidationError("value_field", "unknown column %q", s.ValueField)
		}
		if s.Type != "" && s.Type != models.CompareAbsolute && s.Type != models.ComparePercentage {
			return models.NewValidationError("comparison_type", "unknown comparison type %q", s.Type)
		}
		if s.Function != "" && !validFunctions[s.Function] {
			return models.NewValidationError("aggregate_function", "unknown aggregate function %q", s.Function)
		}
		return nil

	case models.CorrelateSpec:
		if !ds.HasColumn(s.FieldA) {
			return models.NewValidationError("field_a", "unknown column %q", s.FieldA)
		}
		if !ds.HasColumn(s.FieldB) {
			return models.NewValidationError("field_b", "unknown column %q", s.FieldB)
		}
		if s.Method != "" && s.Method != models.MethodPearson && s.Method != models.MethodSpearman {
			return models.NewValidationError("method", "unknown correlation method %q", s.Method)
		}
		return nil

	case nil:
		return models.NewValidationError("kind", "query has no spec")

	default:
		return models.NewValidationError("kind", "unknown spec type %T", q.Spec)
	}
}

func validatePredicates(ds *dataset.Dataset, preds []models.Predicate) error {
	for _, p := range preds {
		if !ds.HasColumn(p.Field) {
			return models.NewValidationError("filters", "unknown column %q", p.Field)
		}
		if !validOperators[p.Operator] {
			return models.NewValidationError("filters", "unknown operator %q", p.Operator)
		}
	}
	return nil
}
