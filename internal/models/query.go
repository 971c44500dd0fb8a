package models

import (
	"encoding/json"
	"fmt"
)

// QueryKind identifies which analytical operation a query performs.
type QueryKind string

const (
	KindFilter    QueryKind = "filter"
	KindAggregate QueryKind = "aggregate"
	KindTrend     QueryKind = "trend"
	KindCompare   QueryKind = "compare"
	KindCorrelate QueryKind = "correlate"
)

// Operator is a filter predicate comparison operator.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
)

// AggregateFunc names an aggregation applied to a column's values.
type AggregateFunc string

const (
	AggSum      AggregateFunc = "sum"
	AggAvg      AggregateFunc = "avg"
	AggMin      AggregateFunc = "min"
	AggMax      AggregateFunc = "max"
	AggCount    AggregateFunc = "count"
	AggDistinct AggregateFunc = "distinct"
)

// Interval is a trend bucketing granularity.
type Interval string

const (
	IntervalDay     Interval = "day"
	IntervalWeek    Interval = "week"
	IntervalMonth   Interval = "month"
	IntervalQuarter Interval = "quarter"
	IntervalYear    Interval = "year"
)

// ComparisonType selects absolute or share-of-total compare output.
type ComparisonType string

const (
	CompareAbsolute   ComparisonType = "absolute"
	ComparePercentage ComparisonType = "percentage"
)

// CorrelationMethod names a correlation coefficient.
type CorrelationMethod string

const (
	MethodPearson  CorrelationMethod = "pearson"
	MethodSpearman CorrelationMethod = "spearman"
)

// Predicate is one filter condition, ANDed with its siblings.
type Predicate struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Spec is the operation payload of a query. Exactly one concrete spec
// type exists per query kind; the executor switches on the concrete
// type, so no "is this sub-spec present" checks survive past decoding.
type Spec interface {
	Kind() QueryKind
}

// FilterSpec returns the rows matching all of its predicates.
type FilterSpec struct {
	Predicates []Predicate `json:"predicates"`
}

func (FilterSpec) Kind() QueryKind { return KindFilter }

// AggregateField is one aggregation within an AggregateSpec.
type AggregateField struct {
	Field    string        `json:"field"`
	Function AggregateFunc `json:"function"`
	Alias    string        `json:"alias,omitempty"`
}

// Name returns the output column for this aggregation, defaulting to
// {field}_{function} when no alias is set.
func (a AggregateField) Name() string {
	if a.Alias != "" {
		return a.Alias
	}
	return fmt.Sprintf("%s_%s", a.Field, a.Function)
}

// AggregateSpec groups rows and applies one or more aggregations.
type AggregateSpec struct {
	GroupBy    []string         `json:"group_by"`
	Aggregates []AggregateField `json:"aggregates"`
}

func (AggregateSpec) Kind() QueryKind { return KindAggregate }

// TrendSpec buckets a value field over calendar periods of a date field.
type TrendSpec struct {
	DateField  string        `json:"date_field"`
	ValueField string        `json:"value_field"`
	Interval   Interval      `json:"interval"`
	Function   AggregateFunc `json:"aggregate_function"`
}

func (TrendSpec) Kind() QueryKind { return KindTrend }

// CompareSpec aggregates one value field across the groups of another.
type CompareSpec struct {
	GroupField string         `json:"group_field"`
	ValueField string         `json:"value_field"`
	Type       ComparisonType `json:"comparison_type"`
	Function   AggregateFunc  `json:"aggregate_function"`
}

func (CompareSpec) Kind() QueryKind { return KindCompare }

// CorrelateSpec computes a correlation coefficient between two fields.
type CorrelateSpec struct {
	FieldA string            `json:"field_a"`
	FieldB string            `json:"field_b"`
	Method CorrelationMethod `json:"method"`
}

func (CorrelateSpec) Kind() QueryKind { return KindCorrelate }

// Query is one declarative analytical operation: a kind-specific spec,
// shared pre-filter predicates applied before any kind runs, and
// pagination over the materialized result.
type Query struct {
	Spec    Spec
	Filters []Predicate
	Limit   int
	Offset  int
}

// queryEnvelope is the wire form of a Query: a kind tag plus one
// kind-specific payload.
type queryEnvelope struct {
	Kind      QueryKind      `json:"kind"`
	Filter    *FilterSpec    `json:"filter,omitempty"`
	Aggregate *AggregateSpec `json:"aggregate,omitempty"`
	Trend     *TrendSpec     `json:"trend,omitempty"`
	Compare   *CompareSpec   `json:"compare,omitempty"`
	Correlate *CorrelateSpec `json:"correlate,omitempty"`
	Filters   []Predicate    `json:"filters,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	Offset    int            `json:"offset,omitempty"`
}

func (q Query) MarshalJSON() ([]byte, error) {
	env := queryEnvelope{Filters: q.Filters, Limit: q.Limit, Offset: q.Offset}
	switch s := q.Spec.(type) {
	case FilterSpec:
		env.Kind, env.Filter = KindFilter, &s
	case *FilterSpec:
		env.Kind, env.Filter = KindFilter, s
	case AggregateSpec:
		env.Kind, env.Aggregate = KindAggregate, &s
	case *AggregateSpec:
		env.Kind, env.Aggregate = KindAggregate, s
	case TrendSpec:
		env.Kind, env.Trend = KindTrend, &s
	case *TrendSpec:
		env.Kind, env.Trend = KindTrend, s
	case CompareSpec:
		env.Kind, env.Compare = KindCompare, &s
	case *CompareSpec:
		env.Kind, env.Compare = KindCompare, s
	case CorrelateSpec:
		env.Kind, env.Correlate = KindCorrelate, &s
	case *CorrelateSpec:
		env.Kind, env.Correlate = KindCorrelate, s
	case nil:
		return nil, NewValidationError("kind", "query has no spec")
	default:
		return nil, NewValidationError("kind", "unknown spec type %T", q.Spec)
	}
	return json.Marshal(env)
}

func (q *Query) UnmarshalJSON(data []byte) error {
	var env queryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	q.Filters = env.Filters
	q.Limit = env.Limit
	q.Offset = env.Offset
	switch env.Kind {
	case KindFilter:
		if env.Filter == nil {
			return NewValidationError("filter", "missing payload for kind %q", env.Kind)
		}
		q.Spec = *env.Filter
	case KindAggregate:
		if env.Aggregate == nil {
			return NewValidationError("aggregate", "missing payload for kind %q", env.Kind)
		}
		q.Spec = *env.Aggregate
	case KindTrend:
		if env.Trend == nil {
			return NewValidationError("trend", "missing payload for kind %q", env.Kind)
		}
		q.Spec = *env.Trend
	case KindCompare:
		if env.Compare == nil {
			return NewValidationError("compare", "missing payload for kind %q", env.Kind)
		}
		q.Spec = *env.Compare
	case KindCorrelate:
		if env.Correlate == nil {
			return NewValidationError("correlate", "missing payload for kind %q", env.Kind)
		}
		q.Spec = *env.Correlate
	default:
		return NewValidationError("kind", "unknown query kind %q", env.Kind)
	}
	return nil
}
