package models

import "time"

// TypeMismatch flags a common column whose normalized type differs
// between the two sides.
type TypeMismatch struct {
	Column string     `json:"column"`
	TypeA  ColumnType `json:"type_a"`
	TypeB  ColumnType `json:"type_b"`
}

// SchemaComparison partitions the column-name union of two datasets.
// CommonColumns, OnlyInA and OnlyInB are pairwise disjoint and their
// union is the full column universe.
type SchemaComparison struct {
	CommonColumns  []string       `json:"common_columns"`
	OnlyInA        []string       `json:"only_in_a"`
	OnlyInB        []string       `json:"only_in_b"`
	TypeMismatches []TypeMismatch `json:"type_mismatches"`
}

// ColumnStats holds per-side descriptive statistics for one numeric
// column. Fields are nil when the underlying computation is degenerate
// (empty column, single value for std).
type ColumnStats struct {
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
}

// NumericDelta compares one common numeric column across both sides.
type NumericDelta struct {
	Column        string      `json:"column"`
	A             ColumnStats `json:"a"`
	B             ColumnStats `json:"b"`
	MeanDelta     *float64    `json:"mean_delta"`
	MeanPctChange *float64    `json:"mean_pct_change"`
}

// ValueCount is one categorical value with its frequency and share.
type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CategoricalDelta compares one common string column across both sides.
// NewInB and MissingInB are sorted and capped.
type CategoricalDelta struct {
	Column       string       `json:"column"`
	CardinalityA int          `json:"cardinality_a"`
	CardinalityB int          `json:"cardinality_b"`
	TopValuesA   []ValueCount `json:"top_values_a"`
	TopValuesB   []ValueCount `json:"top_values_b"`
	NewInB       []string     `json:"new_in_b"`
	MissingInB   []string     `json:"missing_in_b"`
}

// NullDelta tracks the null-count movement of one common column.
type NullDelta struct {
	Column string `json:"column"`
	NullsA int    `json:"nulls_a"`
	NullsB int    `json:"nulls_b"`
	Delta  int    `json:"delta"`
}

// StatisticsComparison holds the row-count and per-column statistical
// deltas between the baseline (A) and comparison (B) datasets.
// RowPctChange is nil exactly when A has zero rows.
type StatisticsComparison struct {
	RowCountA         int                `json:"row_count_a"`
	RowCountB         int                `json:"row_count_b"`
	RowDelta          int                `json:"row_delta"`
	RowPctChange      *float64           `json:"row_pct_change"`
	NumericDeltas     []NumericDelta     `json:"numeric_deltas"`
	CategoricalDeltas []CategoricalDelta `json:"categorical_deltas"`
	NullDeltas        []NullDelta        `json:"null_deltas"`
}

// Direction classifies the sign of a metric's percent change.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Significance classifies the magnitude of a percent change.
type Significance string

const (
	SignificanceHigh   Significance = "high"
	SignificanceMedium Significance = "medium"
	SignificanceLow    Significance = "low"
)

// MetricDelta compares the sums of one heuristically selected metric
// column. IsImprovement is nil when the column name gives no hint which
// direction is good.
type MetricDelta struct {
	Column        string       `json:"column"`
	SumA          *float64     `json:"sum_a"`
	SumB          *float64     `json:"sum_b"`
	Delta         *float64     `json:"delta"`
	PctChange     *float64     `json:"pct_change"`
	Direction     Direction    `json:"direction"`
	Significance  Significance `json:"significance"`
	IsImprovement *bool        `json:"is_improvement"`
}

// KeyMetricsComparison summarizes metric-column movements.
type KeyMetricsComparison struct {
	Metrics []MetricDelta `json:"metrics"`
	Summary string        `json:"summary"`
}

// ComparisonResult is the full delta between two named datasets:
// schema, statistics, key metrics, and ranked insight strings.
type ComparisonResult struct {
	ID          string               `json:"id"`
	DatasetA    string               `json:"dataset_a"`
	DatasetB    string               `json:"dataset_b"`
	Schema      SchemaComparison     `json:"schema"`
	Statistics  StatisticsComparison `json:"statistics"`
	KeyMetrics  KeyMetricsComparison `json:"key_metrics"`
	Insights    []string             `json:"insights"`
	GeneratedAt time.Time            `json:"generated_at"`
}
