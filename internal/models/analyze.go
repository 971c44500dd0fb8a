package models

import "time"

// NumericSummary holds null-safe descriptive statistics for one numeric
// column of one dataset.
type NumericSummary struct {
	Mean *float64 `json:"mean"`
	Std  *float64 `json:"std"`
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
}

// DatasetSummary describes one dataset within a multi-dataset analysis.
type DatasetSummary struct {
	Name               string                    `json:"name"`
	RowCount           int                       `json:"row_count"`
	ColumnCount        int                       `json:"column_count"`
	NumericColumns     []string                  `json:"numeric_columns"`
	CategoricalColumns []string                  `json:"categorical_columns"`
	ColumnTypes        map[string]ColumnType     `json:"column_types"`
	NumericStats       map[string]NumericSummary `json:"numeric_stats"`
}

// SchemaOverview maps how columns are shared across datasets. A column
// is common only when every dataset has it; a partial column maps to
// the names of the datasets that do, in input order. ConsensusTypes carries the
// majority type per column; TypeConflicts lists the per-dataset types
// for columns with more than one distinct type.
type SchemaOverview struct {
	CommonColumns  []string                         `json:"common_columns"`
	PartialColumns map[string][]string              `json:"partial_columns"`
	ConsensusTypes map[string]ColumnType            `json:"consensus_types"`
	TypeConflicts  map[string]map[string]ColumnType `json:"type_conflicts"`
}

// AnomalyKind tags the category of a cross-dataset anomaly.
type AnomalyKind string

const (
	AnomalySchemaDrift     AnomalyKind = "schema_drift"
	AnomalyTypeMismatch    AnomalyKind = "type_mismatch"
	AnomalyMetricOutlier   AnomalyKind = "metric_outlier"
	AnomalyNoCommonColumns AnomalyKind = "no_common_columns"
)

// Severity ranks anomalies for reporting order.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank returns the sort position of the severity, high first.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// Anomaly is one detected cross-dataset irregularity.
type Anomaly struct {
	Kind     AnomalyKind    `json:"kind"`
	Severity Severity       `json:"severity"`
	Datasets []string       `json:"datasets"`
	Column   string         `json:"column,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// PairwiseComparison attaches one full two-dataset comparison to the
// analysis it belongs to.
type PairwiseComparison struct {
	DatasetA string            `json:"dataset_a"`
	DatasetB string            `json:"dataset_b"`
	Result   *ComparisonResult `json:"result"`
}

// AnalysisResult is the outcome of analyzing 2-5 related datasets.
// Anomalies are sorted by severity; ties keep discovery order.
type AnalysisResult struct {
	ID           string               `json:"id"`
	DatasetNames []string             `json:"dataset_names"`
	Summaries    []DatasetSummary     `json:"summaries"`
	Schema       SchemaOverview       `json:"schema"`
	Anomalies    []Anomaly            `json:"anomalies"`
	Pairwise     []PairwiseComparison `json:"pairwise"`
	GeneratedAt  time.Time            `json:"generated_at"`
}
