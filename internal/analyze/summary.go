package analyze

import (
	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/stats"
)

// summarize builds the per-dataset profile: counts, the numeric /
// categorical column partition, and null-safe numeric statistics.
func summarize(name string, ds *dataset.Dataset) models.DatasetSummary {
	columns := ds.Columns()
	summary := models.DatasetSummary{
		Name:         name,
		RowCount:     ds.RowCount(),
		ColumnCount:  len(columns),
		ColumnTypes:  make(map[string]models.ColumnType, len(columns)),
		NumericStats: make(map[string]models.NumericSummary),
	}

	for _, col := range columns {
		t, _ := ds.ColumnType(col)
		summary.ColumnTypes[col] = t
		if t.IsNumeric() {
			summary.NumericColumns = append(summary.NumericColumns, col)
			summary.NumericStats[col] = numericSummary(ds, col)
		} else {
			summary.CategoricalColumns = append(summary.CategoricalColumns, col)
		}
	}
	return summary
}

func numericSummary(ds *dataset.Dataset, col string) models.NumericSummary {
	ptrs, _ := ds.NumericValues(col)
	vals := stats.Compact(ptrs)
	out := models.NumericSummary{}
	if v, ok := stats.Mean(vals); ok {
		out.Mean = roundPtr(v)
	}
	if v, ok := stats.Std(vals); ok {
		out.Std = roundPtr(v)
	}
	if v, ok := stats.Min(vals); ok {
		out.Min = roundPtr(v)
	}
	if v, ok := stats.Max(vals); ok {
		out.Max = roundPtr(v)
	}
	return out
}

func roundPtr(v float64) *float64 {
	r := stats.Round(v, 4)
	return &r
}
