package analyze

import (
	"math"
	"sort"

	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/stats"
)

// driftAnomalies emits one anomaly per partial column. Severity: high
// when the column is missing from exactly one dataset, medium when it
// is still present in at least half of them, low otherwise.
func driftAnomalies(items []NamedDataset, schema models.SchemaOverview) []models.Anomaly {
	columns := make([]string, 0, len(schema.PartialColumns))
	for col := range schema.PartialColumns {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	anomalies := make([]models.Anomaly, 0, len(columns))
	for _, col := range columns {
		present := schema.PartialColumns[col]
		holderSet := make(map[string]bool, len(present))
		for _, name := range present {
			holderSet[name] = true
		}
		var missing []string
		for _, item := range items {
			if !holderSet[item.Name] {
				missing = append(missing, item.Name)
			}
		}

		severity := models.SeverityLow
		switch {
		case len(missing) == 1:
			severity = models.SeverityHigh
		case len(present)*2 >= len(items):
			severity = models.SeverityMedium
		}

		anomalies = append(anomalies, models.Anomaly{
			Kind:     models.AnomalySchemaDrift,
			Severity: severity,
			Datasets: missing,
			Column:   col,
			Details: map[string]any{
				"present_in":   present,
				"missing_from": missing,
			},
		})
	}
	return anomalies
}

// typeMismatchAnomalies emits one high-severity anomaly per column with
// conflicting types, naming every affected dataset with its type.
func typeMismatchAnomalies(schema models.SchemaOverview) []models.Anomaly {
	columns := make([]string, 0, len(schema.TypeConflicts))
	for col := range schema.TypeConflicts {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	anomalies := make([]models.Anomaly, 0, len(columns))
	for _, col := range columns {
		conflict := schema.TypeConflicts[col]
		datasets := make([]string, 0, len(conflict))
		types := make(map[string]any, len(conflict))
		for name, t := range conflict {
			datasets = append(datasets, name)
			types[name] = string(t)
		}
		sort.Strings(datasets)

		anomalies = append(anomalies, models.Anomaly{
			Kind:     models.AnomalyTypeMismatch,
			Severity: models.SeverityHigh,
			Datasets: datasets,
			Column:   col,
			Details: map[string]any{
				"types":     types,
				"consensus": string(schema.ConsensusTypes[col]),
			},
		})
	}
	return anomalies
}

// metricOutlierAnomalies flags datasets whose per-column mean deviates
// from the rest of the group. The z-score is computed over per-dataset
// MEANS, not row-level values: each dataset's mean is measured against
// the mean and standard deviation of the other datasets' means, so a
// hit reads "this whole dataset is unusual for this column", not "this
// row is unusual". Columns must be numeric in every dataset; a column
// is skipped when fewer than two datasets contribute a mean. When at
// least two remaining means agree exactly (zero spread), a matching mean
// passes and any differing mean is flagged high: the deviation from an
// exact consensus is unbounded, not undefined.
func metricOutlierAnomalies(items []NamedDataset, schema models.SchemaOverview) []models.Anomaly {
	var anomalies []models.Anomaly
	for _, col := range schema.CommonColumns {
		if !numericEverywhere(items, col) {
			continue
		}

		type datasetMean struct {
			name string
			mean float64
		}
		var means []datasetMean
		for _, item := range items {
			ptrs, err := item.Data.NumericValues(col)
			if err != nil {
				continue
			}
			if m, ok := stats.Mean(stats.Compact(ptrs)); ok {
				means = append(means, datasetMean{name: item.Name, mean: m})
			}
		}
		if len(means) < 2 {
			continue
		}

		for i, dm := range means {
			others := make([]float64, 0, len(means)-1)
			for j, other := range means {
				if j != i {
					others = append(others, other.mean)
				}
			}
			crossMean, _ := stats.Mean(others)
			crossStd, ok := stats.StdP(others)
			if !ok {
				continue
			}

			var zScore any
			severity := models.SeverityMedium
			if crossStd == 0 {
				// A single reference mean is trivially zero-spread but
				// carries no consensus; require at least two.
				if len(others) < 2 || dm.mean == crossMean {
					continue
				}
				severity = models.SeverityHigh
			} else {
				z := (dm.mean - crossMean) / crossStd
				if math.Abs(z) < 2 {
					continue
				}
				if math.Abs(z) >= 3 {
					severity = models.SeverityHigh
				}
				zScore = stats.Round(z, 4)
			}
			anomalies = append(anomalies, models.Anomaly{
				Kind:     models.AnomalyMetricOutlier,
				Severity: severity,
				Datasets: []string{dm.name},
				Column:   col,
				Details: map[string]any{
					"z_score":    zScore,
					"value":      stats.Round(dm.mean, 4),
					"cross_mean": stats.Round(crossMean, 4),
					"cross_std":  stats.Round(crossStd, 4),
				},
			})
		}
	}
	return anomalies
}

func numericEverywhere(items []NamedDataset, col string) bool {
	for _, item := range items {
		t, err := item.Data.ColumnType(col)
		if err != nil || !t.IsNumeric() {
			return false
		}
	}
	return true
}
