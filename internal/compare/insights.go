package compare

import (
	"fmt"
	"strings"

	"github.com/querylens/querylens/internal/models"
)

// buildInsights derives the ranked insight strings in fixed priority
// order: row-count movement, column-set differences, type mismatches,
// high-significance metric deltas, large mean shifts, and null-count
// jumps. The list is truncated to the cap and never reordered by
// magnitude.
func (c *Comparator) buildInsights(schema models.SchemaComparison, statistics models.StatisticsComparison, metrics models.KeyMetricsComparison) []string {
	var insights []string

	if pct := statistics.RowPctChange; pct != nil && (*pct > 10 || *pct < -10) {
		insights = append(insights, fmt.Sprintf(
			"Row count changed by %+.2f%% (%d to %d rows)",
			*pct, statistics.RowCountA, statistics.RowCountB))
	}

	if len(schema.OnlyInA) > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d column(s) present only in the baseline: %s",
			len(schema.OnlyInA), nameList(schema.OnlyInA, 5)))
	}
	if len(schema.OnlyInB) > 0 {
		insights = append(insights, fmt.Sprintf(
			"%d column(s) present only in the comparison: %s",
			len(schema.OnlyInB), nameList(schema.OnlyInB, 5)))
	}

	if n := len(schema.TypeMismatches); n > 0 {
		insights = append(insights, fmt.Sprintf("%d common column(s) changed type", n))
	}

	for _, m := range metrics.Metrics {
		if m.Significance == models.SignificanceHigh && m.PctChange != nil {
			insights = append(insights, fmt.Sprintf(
				"Key metric %q moved %s by %+.2f%% (%.2f to %.2f)",
				m.Column, m.Direction, *m.PctChange, *m.SumA, *m.SumB))
		}
	}

	for _, d := range statistics.NumericDeltas {
		if d.MeanPctChange != nil && (*d.MeanPctChange > 20 || *d.MeanPctChange < -20) {
			insights = append(insights, fmt.Sprintf(
				"Mean of %q shifted by %+.2f%%", d.Column, *d.MeanPctChange))
		}
	}

	for _, d := range statistics.NullDeltas {
		if d.Delta > 100 || d.Delta < -100 {
			insights = append(insights, fmt.Sprintf(
				"Null count of %q changed by %+d (%d to %d)",
				d.Column, d.Delta, d.NullsA, d.NullsB))
		}
	}

	if len(insights) > c.maxInsights {
		insights = insights[:c.maxInsights]
	}
	return insights
}

// nameList renders the first max names, noting how many were left out.
func nameList(names []string, max int) string {
	if len(names) <= max {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(names[:max], ", "), len(names)-max)
}
