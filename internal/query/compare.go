package query

import (
	"fmt"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/stats"
)

// runCompare aggregates the value field per group of the group field.
// Percentage comparisons add each group's share of the total, with a
// zero total yielding 0.0 for every group rather than a division error.
func runCompare(ds *dataset.Dataset, spec models.CompareSpec) ([]models.Row, []string) {
	fn := spec.Function
	if fn == "" {
		fn = models.AggSum
	}
	valueCol := fmt.Sprintf("%s_%s", spec.ValueField, fn)

	groups := groupRows(ds, []string{spec.GroupField})
	rows := make([]models.Row, 0, len(groups))
	total := 0.0
	for _, g := range groups {
		agg := aggregateCell(ds, g.rows, spec.ValueField, fn)
		if f := dataset.Float(agg); f != nil {
			total += *f
		}
		rows = append(rows, models.Row{
			spec.GroupField: g.values[0],
			valueCol:        agg,
		})
	}

	columns := []string{spec.GroupField, valueCol}
	if spec.Type == models.ComparePercentage {
		columns = append(columns, "percentage")
		for _, row := range rows {
			pct := 0.0
			if total != 0 {
				if f := dataset.Float(row[valueCol]); f != nil {
					pct = stats.Round(*f/total*100, 2)
				}
			}
			row["percentage"] = pct
		}
	}
	return rows, columns
}
