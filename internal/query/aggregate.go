package query

import (
	"strings"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/stats"
)

// group collects the row indices sharing one group-by tuple, in
// first-seen order.
type group struct {
	key    string
	values []any // one cell per group-by field, from the first row seen
	rows   []int
}

func groupRows(ds *dataset.Dataset, fields []string) []*group {
	var groups []*group
	index := make(map[string]*group)
	for i := 0; i < ds.RowCount(); i++ {
		row := ds.Row(i)
		parts := make([]string, len(fields))
		cells := make([]any, len(fields))
		for j, f := range fields {
			cells[j] = row[f]
			if dataset.IsNull(row[f]) {
				parts[j] = "\x00null"
			} else {
				parts[j] = dataset.String(row[f])
			}
		}
		key := strings.Join(parts, "\x1f")
		g, ok := index[key]
		if !ok {
			g = &group{key: key, values: cells}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
	}
	return groups
}

// aggregateCell applies one aggregate function to the named column over
// the group's rows. Returns nil when no numeric input exists for a
// numeric function.
func aggregateCell(ds *dataset.Dataset, rows []int, field string, fn models.AggregateFunc) any {
	switch fn {
	case models.AggCount:
		return len(rows)
	case models.AggDistinct:
		uniq := make(map[string]bool)
		for _, i := range rows {
			v := ds.Row(i)[field]
			if !dataset.IsNull(v) {
				uniq[dataset.String(v)] = true
			}
		}
		return len(uniq)
	}

	var vals []float64
	for _, i := range rows {
		if f := dataset.Float(ds.Row(i)[field]); f != nil {
			vals = append(vals, *f)
		}
	}
	var v float64
	var ok bool
	switch fn {
	case models.AggSum:
		v, ok = stats.Sum(vals)
	case models.AggAvg:
		v, ok = stats.Mean(vals)
	case models.AggMin:
		v, ok = stats.Min(vals)
	case models.AggMax:
		v, ok = stats.Max(vals)
	}
	if !ok {
		return nil
	}
	return v
}

func runAggregate(ds *dataset.Dataset, spec models.AggregateSpec) ([]models.Row, []string) {
	columns := append([]string(nil), spec.GroupBy...)
	for _, agg := range spec.Aggregates {
		columns = append(columns, agg.Name())
	}

	groups := groupRows(ds, spec.GroupBy)
	rows := make([]models.Row, 0, len(groups))
	for _, g := range groups {
		row := make(models.Row, len(columns))
		for j, f := range spec.GroupBy {
			row[f] = g.values[j]
		}
		for _, agg := range spec.Aggregates {
			row[agg.Name()] = aggregateCell(ds, g.rows, agg.Field, agg.Function)
		}
		rows = append(rows, row)
	}
	return rows, columns
}
