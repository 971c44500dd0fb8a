package compare

import (
	"sort"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/stats"
)

// compareStatistics computes the row-count delta and per-column numeric,
// categorical, and null-count deltas over the common columns.
func (c *Comparator) compareStatistics(a, b *dataset.Dataset, schema models.SchemaComparison) models.StatisticsComparison {
	out := models.StatisticsComparison{
		RowCountA: a.RowCount(),
		RowCountB: b.RowCount(),
		RowDelta:  b.RowCount() - a.RowCount(),
	}
	if pct := stats.PercentChange(float64(a.RowCount()), float64(b.RowCount())); pct != nil {
		rounded := stats.Round(*pct, 2)
		out.RowPctChange = &rounded
	}

	for _, col := range schema.CommonColumns {
		ta, _ := a.ColumnType(col)
		tb, _ := b.ColumnType(col)

		if ta.IsNumeric() && tb.IsNumeric() {
			out.NumericDeltas = append(out.NumericDeltas, numericDelta(a, b, col))
		}
		if ta == models.TypeString && tb == models.TypeString {
			out.CategoricalDeltas = append(out.CategoricalDeltas, c.categoricalDelta(a, b, col))
		}

		nullsA, _ := a.NullCount(col)
		nullsB, _ := b.NullCount(col)
		out.NullDeltas = append(out.NullDeltas, models.NullDelta{
			Column: col,
			NullsA: nullsA,
			NullsB: nullsB,
			Delta:  nullsB - nullsA,
		})
	}
	return out
}

func numericDelta(a, b *dataset.Dataset, col string) models.NumericDelta {
	sa := columnStats(a, col)
	sb := columnStats(b, col)
	delta := models.NumericDelta{Column: col, A: sa, B: sb}
	if sa.Mean != nil && sb.Mean != nil {
		delta.MeanDelta = round4(*sb.Mean - *sa.Mean)
		if pct := stats.PercentChange(*sa.Mean, *sb.Mean); pct != nil {
			delta.MeanPctChange = round4(*pct)
		}
	}
	return delta
}

func columnStats(ds *dataset.Dataset, col string) models.ColumnStats {
	ptrs, _ := ds.NumericValues(col)
	vals := stats.Compact(ptrs)
	cs := models.ColumnStats{}
	if v, ok := stats.Mean(vals); ok {
		cs.Mean = round4(v)
	}
	if v, ok := stats.Median(vals); ok {
		cs.Median = round4(v)
	}
	if v, ok := stats.Std(vals); ok {
		cs.Std = round4(v)
	}
	if v, ok := stats.Min(vals); ok {
		cs.Min = round4(v)
	}
	if v, ok := stats.Max(vals); ok {
		cs.Max = round4(v)
	}
	return cs
}

func round4(v float64) *float64 {
	r := stats.Round(v, 4)
	return &r
}

// categoricalDelta reports cardinality, the leading values per side,
// and the symmetric value-set difference, capped and sorted.
func (c *Comparator) categoricalDelta(a, b *dataset.Dataset, col string) models.CategoricalDelta {
	countsA := valueCounts(a, col)
	countsB := valueCounts(b, col)

	delta := models.CategoricalDelta{
		Column:       col,
		CardinalityA: len(countsA),
		CardinalityB: len(countsB),
		TopValuesA:   topValues(countsA, c.topValues),
		TopValuesB:   topValues(countsB, c.topValues),
		NewInB:       capSorted(diffKeys(countsB, countsA), c.valueDiffCap),
		MissingInB:   capSorted(diffKeys(countsA, countsB), c.valueDiffCap),
	}
	return delta
}

func valueCounts(ds *dataset.Dataset, col string) map[string]int {
	vals, _ := ds.Values(col)
	counts := make(map[string]int)
	for _, v := range vals {
		if !dataset.IsNull(v) {
			counts[dataset.String(v)]++
		}
	}
	return counts
}

func topValues(counts map[string]int, n int) []models.ValueCount {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]models.ValueCount, 0, len(counts))
	for v, c := range counts {
		pct := 0.0
		if total > 0 {
			pct = stats.Round(float64(c)/float64(total)*100, 2)
		}
		out = append(out, models.ValueCount{Value: v, Count: c, Percent: pct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func diffKeys(have, notIn map[string]int) []string {
	var out []string
	for k := range have {
		if _, ok := notIn[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

func capSorted(vals []string, n int) []string {
	sort.Strings(vals)
	if len(vals) > n {
		vals = vals[:n]
	}
	return vals
}
