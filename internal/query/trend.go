package query

import (
	"sort"
	"time"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
)

// runTrend buckets rows into calendar periods of the date field and
// aggregates the value field per bucket. Any non-null cell that cannot
// be parsed as a timestamp fails the whole query with a TypeError.
func runTrend(ds *dataset.Dataset, spec models.TrendSpec) ([]models.Row, []string, error) {
	fn := spec.Function
	if fn == "" {
		fn = models.AggSum
	}

	dates, err := ds.Values(spec.DateField)
	if err != nil {
		return nil, nil, err
	}

	buckets := make(map[time.Time][]int)
	for i, v := range dates {
		if dataset.IsNull(v) {
			continue
		}
		t, ok := dataset.Time(v)
		if !ok {
			return nil, nil, models.NewTypeError(spec.DateField,
				"value %q is not convertible to a timestamp", dataset.String(v))
		}
		b := bucketEnd(t.UTC(), spec.Interval)
		buckets[b] = append(buckets[b], i)
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	rows := make([]models.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.Row{
			"date":  k.Format("2006-01-02"),
			"value": aggregateCell(ds, buckets[k], spec.ValueField, fn),
		})
	}
	return rows, []string{"date", "value"}, nil
}

// bucketEnd anchors a timestamp to the end of its calendar period:
// the day itself, the week's Sunday, or the last day of the
// month/quarter/year.
func bucketEnd(t time.Time, interval models.Interval) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	switch interval {
	case models.IntervalDay:
		return day
	case models.IntervalWeek:
		return day.AddDate(0, 0, (7-int(day.Weekday()))%7)
	case models.IntervalMonth:
		return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	case models.IntervalQuarter:
		endMonth := time.Month((int(m-1)/3)*3 + 3)
		return time.Date(y, endMonth+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	case models.IntervalYear:
		return time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}
