package query_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/query"
)

func execute(t *testing.T, ds *dataset.Dataset, q models.Query) *models.QueryResult {
	t.Helper()
	res, err := query.NewExecutor(nil).Execute(context.Background(), ds, "", q, false)
	require.NoError(t, err)
	return res
}

func salaryDataset() *dataset.Dataset {
	return dataset.FromRecords([]models.Row{
		{"department": "Sales", "salary": int64(50000)},
		{"department": "Sales", "salary": int64(60000)},
		{"department": "Sales", "salary": int64(55000)},
		{"department": "Engineering", "salary": int64(75000)},
		{"department": "Engineering", "salary": int64(80000)},
	})
}

func TestFilterOperators(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"region": "East Region", "revenue": int64(100)},
		{"region": "west", "revenue": int64(50)},
		{"region": "north", "revenue": nil},
	})

	cases := []struct {
		name string
		pred models.Predicate
		want int
	}{
		{"eq", models.Predicate{Field: "region", Operator: models.OpEq, Value: "west"}, 1},
		{"ne", models.Predicate{Field: "region", Operator: models.OpNe, Value: "west"}, 2},
		{"gt", models.Predicate{Field: "revenue", Operator: models.OpGt, Value: 60}, 1},
		{"lte", models.Predicate{Field: "revenue", Operator: models.OpLte, Value: 100}, 2},
		{"contains is case-insensitive", models.Predicate{Field: "region", Operator: models.OpContains, Value: "east"}, 1},
		{"in", models.Predicate{Field: "region", Operator: models.OpIn, Value: []string{"west", "north"}}, 2},
		{"in wraps scalar", models.Predicate{Field: "region", Operator: models.OpIn, Value: "west"}, 1},
		{"null matches only ne", models.Predicate{Field: "revenue", Operator: models.OpNe, Value: 100}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := execute(t, ds, models.Query{
				Spec: models.FilterSpec{Predicates: []models.Predicate{tc.pred}},
			})
			assert.Equal(t, tc.want, res.TotalCount)
		})
	}
}

func TestFilterMonotonicity(t *testing.T) {
	// Adding predicates never increases the result row count.
	ds := salaryDataset()
	preds := []models.Predicate{
		{Field: "department", Operator: models.OpEq, Value: "Sales"},
		{Field: "salary", Operator: models.OpGte, Value: 55000},
		{Field: "salary", Operator: models.OpLt, Value: 60000},
	}
	prev := ds.RowCount() + 1
	for i := 1; i <= len(preds); i++ {
		res := execute(t, ds, models.Query{
			Spec: models.FilterSpec{Predicates: preds[:i]},
		})
		assert.LessOrEqual(t, res.TotalCount, prev)
		prev = res.TotalCount
	}
}

func TestAggregateSalaries(t *testing.T) {
	res := execute(t, salaryDataset(), models.Query{
		Spec: models.AggregateSpec{
			GroupBy: []string{"department"},
			Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggSum},
			},
		},
	})

	require.Equal(t, 2, res.TotalCount)
	assert.Equal(t, []string{"department", "salary_sum"}, res.Columns)
	assert.Equal(t, "Sales", res.Rows[0]["department"])
	assert.Equal(t, 165000.0, res.Rows[0]["salary_sum"])
	assert.Equal(t, "Engineering", res.Rows[1]["department"])
	assert.Equal(t, 155000.0, res.Rows[1]["salary_sum"])
}

func TestAggregateCountsCoverFilteredRows(t *testing.T) {
	ds := salaryDataset()
	res := execute(t, ds, models.Query{
		Spec: models.AggregateSpec{
			GroupBy: []string{"department"},
			Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggCount, Alias: "n"},
			},
		},
	})
	total := 0.0
	for _, row := range res.Rows {
		total += row["n"].(float64)
	}
	assert.Equal(t, float64(ds.RowCount()), total)
}

func TestAggregateFunctions(t *testing.T) {
	res := execute(t, salaryDataset(), models.Query{
		Spec: models.AggregateSpec{
			GroupBy: []string{"department"},
			Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggAvg},
				{Field: "salary", Function: models.AggMin},
				{Field: "salary", Function: models.AggMax},
				{Field: "salary", Function: models.AggDistinct},
			},
		},
	})
	sales := res.Rows[0]
	assert.Equal(t, 55000.0, sales["salary_avg"])
	assert.Equal(t, 50000.0, sales["salary_min"])
	assert.Equal(t, 60000.0, sales["salary_max"])
	assert.Equal(t, 3.0, sales["salary_distinct"])
}

func TestAggregateWithPreFilter(t *testing.T) {
	res := execute(t, salaryDataset(), models.Query{
		Filters: []models.Predicate{
			{Field: "salary", Operator: models.OpGte, Value: 55000},
		},
		Spec: models.AggregateSpec{
			GroupBy: []string{"department"},
			Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggCount, Alias: "n"},
			},
		},
	})
	require.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 2.0, res.Rows[0]["n"]) // Sales: 60000, 55000
	assert.Equal(t, 2.0, res.Rows[1]["n"]) // Engineering: 75000, 80000
}

func trendDataset() *dataset.Dataset {
	return dataset.FromRecords([]models.Row{
		{"when": "2024-01-05", "amount": int64(100)},
		{"when": "2024-01-20", "amount": int64(50)},
		{"when": "2024-02-03", "amount": int64(70)},
	})
}

func TestTrendMonthBuckets(t *testing.T) {
	res := execute(t, trendDataset(), models.Query{
		Spec: models.TrendSpec{
			DateField:  "when",
			ValueField: "amount",
			Interval:   models.IntervalMonth,
			Function:   models.AggSum,
		},
	})
	require.Equal(t, 2, res.TotalCount)
	assert.Equal(t, []string{"date", "value"}, res.Columns)
	assert.Equal(t, "2024-01-31", res.Rows[0]["date"])
	assert.Equal(t, 150.0, res.Rows[0]["value"])
	assert.Equal(t, "2024-02-29", res.Rows[1]["date"])
	assert.Equal(t, 70.0, res.Rows[1]["value"])
}

func TestTrendSingleMonthMatchesAggregate(t *testing.T) {
	// A single-month span with interval=month yields exactly one bucket
	// equal to the ungrouped aggregate of the value field.
	ds := dataset.FromRecords([]models.Row{
		{"when": "2024-01-05", "amount": int64(100)},
		{"when": "2024-01-20", "amount": int64(50)},
	})
	res := execute(t, ds, models.Query{
		Spec: models.TrendSpec{
			DateField:  "when",
			ValueField: "amount",
			Interval:   models.IntervalMonth,
			Function:   models.AggSum,
		},
	})
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, 150.0, res.Rows[0]["value"])
}

func TestTrendWeekAndQuarterAnchors(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"when": "2024-01-03", "amount": int64(1)}, // Wednesday
		{"when": "2024-05-10", "amount": int64(2)},
	})

	res := execute(t, ds, models.Query{
		Spec: models.TrendSpec{DateField: "when", ValueField: "amount", Interval: models.IntervalWeek, Function: models.AggSum},
	})
	assert.Equal(t, "2024-01-07", res.Rows[0]["date"]) // Sunday end

	res = execute(t, ds, models.Query{
		Spec: models.TrendSpec{DateField: "when", ValueField: "amount", Interval: models.IntervalQuarter, Function: models.AggSum},
	})
	assert.Equal(t, "2024-03-31", res.Rows[0]["date"])
	assert.Equal(t, "2024-06-30", res.Rows[1]["date"])
}

func TestTrendUnparseableDateIsTypeError(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"when": "2024-01-05", "amount": int64(1)},
		{"when": "garbage", "amount": int64(2)},
	})
	_, err := query.NewExecutor(nil).Execute(context.Background(), ds, "", models.Query{
		Spec: models.TrendSpec{DateField: "when", ValueField: "amount", Interval: models.IntervalDay, Function: models.AggSum},
	}, false)

	var typeErr *models.TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "when", typeErr.Field)
}

func TestComparePercentage(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"region": "east", "revenue": int64(100)},
		{"region": "east", "revenue": int64(50)},
		{"region": "west", "revenue": int64(50)},
	})
	res := execute(t, ds, models.Query{
		Spec: models.CompareSpec{
			GroupField: "region",
			ValueField: "revenue",
			Type:       models.ComparePercentage,
			Function:   models.AggSum,
		},
	})
	require.Equal(t, 2, res.TotalCount)
	assert.Equal(t, []string{"region", "revenue_sum", "percentage"}, res.Columns)
	assert.Equal(t, 150.0, res.Rows[0]["revenue_sum"])
	assert.Equal(t, 75.0, res.Rows[0]["percentage"])
	assert.Equal(t, 25.0, res.Rows[1]["percentage"])
}

func TestComparePercentageZeroTotal(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"region": "east", "revenue": int64(0)},
		{"region": "west", "revenue": int64(0)},
	})
	res := execute(t, ds, models.Query{
		Spec: models.CompareSpec{
			GroupField: "region",
			ValueField: "revenue",
			Type:       models.ComparePercentage,
			Function:   models.AggSum,
		},
	})
	for _, row := range res.Rows {
		assert.Equal(t, 0.0, row["percentage"])
	}
}

func TestCorrelatePearson(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"x": int64(1), "y": int64(2)},
		{"x": int64(2), "y": int64(4)},
		{"x": int64(3), "y": int64(6)},
		{"x": int64(4), "y": nil}, // dropped pairwise
	})
	res := execute(t, ds, models.Query{
		Spec: models.CorrelateSpec{FieldA: "x", FieldB: "y", Method: models.MethodPearson},
	})
	require.Equal(t, 1, res.TotalCount)
	row := res.Rows[0]
	assert.Equal(t, "x", row["field_a"])
	assert.Equal(t, "pearson", row["method"])
	assert.Equal(t, 1.0, row["correlation"])
	assert.Equal(t, 3.0, row["n"])
}

func TestCorrelateDegenerateIsNull(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"x": int64(1), "y": int64(5)},
		{"x": int64(2), "y": int64(5)},
		{"x": int64(3), "y": int64(5)},
	})
	res := execute(t, ds, models.Query{
		Spec: models.CorrelateSpec{FieldA: "x", FieldB: "y", Method: models.MethodSpearman},
	})
	assert.Nil(t, res.Rows[0]["correlation"])
}

func TestCorrelateNonNumericIsTypeError(t *testing.T) {
	ds := dataset.FromRecords([]models.Row{
		{"x": int64(1), "label": "alpha"},
		{"x": int64(2), "label": "beta"},
	})
	_, err := query.NewExecutor(nil).Execute(context.Background(), ds, "", models.Query{
		Spec: models.CorrelateSpec{FieldA: "x", FieldB: "label"},
	}, false)

	var typeErr *models.TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "label", typeErr.Field)
}

func TestValidationErrors(t *testing.T) {
	ds := salaryDataset()
	exec := query.NewExecutor(nil)
	ctx := context.Background()

	cases := []struct {
		name string
		q    models.Query
	}{
		{"nil spec", models.Query{}},
		{"unknown filter column", models.Query{
			Spec: models.FilterSpec{Predicates: []models.Predicate{
				{Field: "nope", Operator: models.OpEq, Value: 1},
			}},
		}},
		{"unknown operator", models.Query{
			Spec: models.FilterSpec{Predicates: []models.Predicate{
				{Field: "salary", Operator: "~", Value: 1},
			}},
		}},
		{"aggregate without group_by", models.Query{
			Spec: models.AggregateSpec{Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggSum},
			}},
		}},
		{"aggregate without aggregations", models.Query{
			Spec: models.AggregateSpec{GroupBy: []string{"department"}},
		}},
		{"unknown aggregate function", models.Query{
			Spec: models.AggregateSpec{
				GroupBy:    []string{"department"},
				Aggregates: []models.AggregateField{{Field: "salary", Function: "median"}},
			},
		}},
		{"unknown trend interval", models.Query{
			Spec: models.TrendSpec{DateField: "department", ValueField: "salary", Interval: "decade"},
		}},
		{"unknown correlation method", models.Query{
			Spec: models.CorrelateSpec{FieldA: "salary", FieldB: "salary", Method: "kendall"},
		}},
		{"negative limit", models.Query{
			Spec:  models.FilterSpec{},
			Limit: -1,
		}},
		{"negative offset", models.Query{
			Spec:   models.FilterSpec{},
			Offset: -3,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := exec.Execute(ctx, ds, "", tc.q, false)
			var vErr *models.ValidationError
			assert.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
		})
	}
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	res := execute(t, salaryDataset(), models.Query{
		Spec: models.FilterSpec{Predicates: []models.Predicate{
			{Field: "department", Operator: models.OpEq, Value: "Marketing"},
		}},
	})
	assert.Equal(t, 0, res.TotalCount)
	assert.Empty(t, res.Rows)
	assert.False(t, res.HasMore)
}
