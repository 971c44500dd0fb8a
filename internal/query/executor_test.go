package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens/querylens/internal/cache"
	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/query"
)

func sequenceDataset(n int) *dataset.Dataset {
	records := make([]models.Row, n)
	for i := range records {
		records[i] = models.Row{"seq": int64(i), "even": i%2 == 0}
	}
	return dataset.FromRecords(records)
}

func TestExecuteDefaultLimit(t *testing.T) {
	ds := sequenceDataset(150)
	res := execute(t, ds, models.Query{Spec: models.FilterSpec{}})

	assert.Equal(t, 150, res.TotalCount)
	assert.Len(t, res.Rows, 100)
	assert.True(t, res.HasMore)
}

func TestExecutePaginationRoundTrip(t *testing.T) {
	// Walking all pages with a fixed limit reassembles the full result
	// with no gaps, overlaps, or reordering.
	ds := sequenceDataset(23)
	exec := query.NewExecutor(nil)
	ctx := context.Background()

	const limit = 7
	var got []float64
	for offset := 0; ; offset += limit {
		res, err := exec.Execute(ctx, ds, "", models.Query{
			Spec:   models.FilterSpec{},
			Limit:  limit,
			Offset: offset,
		}, false)
		require.NoError(t, err)
		assert.Equal(t, 23, res.TotalCount)
		for _, row := range res.Rows {
			got = append(got, row["seq"].(float64))
		}
		if !res.HasMore {
			break
		}
	}

	require.Len(t, got, 23)
	for i, v := range got {
		assert.Equal(t, float64(i), v)
	}
}

func TestExecuteHasMoreBoundary(t *testing.T) {
	ds := sequenceDataset(10)
	res := execute(t, ds, models.Query{
		Spec:   models.FilterSpec{},
		Limit:  5,
		Offset: 5,
	})
	assert.Len(t, res.Rows, 5)
	assert.False(t, res.HasMore)

	res = execute(t, ds, models.Query{
		Spec:   models.FilterSpec{},
		Limit:  5,
		Offset: 20,
	})
	assert.Empty(t, res.Rows)
	assert.Equal(t, 10, res.TotalCount)
	assert.False(t, res.HasMore)
}

func TestExecuteCacheHit(t *testing.T) {
	ctx := context.Background()
	exec := query.NewExecutor(cache.NewMemory())
	q := models.Query{
		Spec: models.AggregateSpec{
			GroupBy: []string{"department"},
			Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggSum},
			},
		},
	}

	first, err := exec.Execute(ctx, salaryDataset(), "sales-q1", q, true)
	require.NoError(t, err)
	assert.Equal(t, 165000.0, first.Rows[0]["salary_sum"])

	// Same dataset ID, different data: the cached result wins until
	// the entry expires or is invalidated.
	changed := dataset.FromRecords([]models.Row{
		{"department": "Sales", "salary": int64(1)},
	})
	second, err := exec.Execute(ctx, changed, "sales-q1", q, true)
	require.NoError(t, err)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, first.TotalCount, second.TotalCount)

	exec.Invalidate(ctx, "sales-q1")
	third, err := exec.Execute(ctx, changed, "sales-q1", q, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, third.Rows[0]["salary_sum"])
}

func TestExecuteCacheKeyIgnoresPagination(t *testing.T) {
	ctx := context.Background()
	exec := query.NewExecutor(cache.NewMemory())
	q := models.Query{Spec: models.FilterSpec{}, Limit: 2}

	first, err := exec.Execute(ctx, sequenceDataset(5), "seq", q, true)
	require.NoError(t, err)
	require.Len(t, first.Rows, 2)

	// A different page of the same query is served from the cached
	// full result, not recomputed against the new dataset object.
	q.Limit = 1
	q.Offset = 3
	page, err := exec.Execute(ctx, sequenceDataset(2), "seq", q, true)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 3.0, page.Rows[0]["seq"])
}

func TestExecuteCacheDisabledPerCall(t *testing.T) {
	ctx := context.Background()
	exec := query.NewExecutor(cache.NewMemory())
	q := models.Query{Spec: models.FilterSpec{}}

	_, err := exec.Execute(ctx, sequenceDataset(3), "seq", q, false)
	require.NoError(t, err)

	// Nothing was cached, so the second call sees the new data.
	res, err := exec.Execute(ctx, sequenceDataset(7), "seq", q, true)
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalCount)
}

// failingStore errors on every operation to exercise the best-effort
// cache contract.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}

func (failingStore) DeletePrefix(context.Context, string) error {
	return errors.New("store down")
}

func TestExecuteSurvivesFailingStore(t *testing.T) {
	ctx := context.Background()
	exec := query.NewExecutor(failingStore{})
	q := models.Query{
		Spec: models.AggregateSpec{
			GroupBy: []string{"department"},
			Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggSum},
			},
		},
	}

	res, err := exec.Execute(ctx, salaryDataset(), "sales-q1", q, true)
	require.NoError(t, err)
	assert.Equal(t, 165000.0, res.Rows[0]["salary_sum"])

	exec.Invalidate(ctx, "sales-q1") // must not panic or error out
}

func TestExecuteCacheRoundTripIsLossless(t *testing.T) {
	// The sanitized result is JSON-stable: a cache hit returns the
	// exact rows a fresh computation would.
	ctx := context.Background()
	ds := dataset.FromRecords([]models.Row{
		{"when": "2024-01-05", "amount": 9.5, "tag": nil},
		{"when": "2024-01-20", "amount": int64(3), "tag": "x"},
	})
	q := models.Query{Spec: models.FilterSpec{}}

	fresh, err := query.NewExecutor(nil).Execute(ctx, ds, "", q, false)
	require.NoError(t, err)

	exec := query.NewExecutor(cache.NewMemory())
	_, err = exec.Execute(ctx, ds, "rt", q, true)
	require.NoError(t, err)
	hit, err := exec.Execute(ctx, ds, "rt", q, true)
	require.NoError(t, err)

	assert.Equal(t, fresh.Rows, hit.Rows)
	assert.Equal(t, fresh.Columns, hit.Columns)
}
