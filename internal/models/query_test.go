package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens/querylens/internal/models"
)

func TestQueryJSONRoundTrip(t *testing.T) {
	q := models.Query{
		Spec: models.AggregateSpec{
			GroupBy: []string{"department"},
			Aggregates: []models.AggregateField{
				{Field: "salary", Function: models.AggSum, Alias: "total"},
			},
		},
		Filters: []models.Predicate{
			{Field: "salary", Operator: models.OpGt, Value: float64(1000)},
		},
		Limit:  10,
		Offset: 5,
	}

	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"aggregate"`)

	var back models.Query
	require.NoError(t, json.Unmarshal(data, &back))
	require.IsType(t, models.AggregateSpec{}, back.Spec)
	assert.Equal(t, q.Spec, back.Spec)
	assert.Equal(t, q.Filters, back.Filters)
	assert.Equal(t, q.Limit, back.Limit)
	assert.Equal(t, q.Offset, back.Offset)
}

func TestQueryUnmarshalRejectsBadEnvelopes(t *testing.T) {
	var q models.Query

	err := json.Unmarshal([]byte(`{"kind":"scan"}`), &q)
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)

	err = json.Unmarshal([]byte(`{"kind":"trend"}`), &q)
	require.ErrorAs(t, err, &vErr)
}

func TestQueryMarshalPointerSpec(t *testing.T) {
	q := models.Query{Spec: &models.FilterSpec{
		Predicates: []models.Predicate{{Field: "x", Operator: models.OpEq, Value: "y"}},
	}}
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"filter"`)
}

func TestAggregateFieldName(t *testing.T) {
	f := models.AggregateField{Field: "salary", Function: models.AggAvg}
	assert.Equal(t, "salary_avg", f.Name())

	f.Alias = "mean_salary"
	assert.Equal(t, "mean_salary", f.Name())
}
