package compare

import (
	"fmt"
	"strings"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
	"github.com/querylens/querylens/internal/stats"
)

// MetricClassifier decides which columns count as business metrics and
// which movement direction is good for them.
type MetricClassifier interface {
	// IsMetric reports whether the column should be compared as a key metric.
	IsMetric(column string) bool
	// Improvement judges whether the given delta is good for the column;
	// nil means the column name gives no hint.
	Improvement(column string, delta float64) *bool
}

// KeywordClassifier classifies columns by name-substring matching.
type KeywordClassifier struct {
	MetricKeywords   []string
	PositiveKeywords []string // a positive delta is an improvement
	NegativeKeywords []string // a negative delta is an improvement
}

// NewKeywordClassifier returns the default keyword sets.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		MetricKeywords: []string{
			"revenue", "amount", "value", "total", "count",
			"sales", "cost", "price", "profit",
		},
		PositiveKeywords: []string{"revenue", "sales", "profit", "value"},
		NegativeKeywords: []string{"cost", "churn", "loss"},
	}
}

func (k *KeywordClassifier) IsMetric(column string) bool {
	return containsAny(column, k.MetricKeywords)
}

func (k *KeywordClassifier) Improvement(column string, delta float64) *bool {
	if containsAny(column, k.PositiveKeywords) {
		good := delta > 0
		return &good
	}
	if containsAny(column, k.NegativeKeywords) {
		good := delta < 0
		return &good
	}
	return nil
}

func containsAny(column string, keywords []string) bool {
	lower := strings.ToLower(column)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// compareMetrics sums each heuristically selected metric column on both
// sides and classifies the movement.
func (c *Comparator) compareMetrics(a, b *dataset.Dataset, schema models.SchemaComparison) models.KeyMetricsComparison {
	var metrics []models.MetricDelta
	for _, col := range schema.CommonColumns {
		ta, _ := a.ColumnType(col)
		tb, _ := b.ColumnType(col)
		if !ta.IsNumeric() || !tb.IsNumeric() || !c.classifier.IsMetric(col) {
			continue
		}
		metrics = append(metrics, c.metricDelta(a, b, col))
	}

	improved, declined := 0, 0
	for _, m := range metrics {
		if m.IsImprovement == nil {
			continue
		}
		if *m.IsImprovement {
			improved++
		} else {
			declined++
		}
	}
	summary := "no key metric columns detected"
	if len(metrics) > 0 {
		summary = fmt.Sprintf("%d of %d key metrics improved, %d declined",
			improved, len(metrics), declined)
	}
	return models.KeyMetricsComparison{Metrics: metrics, Summary: summary}
}

func (c *Comparator) metricDelta(a, b *dataset.Dataset, col string) models.MetricDelta {
	m := models.MetricDelta{
		Column:       col,
		SumA:         columnSum(a, col),
		SumB:         columnSum(b, col),
		Direction:    models.DirectionFlat,
		Significance: models.SignificanceLow,
	}
	if m.SumA == nil || m.SumB == nil {
		return m
	}

	delta := *m.SumB - *m.SumA
	m.Delta = round2(delta)
	if pct := stats.PercentChange(*m.SumA, *m.SumB); pct != nil {
		m.PctChange = round2(*pct)
		switch {
		case *pct > 1:
			m.Direction = models.DirectionUp
		case *pct < -1:
			m.Direction = models.DirectionDown
		}
		abs := *pct
		if abs < 0 {
			abs = -abs
		}
		switch {
		case abs > 20:
			m.Significance = models.SignificanceHigh
		case abs > 5:
			m.Significance = models.SignificanceMedium
		}
	}
	m.IsImprovement = c.classifier.Improvement(col, delta)
	return m
}

func columnSum(ds *dataset.Dataset, col string) *float64 {
	ptrs, _ := ds.NumericValues(col)
	v, ok := stats.Sum(stats.Compact(ptrs))
	if !ok {
		return nil
	}
	return round2(v)
}

func round2(v float64) *float64 {
	r := stats.Round(v, 2)
	return &r
}
