// Package compare computes the schema, statistical, and key-metric
// delta between two named dataset snapshots and derives ranked
// natural-language insights. Everything here is a pure function of the
// two inputs; dataset A is the baseline, B the comparison.
package compare

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
)

const (
	// DefaultMaxInsights caps the ranked insight list.
	DefaultMaxInsights = 10
	// DefaultTopValues is how many leading values a categorical delta keeps per side.
	DefaultTopValues = 5
	// DefaultValueDiffCap bounds the new/missing value lists.
	DefaultValueDiffCap = 10
)

// Comparator compares two datasets. The metric classifier is swappable
// so the "is this a metric column" heuristic can change without
// touching comparison logic.
type Comparator struct {
	classifier   MetricClassifier
	maxInsights  int
	topValues    int
	valueDiffCap int
}

// Option configures a Comparator.
type Option func(*Comparator)

// WithClassifier replaces the metric-column classification strategy.
func WithClassifier(cl MetricClassifier) Option {
	return func(c *Comparator) { c.classifier = cl }
}

// WithMaxInsights overrides the insight cap.
func WithMaxInsights(n int) Option {
	return func(c *Comparator) { c.maxInsights = n }
}

// WithTopValues overrides how many top categorical values are kept.
func WithTopValues(n int) Option {
	return func(c *Comparator) { c.topValues = n }
}

// WithValueDiffCap overrides the new/missing value list cap.
func WithValueDiffCap(n int) Option {
	return func(c *Comparator) { c.valueDiffCap = n }
}

// NewComparator builds a comparator with the keyword classifier and
// default caps.
func NewComparator(opts ...Option) *Comparator {
	c := &Comparator{
		classifier:   NewKeywordClassifier(),
		maxInsights:  DefaultMaxInsights,
		topValues:    DefaultTopValues,
		valueDiffCap: DefaultValueDiffCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compare runs the four stages in order -- schema, statistics, key
// metrics, insights -- each consuming only the prior stage's output.
func (c *Comparator) Compare(a, b *dataset.Dataset, nameA, nameB string) (*models.ComparisonResult, error) {
	if a == nil || b == nil {
		return nil, models.NewConfigurationError("both datasets are required")
	}
	log.Debug().Str("dataset_a", nameA).Str("dataset_b", nameB).Msg("comparing datasets")

	schema := compareSchemas(a, b)
	statistics := c.compareStatistics(a, b, schema)
	metrics := c.compareMetrics(a, b, schema)
	insights := c.buildInsights(schema, statistics, metrics)

	return &models.ComparisonResult{
		ID:          uuid.NewString(),
		DatasetA:    nameA,
		DatasetB:    nameB,
		Schema:      schema,
		Statistics:  statistics,
		KeyMetrics:  metrics,
		Insights:    insights,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
