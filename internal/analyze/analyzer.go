// Package analyze generalizes dataset comparison to 2-5 related
// datasets: per-dataset summaries, cross-dataset schema mapping,
// schema-drift / type-mismatch / metric-outlier anomaly detection, and
// full pairwise comparison via the compare package.
package analyze

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/querylens/querylens/internal/compare"
	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
)

const (
	// MinDatasets is the smallest analyzable group.
	MinDatasets = 2
	// DefaultMaxDatasets is the largest analyzable group.
	DefaultMaxDatasets = 5
)

// NamedDataset pairs a dataset snapshot with its display name.
type NamedDataset struct {
	Name string
	Data *dataset.Dataset
}

// Analyzer runs multi-dataset analysis, composing with a Comparator
// for the pairwise results.
type Analyzer struct {
	comparator  *compare.Comparator
	maxDatasets int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithComparator replaces the comparator used for pairwise results.
func WithComparator(c *compare.Comparator) Option {
	return func(a *Analyzer) { a.comparator = c }
}

// WithMaxDatasets overrides the dataset-count ceiling.
func WithMaxDatasets(n int) Option {
	return func(a *Analyzer) { a.maxDatasets = n }
}

// NewAnalyzer builds an analyzer with a default comparator.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		comparator:  compare.NewComparator(),
		maxDatasets: DefaultMaxDatasets,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeNamed pairs parallel name and dataset slices, failing fast on
// a length mismatch.
func (a *Analyzer) AnalyzeNamed(names []string, datasets []*dataset.Dataset) (*models.AnalysisResult, error) {
	if len(names) != len(datasets) {
		return nil, models.NewConfigurationError(
			"%d names for %d datasets", len(names), len(datasets))
	}
	items := make([]NamedDataset, len(names))
	for i := range names {
		items[i] = NamedDataset{Name: names[i], Data: datasets[i]}
	}
	return a.Analyze(items)
}

// Analyze validates the group and produces the full analysis. Anomalies
// come out sorted by severity; ties keep discovery order (schema drift
// and type mismatches before metric outliers).
func (a *Analyzer) Analyze(items []NamedDataset) (*models.AnalysisResult, error) {
	if err := a.validate(items); err != nil {
		return nil, err
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	log.Debug().Strs("datasets", names).Msg("starting multi-dataset analysis")

	summaries := make([]models.DatasetSummary, len(items))
	for i, item := range items {
		summaries[i] = summarize(item.Name, item.Data)
	}

	schema := buildSchemaOverview(items)

	var anomalies []models.Anomaly
	if len(schema.CommonColumns) == 0 {
		anomalies = append(anomalies, models.Anomaly{
			Kind:     models.AnomalyNoCommonColumns,
			Severity: models.SeverityHigh,
			Datasets: names,
			Details:  map[string]any{"message": "no column is present in every dataset"},
		})
	} else {
		anomalies = append(anomalies, driftAnomalies(items, schema)...)
		anomalies = append(anomalies, typeMismatchAnomalies(schema)...)
		anomalies = append(anomalies, metricOutlierAnomalies(items, schema)...)
	}
	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Severity.Rank() < anomalies[j].Severity.Rank()
	})

	pairwise, err := a.pairwise(items)
	if err != nil {
		return nil, err
	}

	return &models.AnalysisResult{
		ID:           uuid.NewString(),
		DatasetNames: names,
		Summaries:    summaries,
		Schema:       schema,
		Anomalies:    anomalies,
		Pairwise:     pairwise,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func (a *Analyzer) validate(items []NamedDataset) error {
	if len(items) < MinDatasets || len(items) > a.maxDatasets {
		return models.NewConfigurationError(
			"analysis requires between %d and %d datasets, got %d",
			MinDatasets, a.maxDatasets, len(items))
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Name == "" {
			return models.NewConfigurationError("every dataset needs a name")
		}
		if seen[item.Name] {
			return models.NewConfigurationError("duplicate dataset name %q", item.Name)
		}
		seen[item.Name] = true
		if item.Data == nil {
			return models.NewConfigurationError("dataset %q is nil", item.Name)
		}
	}
	return nil
}

// pairwise compares every unordered pair in input order.
func (a *Analyzer) pairwise(items []NamedDataset) ([]models.PairwiseComparison, error) {
	var out []models.PairwiseComparison
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			result, err := a.comparator.Compare(items[i].Data, items[j].Data, items[i].Name, items[j].Name)
			if err != nil {
				return nil, err
			}
			out = append(out, models.PairwiseComparison{
				DatasetA: items[i].Name,
				DatasetB: items[j].Name,
				Result:   result,
			})
		}
	}
	return out, nil
}
