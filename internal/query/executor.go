// Package query compiles declarative query specs and evaluates them
// against one in-memory dataset. Execution is synchronous and pure; the
// only external touchpoint is an injected best-effort result cache.
package query

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/querylens/querylens/internal/cache"
	"github.com/querylens/querylens/internal/dataset"
	"github.com/querylens/querylens/internal/models"
)

const (
	// DefaultLimit applies when a query does not set one.
	DefaultLimit = 100
	// DefaultTTL bounds how long a cached full result stays usable.
	DefaultTTL = 5 * time.Minute
	// DefaultKeyPrefix namespaces cache keys.
	DefaultKeyPrefix = "querylens:query"
)

// Executor evaluates queries with optional result caching. A nil store
// disables caching regardless of the per-call flag.
type Executor struct {
	store  cache.Store
	ttl    time.Duration
	prefix string
	limit  int
	group  singleflight.Group
}

// Option configures an Executor.
type Option func(*Executor)

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(e *Executor) { e.ttl = ttl }
}

// WithKeyPrefix overrides the cache key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(e *Executor) { e.prefix = prefix }
}

// WithDefaultLimit overrides the page size used when a query sets none.
func WithDefaultLimit(limit int) Option {
	return func(e *Executor) { e.limit = limit }
}

// NewExecutor builds an executor around the given cache store, which
// may be nil for a cache-less executor.
func NewExecutor(store cache.Store, opts ...Option) *Executor {
	e := &Executor{
		store:  store,
		ttl:    DefaultTTL,
		prefix: DefaultKeyPrefix,
		limit:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fullResult is the unpaginated result that gets cached; pagination is
// reapplied on every read.
type fullResult struct {
	Rows    []models.Row     `json:"rows"`
	Columns []string         `json:"columns"`
	Kind    models.QueryKind `json:"kind"`
}

// Execute validates and runs one query against the dataset. datasetID
// identifies the dataset for cache keying; useCache enables the
// best-effort result cache for this call.
func (e *Executor) Execute(ctx context.Context, ds *dataset.Dataset, datasetID string, q models.Query, useCache bool) (*models.QueryResult, error) {
	q.Spec = normalizeSpec(q.Spec)
	if err := validate(ds, q); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = e.limit
	}

	cached := useCache && e.store != nil && datasetID != ""
	if !cached {
		full, err := e.compute(ds, q)
		if err != nil {
			return nil, err
		}
		return paginate(full, q.Offset, limit), nil
	}

	key, err := e.cacheKey(datasetID, q)
	if err != nil {
		// An unkeyable query is still executable.
		log.Warn().Err(err).Str("dataset_id", datasetID).Msg("query cache key failed, bypassing cache")
		full, err := e.compute(ds, q)
		if err != nil {
			return nil, err
		}
		return paginate(full, q.Offset, limit), nil
	}

	if full := e.cacheGet(ctx, key); full != nil {
		log.Debug().Str("dataset_id", datasetID).Str("key", key).Msg("query cache hit")
		return paginate(full, q.Offset, limit), nil
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		full, err := e.compute(ds, q)
		if err != nil {
			return nil, err
		}
		e.cacheSet(ctx, key, full)
		return full, nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(v.(*fullResult), q.Offset, limit), nil
}

// Invalidate drops every cached result for the dataset. It is the hook
// an external data-mutation event calls; failures are logged and
// swallowed like every other cache error.
func (e *Executor) Invalidate(ctx context.Context, datasetID string) {
	if e.store == nil || datasetID == "" {
		return
	}
	prefix := fmt.Sprintf("%s:%s:", e.prefix, datasetID)
	if err := e.store.DeletePrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).Str("dataset_id", datasetID).Msg("query cache invalidation failed")
	}
}

// compute runs the query to a full, unpaginated result: pre-filters
// first, then the kind-specific operation, then output sanitization.
func (e *Executor) compute(ds *dataset.Dataset, q models.Query) (*fullResult, error) {
	filtered, err := applyPredicates(ds, q.Filters)
	if err != nil {
		return nil, err
	}

	var rows []models.Row
	var columns []string
	switch s := q.Spec.(type) {
	case models.FilterSpec:
		filtered, err = applyPredicates(filtered, s.Predicates)
		if err != nil {
			return nil, err
		}
		rows = filtered.Rows()
		columns = filtered.Columns()
	case models.AggregateSpec:
		rows, columns = runAggregate(filtered, s)
	case models.TrendSpec:
		rows, columns, err = runTrend(filtered, s)
		if err != nil {
			return nil, err
		}
	case models.CompareSpec:
		rows, columns = runCompare(filtered, s)
	case models.CorrelateSpec:
		rows, columns, err = runCorrelate(filtered, s)
		if err != nil {
			return nil, err
		}
	default:
		return nil, models.NewValidationError("kind", "unknown spec type %T", q.Spec)
	}

	return &fullResult{
		Rows:    sanitizeRows(rows, columns),
		Columns: columns,
		Kind:    q.Spec.Kind(),
	}, nil
}

// normalizeSpec flattens pointer specs so the executor only ever
// switches on value types.
func normalizeSpec(s models.Spec) models.Spec {
	switch t := s.(type) {
	case *models.FilterSpec:
		if t != nil {
			return *t
		}
	case *models.AggregateSpec:
		if t != nil {
			return *t
		}
	case *models.TrendSpec:
		if t != nil {
			return *t
		}
	case *models.CompareSpec:
		if t != nil {
			return *t
		}
	case *models.CorrelateSpec:
		if t != nil {
			return *t
		}
	}
	return s
}

func paginate(full *fullResult, offset, limit int) *models.QueryResult {
	total := len(full.Rows)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return &models.QueryResult{
		Rows:       full.Rows[start:end],
		Columns:    full.Columns,
		TotalCount: total,
		HasMore:    offset+limit < total,
		Kind:       full.Kind,
	}
}

// cacheKey hashes the query minus pagination, so every page of the same
// query shares one cached full result.
func (e *Executor) cacheKey(datasetID string, q models.Query) (string, error) {
	normalized := models.Query{Spec: q.Spec, Filters: q.Filters}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("marshal query for cache key: %w", err)
	}
	return fmt.Sprintf("%s:%s:%x", e.prefix, datasetID, sha256.Sum256(data)), nil
}

func (e *Executor) cacheGet(ctx context.Context, key string) *fullResult {
	data, found, err := e.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query cache read failed, treating as miss")
		return nil
	}
	if !found {
		return nil
	}
	var full fullResult
	if err := json.Unmarshal(data, &full); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query cache entry corrupt, treating as miss")
		return nil
	}
	return &full
}

func (e *Executor) cacheSet(ctx context.Context, key string, full *fullResult) {
	data, err := json.Marshal(full)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query cache marshal failed, skipping write")
		return
	}
	if err := e.store.Set(ctx, key, data, e.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("query cache write failed")
	}
}

// sanitizeRows canonicalizes every cell to a JSON-stable form: numbers
// become float64, timestamps become RFC 3339 strings, and NaN/Inf and
// missing values become nil. Cached results therefore round-trip
// byte-identically through JSON.
func sanitizeRows(rows []models.Row, columns []string) []models.Row {
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		clean := make(models.Row, len(columns))
		for _, col := range columns {
			clean[col] = sanitizeValue(row[col])
		}
		out[i] = clean
	}
	return out
}

func sanitizeValue(v any) any {
	if dataset.IsNull(v) {
		return nil
	}
	switch tv := v.(type) {
	case bool:
		return tv
	case string:
		return tv
	case time.Time:
		return tv.UTC().Format(time.RFC3339)
	default:
		if f := dataset.Float(v); f != nil {
			return *f
		}
		return dataset.String(v)
	}
}
