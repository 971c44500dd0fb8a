package config

import "time"

const (
	DefaultLogLevel = "info"

	DefaultCacheEnabled   = true
	DefaultCacheTTL       = 5 * time.Minute
	DefaultCacheKeyPrefix = "querylens:query"

	DefaultRedisDB = 0

	DefaultQueryLimit = 100

	DefaultMaxDatasets  = 5
	DefaultMaxInsights  = 10
	DefaultTopValues    = 5
	DefaultValueDiffCap = 10
)
