package config

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/querylens/querylens/internal/cache"
)

// Config carries the engine's tunables. Defaults apply first, then an
// optional JSON file named by QUERYLENS_CONFIG, then QUERYLENS_* env
// overrides.
type Config struct {
	LogLevel string `json:"log_level"`

	// Result cache
	CacheEnabled   bool   `json:"cache_enabled"`
	CacheTTLSecs   int    `json:"cache_ttl_seconds"`
	CacheKeyPrefix string `json:"cache_key_prefix"`

	// Redis; empty address selects the in-memory store
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// Query execution
	QueryLimit int `json:"query_limit"`

	// Comparison / analysis caps
	MaxDatasets  int `json:"max_datasets"`
	MaxInsights  int `json:"max_insights"`
	TopValues    int `json:"top_values"`
	ValueDiffCap int `json:"value_diff_cap"`
}

func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       DefaultLogLevel,
		CacheEnabled:   DefaultCacheEnabled,
		CacheTTLSecs:   int(DefaultCacheTTL / time.Second),
		CacheKeyPrefix: DefaultCacheKeyPrefix,
		RedisDB:        DefaultRedisDB,
		QueryLimit:     DefaultQueryLimit,
		MaxDatasets:    DefaultMaxDatasets,
		MaxInsights:    DefaultMaxInsights,
		TopValues:      DefaultTopValues,
		ValueDiffCap:   DefaultValueDiffCap,
	}

	if path := getEnv("QUERYLENS_CONFIG", ""); path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// CacheTTL returns the configured TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSecs) * time.Second
}

// ApplyLogLevel sets the global zerolog level from the config.
func (c *Config) ApplyLogLevel() {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// CacheStore builds the configured cache backend: Redis when an
// address is set, the in-memory store otherwise, nil when caching is
// disabled.
func (c *Config) CacheStore(ctx context.Context) (cache.Store, error) {
	if !c.CacheEnabled {
		return nil, nil
	}
	if c.RedisAddr != "" {
		return cache.NewRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
	}
	return cache.NewMemory(), nil
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("QUERYLENS_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("QUERYLENS_CACHE_ENABLED", ""); v != "" {
		cfg.CacheEnabled = v == "true" || v == "1"
	}
	if v := getEnv("QUERYLENS_CACHE_TTL_SECONDS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheTTLSecs = n
		}
	}
	if v := getEnv("QUERYLENS_CACHE_KEY_PREFIX", ""); v != "" {
		cfg.CacheKeyPrefix = v
	}
	if v := getEnv("QUERYLENS_REDIS_ADDR", ""); v != "" {
		cfg.RedisAddr = v
	}
	if v := getEnv("QUERYLENS_REDIS_PASSWORD", ""); v != "" {
		cfg.RedisPassword = v
	}
	if v := getEnv("QUERYLENS_REDIS_DB", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := getEnv("QUERYLENS_QUERY_LIMIT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueryLimit = n
		}
	}
	if v := getEnv("QUERYLENS_MAX_DATASETS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDatasets = n
		}
	}
	if v := getEnv("QUERYLENS_MAX_INSIGHTS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxInsights = n
		}
	}
	if v := getEnv("QUERYLENS_TOP_VALUES", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TopValues = n
		}
	}
	if v := getEnv("QUERYLENS_VALUE_DIFF_CAP", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ValueDiffCap = n
		}
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
