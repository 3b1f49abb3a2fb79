package cache

import (
	"time"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-tenant-cache/internal/cacheengine"
)

// Config exposes cache configuration options for consumers of the cache
// package. It is a construction-time struct: the engine reads it once and
// keeps its own copy.
type Config struct {
	// DefaultTTL is applied to entries written without an explicit TTL.
	DefaultTTL time.Duration

	// MaxEntries bounds the number of resident entries; inserting past
	// the bound evicts the least recently accessed entry first.
	MaxEntries int

	// Namespace, when set, scopes every key as "<namespace>:<key>".
	// Plain key scoping only; for tenant isolation use customercache.
	Namespace string

	// EvictionInterval sets how often the engine sweeps expired entries
	// in the background. Zero disables the sweep.
	EvictionInterval time.Duration

	// Logger receives structured cache events (hit, miss, eviction,
	// refresh). Nil silences them. Events are observational only and
	// never affect cache behavior.
	Logger *log.Logger
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheengine.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DefaultTTL,
			validation.Required.Error("must be greater than 0"),
			validation.Min(time.Nanosecond).Error("must be greater than 0")),
		validation.Field(&c.MaxEntries,
			validation.Required.Error("must be greater than 0"),
			validation.Min(1).Error("must be greater than 0")),
		validation.Field(&c.EvictionInterval,
			validation.Min(time.Duration(0)).Error("must be non-negative")),
	)
}

// NewCacheService constructs the default cache service implementation
// using the provided configuration.
func NewCacheService(cfg Config) (CacheService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	engine, err := cacheengine.New(cfg.toInternal(), cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &smartCache{engine: engine}, nil
}

func (c Config) toInternal() cacheengine.Config {
	return cacheengine.Config{
		DefaultTTL:       c.DefaultTTL,
		MaxEntries:       c.MaxEntries,
		Namespace:        c.Namespace,
		EvictionInterval: c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheengine.Config) Config {
	return Config{
		DefaultTTL:       cfg.DefaultTTL,
		MaxEntries:       cfg.MaxEntries,
		Namespace:        cfg.Namespace,
		EvictionInterval: cfg.EvictionInterval,
	}
}
