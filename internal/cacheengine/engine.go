package cacheengine

import (
	"container/list"
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Config holds the configuration for the cache engine.
type Config struct {
	// DefaultTTL is applied to entries written without an explicit TTL.
	// Must be greater than 0.
	DefaultTTL time.Duration

	// MaxEntries bounds the number of resident entries. Inserting past the
	// bound evicts the least recently accessed entry first.
	// Must be greater than 0.
	MaxEntries int

	// Namespace, when set, is prepended to every key as "<namespace>:<key>".
	// It provides plain key scoping without tenant semantics.
	Namespace string

	// EvictionInterval sets how often the engine sweeps expired entries in
	// the background. Zero disables the sweep; lazy expiration on access
	// still removes expired entries.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:       5 * time.Minute,
		MaxEntries:       10000,
		EvictionInterval: 0,
	}
}

// Validate checks if the configuration values are valid.
// Returns an error if any configuration parameter is invalid.
func (c Config) Validate() error {
	if c.DefaultTTL <= 0 {
		return &ConfigError{Field: "DefaultTTL", Message: "must be greater than 0"}
	}
	if c.MaxEntries <= 0 {
		return &ConfigError{Field: "MaxEntries", Message: "must be greater than 0"}
	}
	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Stats is a snapshot of the engine's operation counters.
type Stats struct {
	Hits            uint64
	Misses          uint64
	Evictions       uint64
	Expirations     uint64
	Refreshes       uint64
	RefreshFailures uint64
}

// Engine is a concurrency-safe in-memory cache with TTL expiry, LRU
// eviction, glob pattern invalidation and stale-while-revalidate refresh.
//
// A map gives O(1) key lookup and a doubly-linked list maintains recency
// ordering, so eviction touches one entry instead of scanning the store.
//
// Ownership model: Engine owns its background sweep goroutine (if enabled).
// Call Close to stop it.
type Engine struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	recency *list.List // Front = most recently used, Back = least recently used
	byTag   map[string]map[string]struct{}

	// refreshing marks keys with a background refresh in flight so the
	// stale window never triggers more than one upstream call per key.
	refreshing map[string]struct{}

	// flight collapses concurrent cold-miss fetches for the same key into
	// a single upstream call whose result every waiter shares.
	flight singleflight.Group

	cfg    Config
	logger *log.Logger
	stats  Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New constructs an engine from the provided configuration and starts the
// background expiry sweep when EvictionInterval is set.
//
// A nil logger silences cache events.
func New(cfg Config, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		entries:    make(map[string]*list.Element),
		recency:    list.New(),
		byTag:      make(map[string]map[string]struct{}),
		refreshing: make(map[string]struct{}),
		cfg:        cfg,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	if cfg.EvictionInterval > 0 {
		e.wg.Add(1)
		go e.sweepLoop()
	}

	return e, nil
}

// Close stops the background sweep goroutine. Safe to call multiple times.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
	return nil
}

// namespaced rewrites a caller key into the engine's namespace.
func (e *Engine) namespaced(key string) string {
	if e.cfg.Namespace == "" {
		return key
	}
	return e.cfg.Namespace + ":" + key
}

// Get returns the value stored under key, touching its access time.
// Expired entries are removed and reported as a miss.
func (e *Engine) Get(ctx context.Context, key string) (any, bool) {
	k := e.namespaced(key)
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	el, ok := e.entries[k]
	if !ok {
		e.stats.Misses++
		e.logger.Debug("cache miss", "key", k)
		return nil, false
	}

	ent := el.Value.(*entry)
	if ent.expired(now) {
		e.removeLocked(k)
		e.stats.Misses++
		e.stats.Expirations++
		e.logger.Debug("cache miss", "key", k, "reason", "expired")
		return nil, false
	}

	ent.lastAccessed = now
	e.recency.MoveToFront(el)
	e.stats.Hits++
	e.logger.Debug("cache hit", "key", k)
	return ent.value, true
}

// Set writes or overwrites a key. A ttl <= 0 falls back to the configured
// default TTL. The capacity bound holds when Set returns: inserting a new
// key at the limit evicts the least recently accessed entry first.
func (e *Engine) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	e.SetWithTags(ctx, key, value, ttl)
}

// SetWithTags behaves like Set and additionally labels the entry with tags
// for group invalidation via ClearTag.
func (e *Engine) SetWithTags(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) {
	k := e.namespaced(key)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.setLocked(k, value, ttl, 0, tags)
}

// setLocked creates or replaces the entry for an already-namespaced key.
// softTTL > 0 arms a stale window ending softTTL after now.
func (e *Engine) setLocked(k string, value any, ttl, softTTL time.Duration, tags []string) {
	if ttl <= 0 {
		ttl = e.cfg.DefaultTTL
	}
	now := time.Now()
	hard := now.Add(ttl)

	var soft time.Time
	if softTTL > 0 && softTTL < ttl {
		soft = now.Add(softTTL)
	}

	if el, ok := e.entries[k]; ok {
		ent := el.Value.(*entry)
		e.dropTagsLocked(ent)
		ent.value = value
		ent.hardExpiry = hard
		ent.softExpiry = soft
		ent.lastAccessed = now
		ent.tags = tags
		e.addTagsLocked(ent)
		e.recency.MoveToFront(el)
		return
	}

	ent := &entry{
		key:          k,
		value:        value,
		hardExpiry:   hard,
		softExpiry:   soft,
		lastAccessed: now,
		tags:         tags,
	}
	e.entries[k] = e.recency.PushFront(ent)
	e.addTagsLocked(ent)
	e.evictIfNeededLocked(now)
}

// Delete removes the entry if present and reports whether it existed.
func (e *Engine) Delete(ctx context.Context, key string) bool {
	k := e.namespaced(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.entries[k]
	if ok {
		e.removeLocked(k)
	}
	return ok
}

// Has reports whether a live entry exists for key. It is a probe: the
// entry's access time is not touched. Expired entries are removed.
func (e *Engine) Has(ctx context.Context, key string) bool {
	k := e.namespaced(key)
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	el, ok := e.entries[k]
	if !ok {
		return false
	}
	if el.Value.(*entry).expired(now) {
		e.removeLocked(k)
		e.stats.Expirations++
		return false
	}
	return true
}

// TTL returns the remaining time until hard expiry, or -1 when the key is
// absent or expired.
func (e *Engine) TTL(ctx context.Context, key string) time.Duration {
	k := e.namespaced(key)
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	el, ok := e.entries[k]
	if !ok {
		return -1
	}
	ent := el.Value.(*entry)
	if ent.expired(now) {
		e.removeLocked(k)
		e.stats.Expirations++
		return -1
	}
	return ent.hardExpiry.Sub(now)
}

// MGet performs a batched Get. Keys without a live entry are absent from
// the result map. Equivalent to calling Get per key; no cross-key
// atomicity is implied beyond holding the lock for the batch.
func (e *Engine) MGet(ctx context.Context, keys []string) map[string]any {
	now := time.Now()
	out := make(map[string]any, len(keys))

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, key := range keys {
		k := e.namespaced(key)
		el, ok := e.entries[k]
		if !ok {
			e.stats.Misses++
			continue
		}
		ent := el.Value.(*entry)
		if ent.expired(now) {
			e.removeLocked(k)
			e.stats.Misses++
			e.stats.Expirations++
			continue
		}
		ent.lastAccessed = now
		e.recency.MoveToFront(el)
		e.stats.Hits++
		out[key] = ent.value
	}
	return out
}

// ClearPattern removes every entry whose key matches the glob pattern.
// Within the pattern, `*` matches a single `:`-separated segment, `**`
// matches any suffix, and a trailing `*` after a literal prefix also
// matches any suffix. Patterns are matched against the full stored key,
// namespace included.
func (e *Engine) ClearPattern(ctx context.Context, pattern string) error {
	match, err := compilePattern(e.namespaced(pattern))
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var matched []string
	for k := range e.entries {
		if match(k) {
			matched = append(matched, k)
		}
	}
	for _, k := range matched {
		e.removeLocked(k)
	}

	e.logger.Debug("pattern clear", "pattern", pattern, "removed", len(matched))
	return nil
}

// ClearTag removes every entry labeled with tag and returns the number of
// entries removed.
func (e *Engine) ClearTag(ctx context.Context, tag string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := e.byTag[tag]
	if len(keys) == 0 {
		return 0
	}
	removed := 0
	for k := range keys {
		if _, ok := e.entries[k]; ok {
			e.removeLocked(k)
			removed++
		}
	}
	e.logger.Debug("tag clear", "tag", tag, "removed", removed)
	return removed
}

// Clear removes all entries and resets eviction and expiry bookkeeping.
// Operation counters are cumulative and survive a Clear.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entries = make(map[string]*list.Element)
	e.recency.Init()
	e.byTag = make(map[string]map[string]struct{})
}

// Len returns the number of currently resident entries, expired but not
// yet collected entries included.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Stats returns a snapshot of the engine's operation counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

func (e *Engine) evictIfNeededLocked(now time.Time) {
	for len(e.entries) > e.cfg.MaxEntries {
		el := e.recency.Back()
		if el == nil {
			return
		}
		ent := el.Value.(*entry)
		e.removeLocked(ent.key)
		e.stats.Evictions++
		e.logger.Debug("evicted", "key", ent.key)
	}
}

func (e *Engine) removeLocked(k string) {
	el, ok := e.entries[k]
	if !ok {
		return
	}
	ent := el.Value.(*entry)
	e.dropTagsLocked(ent)
	delete(e.entries, k)
	e.recency.Remove(el)
}

func (e *Engine) addTagsLocked(ent *entry) {
	for _, tag := range ent.tags {
		set := e.byTag[tag]
		if set == nil {
			set = make(map[string]struct{})
			e.byTag[tag] = set
		}
		set[ent.key] = struct{}{}
	}
}

func (e *Engine) dropTagsLocked(ent *entry) {
	for _, tag := range ent.tags {
		set := e.byTag[tag]
		delete(set, ent.key)
		if len(set) == 0 {
			delete(e.byTag, tag)
		}
	}
}
