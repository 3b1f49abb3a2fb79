package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidResultType is returned by the generic helpers when a cached
// value does not match the type requested by the caller.
var ErrInvalidResultType = errors.New("cache: cached value does not match the requested type")

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// FetchFn is the function signature CacheService expects when fetching
// from the source of truth. It may fail and it may be slow; the cache
// treats it as an opaque upstream call.
type FetchFn[T any] func(ctx context.Context) (T, error)

// RefreshOptions tunes the stale-while-revalidate window for GetWithRefresh.
// With the zero value, entries stay fresh until their hard expiry and no
// background refresh is ever scheduled.
type RefreshOptions struct {
	// SoftTTL arms the stale window this long after a write. A stale entry
	// is still served, but a background refresh is triggered for it.
	SoftTTL time.Duration

	// RefreshThreshold arms the stale window this long before hard expiry.
	// Ignored when SoftTTL is set.
	RefreshThreshold time.Duration
}

// CacheService exposes the caching operations of the engine. It is
// exported so that other packages can wrap it (see customercache) or
// provide alternate cache backends.
//
// All operations except GetWithRefresh touch only in-memory state and
// never suspend on I/O.
type CacheService interface {
	// Get returns the value under key, touching its access time.
	Get(ctx context.Context, key string) (any, bool)

	// Set writes or overwrites a key. ttl <= 0 applies the default TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration)

	// SetWithTags behaves like Set and labels the entry for ClearTag.
	SetWithTags(ctx context.Context, key string, value any, ttl time.Duration, tags ...string)

	// Delete removes the entry if present and reports whether it existed.
	Delete(ctx context.Context, key string) bool

	// Has reports whether a live entry exists, without touching its
	// access time.
	Has(ctx context.Context, key string) bool

	// TTL returns the remaining time to hard expiry, or -1 when the key
	// is absent or expired.
	TTL(ctx context.Context, key string) time.Duration

	// MGet performs a batched Get; keys without a live entry are simply
	// absent from the result map.
	MGet(ctx context.Context, keys []string) map[string]any

	// GetWithRefresh serves fresh entries directly, serves stale entries
	// while refreshing them in the background, and fetches synchronously
	// on a miss with concurrent callers collapsed onto one upstream call.
	GetWithRefresh(ctx context.Context, key string, ttl time.Duration, fetchFn FetchFn[any], opts *RefreshOptions) (any, error)

	// ClearPattern removes every entry whose key matches the glob
	// pattern. `*` matches one `:`-separated segment; `**` and a trailing
	// `*` after a literal prefix match any suffix.
	ClearPattern(ctx context.Context, pattern string) error

	// ClearTag removes every entry labeled with tag and returns how many
	// entries were removed.
	ClearTag(ctx context.Context, tag string) int

	// Clear removes all entries and resets eviction bookkeeping.
	Clear(ctx context.Context)

	// Len returns the number of resident entries.
	Len() int

	// Close stops background work owned by the cache.
	Close() error
}

// Get is a type-safe wrapper for CacheService.Get. A cached value of the
// wrong type is reported as a miss.
func Get[T any](ctx context.Context, service CacheService, key string) (T, bool) {
	value, ok := service.Get(ctx, key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, false
	}
	return typed, true
}

// MGet is a type-safe wrapper for CacheService.MGet. Values of the wrong
// type are dropped from the result.
func MGet[T any](ctx context.Context, service CacheService, keys []string) map[string]T {
	raw := service.MGet(ctx, keys)
	out := make(map[string]T, len(raw))
	for k, v := range raw {
		if typed, ok := v.(T); ok {
			out[k] = typed
		}
	}
	return out
}

// GetWithRefresh is a type-safe wrapper function that provides generic
// support for CacheService.GetWithRefresh.
func GetWithRefresh[T any](ctx context.Context, service CacheService, key string, ttl time.Duration, fetchFn FetchFn[T], opts *RefreshOptions) (T, error) {
	result, err := service.GetWithRefresh(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	}, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	if result == nil {
		var zero T
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		var zero T
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
