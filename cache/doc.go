// Package cache provides the public caching surface: the CacheService
// interface, its default in-memory implementation, and key serialization.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: TTL + LRU caching with pattern invalidation and
//     stale-while-revalidate refresh
//   - KeySerializer: Builds stable cache keys from method names and arguments
//
// The default implementation is an in-memory engine with a hard capacity
// bound. Reads never suspend on I/O; the only operation that reaches the
// upstream source of truth is GetWithRefresh, and it guarantees at most
// one outstanding upstream call per key.
//
// # Basic Usage
//
// Construct a cache service from a Config and use the generic helpers for
// type-safe access:
//
//	service, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer service.Close()
//
//	service.Set(ctx, "user:123", user, 5*time.Minute)
//	user, ok := cache.Get[User](ctx, service, "user:123")
//
// Read-through caching with background refresh:
//
//	user, err := cache.GetWithRefresh(ctx, service, "user:123", 5*time.Minute,
//		func(ctx context.Context) (User, error) {
//			return client.FetchUser(ctx, "123")
//		},
//		&cache.RefreshOptions{SoftTTL: time.Minute})
//
// After SoftTTL elapses the cached value is still returned immediately,
// and a single background fetch refreshes the entry. A failed refresh is
// logged and the stale value keeps serving until the hard TTL.
//
// # Expiry Model
//
// Every entry carries a hard expiry and an optional earlier soft expiry:
//
//	fresh -> stale (soft expiry elapsed) -> expired (hard expiry elapsed)
//
// Fresh and stale entries are both hits; expired entries are treated as
// absent and removed lazily when a read encounters them.
//
// # Pattern Invalidation
//
// ClearPattern removes entries by glob pattern. `*` matches one
// `:`-separated key segment, `**` matches across segments, and a trailing
// `*` after a literal prefix matches any suffix:
//
//	service.ClearPattern(ctx, "acme:*")     // everything under acme:
//	service.ClearPattern(ctx, "*:sessions") // one segment, then :sessions
//
// # Key Serialization
//
// The default key serializer joins the method name and arguments with ':'.
// Basic types use their literal form, composites fall back to JSON (map
// keys sorted, so output is deterministic), and function arguments use
// their address, which is stable only within a single process lifetime.
// Oversized keys keep the method prefix and digest the remainder, so
// prefix-based invalidation keeps working.
//
// # Tenant Isolation
//
// This package has no tenant concept. Per-customer key namespacing and
// scoped invalidation are layered on top by the customercache package.
//
// # See Also
//
// For tenant-scoped wrappers, see the customercache package.
// For dependency injection setup, see the pkg/di package.
package cache
