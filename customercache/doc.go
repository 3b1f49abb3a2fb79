// Package customercache provides per-customer isolation over a shared cache.
//
// # Overview
//
// This package layers tenant semantics on top of the cache package without
// the underlying engine knowing anything about tenants. A CustomerCache
// rewrites every key into "<customer>:<key>" and restricts bulk operations
// to that prefix; a Factory memoizes one CustomerCache per customer over a
// single shared CacheService.
//
// Isolation is a wrapper-level contract: all customers share one entry
// store, one capacity bound, and one eviction policy, but a customer can
// only observe, mutate, or clear keys under its own prefix.
//
// # Basic Usage
//
//	service, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	factory := customercache.NewFactory(service)
//
//	acme, err := factory.CustomerCache("acme")
//	if err != nil {
//		return err
//	}
//
//	acme.Set(ctx, "plan", "enterprise", time.Hour)
//	plan, ok := acme.Get(ctx, "plan") // stored as "acme:plan"
//
// Dropping one customer's entries leaves every other customer untouched:
//
//	factory.ClearCustomer(ctx, "acme")
//
// # Key Prefixing
//
// Prefixing is idempotent: a caller that already supplies "acme:plan" to
// the acme cache gets the same entry as one supplying "plan". MGet strips
// the prefix from result keys, so callers never see the internal
// namespacing.
//
// # Identifier Rules
//
// A customer identifier must be non-empty and must not contain the key
// segment separator ':'. Construction fails with ErrMissingCustomerID or
// ErrInvalidCustomerID; there is no fallback to an unscoped cache.
//
// # See Also
//
// For engine semantics (TTL, eviction, refresh), see the cache package.
// For wiring a shared service and factory together, see pkg/di.
package customercache
