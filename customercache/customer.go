package customercache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-tenant-cache/cache"
)

// ErrMissingCustomerID is returned when a customer cache is constructed
// without a customer identifier. Construction fails fast so that
// isolation can never be bypassed by omission.
var ErrMissingCustomerID = errors.New("customercache: customer id is required")

// ErrInvalidCustomerID is returned when a customer identifier contains
// the key segment separator, which would let one customer's prefix alias
// another's.
var ErrInvalidCustomerID = errors.New("customercache: customer id must not contain ':'")

// CustomerCache scopes a shared CacheService to a single customer.
// Every key is rewritten to "<customer>:<key>" on the way in, and bulk
// operations are restricted to that prefix. The wrapper holds no state of
// its own beyond the customer identifier; the entry store is exclusively
// owned by the underlying cache.
type CustomerCache struct {
	customerID string
	service    cache.CacheService
}

// New creates a customer-scoped view over service.
func New(customerID string, service cache.CacheService) (*CustomerCache, error) {
	if err := ValidateCustomerID(customerID); err != nil {
		return nil, err
	}
	return &CustomerCache{customerID: customerID, service: service}, nil
}

// ValidateCustomerID reports whether id is usable as a key prefix.
func ValidateCustomerID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingCustomerID
	}
	if strings.Contains(id, cache.KeySeparator) {
		return ErrInvalidCustomerID
	}
	return nil
}

// CustomerID returns the customer identifier this cache is scoped to.
func (c *CustomerCache) CustomerID() string {
	return c.customerID
}

// prefixKey rewrites key into the customer's namespace. Prefixing is
// idempotent: a key that already carries the exact prefix passes through
// unchanged.
func (c *CustomerCache) prefixKey(key string) string {
	prefix := c.customerID + cache.KeySeparator
	if strings.HasPrefix(key, prefix) {
		return key
	}
	return prefix + key
}

// Get returns the value under the customer-scoped key.
func (c *CustomerCache) Get(ctx context.Context, key string) (any, bool) {
	return c.service.Get(ctx, c.prefixKey(key))
}

// Set writes the value under the customer-scoped key.
func (c *CustomerCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	c.service.Set(ctx, c.prefixKey(key), value, ttl)
}

// SetWithTags writes the value under the customer-scoped key with tags.
func (c *CustomerCache) SetWithTags(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) {
	c.service.SetWithTags(ctx, c.prefixKey(key), value, ttl, tags...)
}

// Delete removes the customer-scoped key and reports whether it existed.
func (c *CustomerCache) Delete(ctx context.Context, key string) bool {
	return c.service.Delete(ctx, c.prefixKey(key))
}

// Has reports whether a live entry exists for the customer-scoped key.
func (c *CustomerCache) Has(ctx context.Context, key string) bool {
	return c.service.Has(ctx, c.prefixKey(key))
}

// TTL returns the remaining time to hard expiry for the customer-scoped
// key, or -1 when absent or expired.
func (c *CustomerCache) TTL(ctx context.Context, key string) time.Duration {
	return c.service.TTL(ctx, c.prefixKey(key))
}

// MGet performs a batched Get over customer-scoped keys. Result keys are
// returned as the caller supplied them; the internal namespacing never
// leaks out.
func (c *CustomerCache) MGet(ctx context.Context, keys []string) map[string]any {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.prefixKey(key)
	}

	raw := c.service.MGet(ctx, prefixed)
	prefix := c.customerID + cache.KeySeparator

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[strings.TrimPrefix(k, prefix)] = v
	}
	return out
}

// GetWithRefresh delegates to the underlying cache with the
// customer-scoped key. Refresh coordination (stampede collapse, stale
// serving, background fetch) all happens per scoped key, so two customers
// caching the same logical key never share an upstream call.
func (c *CustomerCache) GetWithRefresh(ctx context.Context, key string, ttl time.Duration, fetchFn cache.FetchFn[any], opts *cache.RefreshOptions) (any, error) {
	return c.service.GetWithRefresh(ctx, c.prefixKey(key), ttl, fetchFn, opts)
}

// ClearCustomer removes every entry belonging to this customer. Other
// customers' entries are untouched.
func (c *CustomerCache) ClearCustomer(ctx context.Context) error {
	return c.service.ClearPattern(ctx, c.customerID+cache.KeySeparator+"*")
}

// GetWithRefresh is a type-safe wrapper over CustomerCache.GetWithRefresh.
func GetWithRefresh[T any](ctx context.Context, c *CustomerCache, key string, ttl time.Duration, fetchFn cache.FetchFn[T], opts *cache.RefreshOptions) (T, error) {
	result, err := c.GetWithRefresh(ctx, key, ttl, func(ctx context.Context) (any, error) {
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
		return zero, cache.ErrInvalidResultType
	}
	return typed, nil
}
