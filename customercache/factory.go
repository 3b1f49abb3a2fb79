package customercache

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-tenant-cache/cache"
)

// Factory creates and memoizes one CustomerCache per customer over a
// single shared CacheService, so memory and eviction pressure are shared
// fleet-wide while logical namespaces stay isolated.
type Factory struct {
	service cache.CacheService
	caches  *xsync.MapOf[string, *CustomerCache]
}

// NewFactory creates a factory over the shared cache service. The factory
// does not take ownership of the service; its lifetime and teardown stay
// with the caller.
func NewFactory(service cache.CacheService) *Factory {
	return &Factory{
		service: service,
		caches:  xsync.NewMapOf[string, *CustomerCache](),
	}
}

// CustomerCache returns the memoized cache for customerID, creating it on
// first use. For the factory's lifetime each customer gets exactly one
// wrapper instance (until ClearCustomer discards it).
func (f *Factory) CustomerCache(customerID string) (*CustomerCache, error) {
	if err := ValidateCustomerID(customerID); err != nil {
		return nil, err
	}
	cc, _ := f.caches.LoadOrCompute(customerID, func() *CustomerCache {
		// The id is validated above, so construction cannot fail.
		scoped, _ := New(customerID, f.service)
		return scoped
	})
	return cc, nil
}

// ClearCustomer removes every entry belonging to customerID and discards
// its memoized wrapper; the next access recreates it.
func (f *Factory) ClearCustomer(ctx context.Context, customerID string) error {
	if err := ValidateCustomerID(customerID); err != nil {
		return err
	}
	defer f.caches.Delete(customerID)
	return f.service.ClearPattern(ctx, customerID+cache.KeySeparator+"*")
}

// Service returns the shared cache service backing all customer caches.
func (f *Factory) Service() cache.CacheService {
	return f.service
}
