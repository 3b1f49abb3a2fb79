package di

import (
	"github.com/goliatone/go-tenant-cache/cache"
	"github.com/goliatone/go-tenant-cache/customercache"
)

// Container provides dependency injection for cache related components.
// It manages singleton instances of the shared cache service, the key
// serializer, and the customer cache factory.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	customers     *customercache.Factory
	config        cache.Config
}

// NewContainer creates a new DI container with the provided cache
// configuration. It initializes the shared cache service, the default
// key serializer, and a customer cache factory over the shared service.
func NewContainer(config cache.Config) (*Container, error) {
	cacheService, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}

	return &Container{
		cacheService:  cacheService,
		keySerializer: cache.NewDefaultKeySerializer(),
		customers:     customercache.NewFactory(cacheService),
		config:        config,
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default
// configuration. This is a convenience constructor for typical use cases
// where custom configuration is not required.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// CacheService returns the singleton shared cache service instance.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Customers returns the singleton customer cache factory.
func (c *Container) Customers() *customercache.Factory {
	return c.customers
}

// CustomerCache returns the memoized customer-scoped cache for customerID.
func (c *Container) CustomerCache(customerID string) (*customercache.CustomerCache, error) {
	return c.customers.CustomerCache(customerID)
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Close releases the shared cache service and any background work it owns.
func (c *Container) Close() error {
	return c.cacheService.Close()
}
