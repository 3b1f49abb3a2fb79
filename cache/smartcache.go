package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-tenant-cache/internal/cacheengine"
)

// smartCache adapts the internal engine to the CacheService interface.
// It exists so the engine never has to know about public option types.
type smartCache struct {
	engine *cacheengine.Engine
}

var _ CacheService = (*smartCache)(nil)

func (s *smartCache) Get(ctx context.Context, key string) (any, bool) {
	return s.engine.Get(ctx, key)
}

func (s *smartCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	s.engine.Set(ctx, key, value, ttl)
}

func (s *smartCache) SetWithTags(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) {
	s.engine.SetWithTags(ctx, key, value, ttl, tags...)
}

func (s *smartCache) Delete(ctx context.Context, key string) bool {
	return s.engine.Delete(ctx, key)
}

func (s *smartCache) Has(ctx context.Context, key string) bool {
	return s.engine.Has(ctx, key)
}

func (s *smartCache) TTL(ctx context.Context, key string) time.Duration {
	return s.engine.TTL(ctx, key)
}

func (s *smartCache) MGet(ctx context.Context, keys []string) map[string]any {
	return s.engine.MGet(ctx, keys)
}

func (s *smartCache) GetWithRefresh(ctx context.Context, key string, ttl time.Duration, fetchFn FetchFn[any], opts *RefreshOptions) (any, error) {
	var softTTL, threshold time.Duration
	if opts != nil {
		softTTL = opts.SoftTTL
		threshold = opts.RefreshThreshold
	}
	return s.engine.GetWithRefresh(ctx, key, ttl, fetchFn, softTTL, threshold)
}

func (s *smartCache) ClearPattern(ctx context.Context, pattern string) error {
	return s.engine.ClearPattern(ctx, pattern)
}

func (s *smartCache) ClearTag(ctx context.Context, tag string) int {
	return s.engine.ClearTag(ctx, tag)
}

func (s *smartCache) Clear(ctx context.Context) {
	s.engine.Clear(ctx)
}

func (s *smartCache) Len() int {
	return s.engine.Len()
}

func (s *smartCache) Close() error {
	return s.engine.Close()
}
