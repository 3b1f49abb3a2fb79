package cacheengine

import (
	"context"
	"time"
)

// GetWithRefresh returns the cached value for key, fetching from upstream
// when needed and refreshing stale entries in the background.
//
// Resolution order:
//
//  1. Fresh entry: returned immediately, no upstream call.
//  2. Stale entry (past its soft expiry, before hard expiry): the stale
//     value is returned immediately and at most one background refresh is
//     started for the key. A failed background refresh is logged and
//     swallowed; the stale value keeps serving until hard expiry.
//  3. Absent or expired: a synchronous fetch runs, its result is stored
//     and returned. Concurrent callers for the same key share one
//     upstream call. A failed synchronous fetch propagates to the caller.
//
// softTTL > 0 arms the stale window that many units after the write.
// Otherwise refreshThreshold > 0 arms it that far before hard expiry.
// With neither set the entry stays fresh until hard expiry and case 2
// never applies.
//
// The engine does not cancel an in-flight fetch when the caller's context
// is done; the fetch runs to completion for the benefit of later readers.
func (e *Engine) GetWithRefresh(ctx context.Context, key string, ttl time.Duration, fetchFn func(context.Context) (any, error), softTTL, refreshThreshold time.Duration) (any, error) {
	k := e.namespaced(key)
	now := time.Now()

	e.mu.Lock()
	if el, ok := e.entries[k]; ok {
		ent := el.Value.(*entry)
		if !ent.expired(now) {
			ent.lastAccessed = now
			e.recency.MoveToFront(el)
			e.stats.Hits++
			value := ent.value

			if ent.stale(now) && !e.closed {
				if _, inFlight := e.refreshing[k]; !inFlight {
					e.refreshing[k] = struct{}{}
					e.wg.Add(1)
					go e.refreshInBackground(ctx, k, ttl, fetchFn, softTTL, refreshThreshold)
				}
			}

			e.mu.Unlock()
			e.logger.Debug("cache hit", "key", k)
			return value, nil
		}
		e.removeLocked(k)
		e.stats.Expirations++
	}
	e.stats.Misses++
	e.mu.Unlock()

	e.logger.Debug("cache miss", "key", k)

	// Cold miss: collapse concurrent fetches for this key into one
	// upstream call. Every waiter observes the same outcome.
	value, err, _ := e.flight.Do(k, func() (any, error) {
		// A previous flight may have populated the entry while this
		// caller was waiting to start.
		if v, ok := e.lookupLive(k, time.Now()); ok {
			return v, nil
		}

		fetched, err := fetchFn(ctx)
		if err != nil {
			return nil, err
		}
		e.storeFetched(k, fetched, ttl, softTTL, refreshThreshold)
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// lookupLive returns the value under an already-namespaced key when a
// non-expired entry exists, promoting it like any other read. The value
// is copied out under the lock; concurrent writers replace the entry's
// value field in place.
func (e *Engine) lookupLive(k string, now time.Time) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	el, ok := e.entries[k]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*entry)
	if ent.expired(now) {
		return nil, false
	}
	ent.lastAccessed = now
	e.recency.MoveToFront(el)
	e.stats.Hits++
	return ent.value, true
}

// refreshInBackground fetches a fresh value for an already-namespaced key
// and replaces the entry on success. On failure the existing entry is left
// untouched. The in-flight marker is cleared on every exit path.
func (e *Engine) refreshInBackground(ctx context.Context, k string, ttl time.Duration, fetchFn func(context.Context) (any, error), softTTL, refreshThreshold time.Duration) {
	defer e.wg.Done()
	defer func() {
		e.mu.Lock()
		delete(e.refreshing, k)
		e.mu.Unlock()
	}()

	e.logger.Debug("refresh start", "key", k)

	// The refresh outlives the triggering caller on purpose.
	value, err := fetchFn(context.WithoutCancel(ctx))
	if err != nil {
		e.mu.Lock()
		e.stats.RefreshFailures++
		e.mu.Unlock()
		e.logger.Warn("refresh failed", "key", k, "error", err)
		return
	}

	e.storeFetched(k, value, ttl, softTTL, refreshThreshold)
	e.mu.Lock()
	e.stats.Refreshes++
	e.mu.Unlock()
	e.logger.Debug("refresh success", "key", k)
}

// storeFetched writes a fetched value under an already-namespaced key,
// arming the soft expiry from softTTL or refreshThreshold.
func (e *Engine) storeFetched(k string, value any, ttl, softTTL, refreshThreshold time.Duration) {
	if ttl <= 0 {
		ttl = e.cfg.DefaultTTL
	}
	if softTTL <= 0 && refreshThreshold > 0 && refreshThreshold < ttl {
		softTTL = ttl - refreshThreshold
	}

	e.mu.Lock()
	e.setLocked(k, value, ttl, softTTL, nil)
	e.mu.Unlock()
}
