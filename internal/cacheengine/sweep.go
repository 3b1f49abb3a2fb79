package cacheengine

import "time"

// sweepLoop periodically removes expired entries so that keys written once
// and never read again do not pin memory until eviction pressure arrives.
// Lazy expiration on access remains the correctness mechanism; the sweep
// only bounds memory.
func (e *Engine) sweepLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.EvictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case now := <-ticker.C:
			e.mu.Lock()
			e.sweepExpiredLocked(now)
			e.mu.Unlock()
		}
	}
}

// sweepExpiredLocked removes all expired entries. O(n) by design; entries
// are swept rarely and the scan avoids per-entry timers.
func (e *Engine) sweepExpiredLocked(now time.Time) int {
	var dead []string
	for k, el := range e.entries {
		if el.Value.(*entry).expired(now) {
			dead = append(dead, k)
		}
	}
	for _, k := range dead {
		e.removeLocked(k)
	}
	e.stats.Expirations += uint64(len(dead))
	return len(dead)
}
