package cacheengine

import "time"

// entry is the value stored in the recency list elements.
// The key is kept here because eviction starts from list nodes.
//
// hardExpiry is the absolute cutoff: an entry past it is never served.
// softExpiry is optional; a zero value means the entry has no stale
// window and stays fresh until hardExpiry.
type entry struct {
	key          string
	value        any
	hardExpiry   time.Time
	softExpiry   time.Time
	lastAccessed time.Time
	tags         []string
}

// expired reports whether the entry is past its hard expiry at now.
func (e *entry) expired(now time.Time) bool {
	return !e.hardExpiry.After(now)
}

// stale reports whether the entry is inside its stale-but-servable window:
// past softExpiry but not yet past hardExpiry. Entries without a soft
// expiry are never stale.
func (e *entry) stale(now time.Time) bool {
	if e.softExpiry.IsZero() {
		return false
	}
	return !e.softExpiry.After(now) && e.hardExpiry.After(now)
}
