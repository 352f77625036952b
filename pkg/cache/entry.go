package cache

import "time"

// entry is the per-key record a TTLMap stores. All fields are guarded by the
// owning map's mutex; entries never escape the cache package.
type entry[K comparable, V any] struct {
	// key holds the spelling that was first inserted, before folding.
	key   K
	value V

	uses      uint64    // Incremented on every hit and in-place update.
	lastUsed  time.Time // Most recent read or write that touched this entry.
	expiresAt time.Time // The entry is absent to observers from this instant on.
}

// expired reports whether the entry's deadline has passed. An expired entry
// is still physically present until an observation or a sweep drops it.
func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.After(now)
}

// touch records a successful read. The deadline moves only under sliding
// expiration; callers must have checked the entry is not expired, since an
// expired entry must never be renewed.
func (e *entry[K, V]) touch(now time.Time, window time.Duration, sliding bool) {
	e.uses++
	e.lastUsed = now
	if sliding {
		e.expiresAt = now.Add(window)
	}
}
