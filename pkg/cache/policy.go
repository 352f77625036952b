// Expiration and eviction policy. Deadlines are always `now + window`; a
// window is clamped to at least one millisecond. Eviction picks the single
// entry minimizing (expiresAt, lastUsed, uses) lexicographically: the
// soonest-to-expire entry goes first, ties broken by least-recently-used,
// then by least-frequently-used.

package cache

import (
	"time"

	"github.com/lunardb/loquat/pkg/utils"
)

func clampWindow(window time.Duration) time.Duration {
	if window < minWindow {
		utils.Violation{Module: "cache", Type: "non_positive_window"}.Raise(
			"Expiration window must be positive, clamping to the minimum.", "window", window)
		return minWindow
	}
	return window
}

func clampPollInterval(interval time.Duration) time.Duration {
	if interval < 0 {
		utils.Violation{Module: "cache", Type: "negative_poll_interval"}.Raise(
			"Poll interval must be non-negative, clamping to zero.", "interval", interval)
		return 0
	}
	return interval
}

// beats reports whether e is a better eviction victim than o under the
// (expiresAt, lastUsed, uses) priority.
func (e *entry[K, V]) beats(o *entry[K, V]) bool {
	if !e.expiresAt.Equal(o.expiresAt) {
		return e.expiresAt.Before(o.expiresAt)
	}
	if !e.lastUsed.Equal(o.lastUsed) {
		return e.lastUsed.Before(o.lastUsed)
	}
	return e.uses < o.uses
}

// evictOneLocked removes the entry minimizing (expiresAt, lastUsed, uses).
// The scan is linear: the priority fields mutate on every read, so no index
// over them stays valid between lookups, and capacity bounds the scan.
func (m *TTLMap[K, V]) evictOneLocked() {
	var victimKey K
	var victim *entry[K, V]
	for canon, e := range m.entries {
		if victim == nil || e.beats(victim) {
			victimKey, victim = canon, e
		}
	}
	if victim == nil {
		return
	}
	delete(m.entries, victimKey)
	evictionsMetric.Inc()
	if m.onEvict != nil {
		m.onEvict(victim.key, victim.value)
	}
}
