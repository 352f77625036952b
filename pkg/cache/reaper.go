// The reaper is a single cooperative background goroutine per TTLMap. It is
// armed by the insert that makes the map non-empty, sleeps a poll interval
// between sweeps, and cancels itself once a sweep drains the map. Foreground
// operations that empty the map, stop polling, or close the map cancel it
// through the same context; the goroutine observes cancellation at its next
// suspension point.

package cache

import (
	"context"
	"log/slog"
	"time"
)

// armLocked starts a reaper when one is due: polling enabled and not
// suppressed, map non-empty, no reaper armed, map not closed.
func (m *TTLMap[K, V]) armLocked() {
	if m.stopReaper != nil || m.closed || m.suppressed || m.pollInterval <= 0 || len(m.entries) == 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.stopReaper = cancel
	go m.reap(ctx, m.pollInterval)
}

// disarmLocked cancels the armed reaper, if any.
func (m *TTLMap[K, V]) disarmLocked() {
	if m.stopReaper != nil {
		m.stopReaper()
		m.stopReaper = nil
	}
}

// reap ticks at interval and sweeps until cancelled or until a sweep reports
// the map drained. A panic never reaches foreground callers: it is counted,
// logged, and terminates this reaper; the next empty-to-non-empty insert
// arms a fresh one.
func (m *TTLMap[K, V]) reap(ctx context.Context, interval time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			reaperFailuresMetric.Inc()
			slog.Error("Cache reaper terminated by panic.", "panic", r)
			m.mu.Lock()
			if ctx.Err() == nil { // Still the armed reaper; release its slot.
				m.disarmLocked()
			}
			m.mu.Unlock()
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.sweep(ctx) {
				return
			}
		}
	}
}

// sweep drops every expired entry and reports whether the reaper should keep
// ticking. It returns false when the map closed, when the sweep drained the
// map (cancelling its own context on the way), or when this reaper was
// cancelled between the tick and the lock, in which case facade state
// belongs to a successor and is left untouched.
func (m *TTLMap[K, V]) sweep(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	if m.closed {
		return false
	}
	if len(m.entries) == 0 {
		m.disarmLocked()
		return false
	}
	sweepsMetric.Inc()
	m.removeExpiredLocked(time.Now(), "sweep")
	return len(m.entries) > 0
}
