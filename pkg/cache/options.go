package cache

import (
	"strings"
	"time"

	"github.com/lunardb/loquat/pkg/utils"
)

// Defaults applied by New when an option is missing or carries an
// out-of-range value.
const (
	DefaultCapacity     = 1024
	DefaultWindow       = 15 * time.Minute
	DefaultPollInterval = time.Minute

	// minWindow is the floor every expiration window is clamped to.
	minWindow = time.Millisecond
)

// Option configures a TTLMap at construction time.
type Option[K comparable, V any] func(*TTLMap[K, V])

// WithCapacity bounds the number of entries the map holds; a Put over
// capacity evicts one victim first. Zero or negative falls back to
// DefaultCapacity.
func WithCapacity[K comparable, V any](capacity int) Option[K, V] {
	return func(m *TTLMap[K, V]) {
		if capacity <= 0 {
			utils.Violation{Module: "cache", Type: "non_positive_capacity"}.Raise(
				"Cache capacity must be positive, falling back to the default.", "capacity", capacity)
			capacity = DefaultCapacity
		}
		m.capacity = capacity
	}
}

// WithWindow sets the per-entry expiration window applied on insert and on
// sliding renewal. Non-positive windows are clamped to one millisecond.
func WithWindow[K comparable, V any](window time.Duration) Option[K, V] {
	return func(m *TTLMap[K, V]) { m.window = clampWindow(window) }
}

// WithSlidingExpiration toggles renewal of an entry's deadline on every
// successful read. On when the option is absent.
func WithSlidingExpiration[K comparable, V any](sliding bool) Option[K, V] {
	return func(m *TTLMap[K, V]) { m.sliding = sliding }
}

// WithPollInterval sets the reaper tick. Zero keeps the reaper off entirely;
// negative values are clamped to zero.
func WithPollInterval[K comparable, V any](interval time.Duration) Option[K, V] {
	return func(m *TTLMap[K, V]) { m.pollInterval = clampPollInterval(interval) }
}

// WithComparer canonicalizes keys with fold before every map access, so keys
// that fold to the same value address the same entry. Enumeration reports the
// spelling that was first inserted.
func WithComparer[K comparable, V any](fold func(K) K) Option[K, V] {
	return func(m *TTLMap[K, V]) {
		if fold == nil {
			utils.Violation{Module: "cache", Type: "nil_comparer"}.Raise(
				"Got a nil key comparer, keeping structural equality.")
			return
		}
		m.fold = fold
	}
}

// FoldStringKeys is the comparer for case-insensitive string keys.
func FoldStringKeys(key string) string { return strings.ToLower(key) }

// WithValueEquality sets the equality used by RemovePair and ContainsValue.
// reflect.DeepEqual when the option is absent.
func WithValueEquality[K comparable, V any](eq func(a, b V) bool) Option[K, V] {
	return func(m *TTLMap[K, V]) {
		if eq == nil {
			utils.Violation{Module: "cache", Type: "nil_value_equality"}.Raise(
				"Got a nil value equality, keeping deep equality.")
			return
		}
		m.valueEq = eq
	}
}

// WithEvictionCallback runs cb for every entry removed under capacity
// pressure. The callback runs with the map's lock held and must not call
// back into the cache.
func WithEvictionCallback[K comparable, V any](cb func(K, V)) Option[K, V] {
	return func(m *TTLMap[K, V]) { m.onEvict = cb }
}
