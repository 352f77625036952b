// Sharding distributes keys uniformly across independent cache instances.
// Each shard guards itself with its own mutex, so goroutines touching
// different keys mostly lock different shards instead of contending on one.

package cache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/lunardb/loquat/pkg/utils"
)

// Sharded routes every key to one of its shards by hash. Each shard runs its
// own reaper and is closed by Close.
type Sharded[K comparable, V any] struct {
	shards []Layer[K, V]
	hash   func(key K) uint64
}

var _ Layer[string, int] = (*Sharded[string, int])(nil)

// NewSharded builds shardCount shards with newShard and routes keys across
// them. A non-positive shardCount falls back to a single shard.
func NewSharded[K comparable, V any](newShard func() Layer[K, V], shardCount int) *Sharded[K, V] {
	if shardCount <= 0 {
		utils.Violation{Module: "cache", Type: "non_positive_shard_count"}.Raise(
			"Shard count must be positive, falling back to one shard.", "shardCount", shardCount)
		shardCount = 1
	}
	s := &Sharded[K, V]{shards: make([]Layer[K, V], shardCount), hash: keyHash[K]()}
	for i := range s.shards {
		s.shards[i] = newShard()
	}
	return s
}

// keyHash picks an xxhash routine for the key type once, keeping type
// dispatch off the per-call path. int is widened to a fixed-size word before
// hashing since its size is architecture-dependent.
func keyHash[K comparable]() func(K) uint64 {
	hashWord := func(x uint64) uint64 {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], x)
		return xxhash.Sum64(b[:])
	}
	switch any(*new(K)).(type) {
	case string:
		return func(key K) uint64 { return xxhash.Sum64String(any(key).(string)) }
	case int:
		return func(key K) uint64 { return hashWord(uint64(any(key).(int))) }
	case int64:
		return func(key K) uint64 { return hashWord(uint64(any(key).(int64))) }
	case uint64:
		return func(key K) uint64 { return hashWord(any(key).(uint64)) }
	case uint32:
		return func(key K) uint64 { return hashWord(uint64(any(key).(uint32))) }
	default:
		// Total over any printable key type; slower than the fixed cases.
		return func(key K) uint64 { return xxhash.Sum64String(fmt.Sprintf("%#v", key)) }
	}
}

func (s *Sharded[K, V]) shard(key K) Layer[K, V] {
	return s.shards[s.hash(key)%uint64(len(s.shards))]
}

func (s *Sharded[K, V]) Put(key K, value V) error        { return s.shard(key).Put(key, value) }
func (s *Sharded[K, V]) Get(key K) (V, error)            { return s.shard(key).Get(key) }
func (s *Sharded[K, V]) TryGet(key K) (V, bool, error)   { return s.shard(key).TryGet(key) }
func (s *Sharded[K, V]) Remove(key K) (bool, error)      { return s.shard(key).Remove(key) }
func (s *Sharded[K, V]) ContainsKey(key K) (bool, error) { return s.shard(key).ContainsKey(key) }

// Keys aggregates every shard's snapshot. Touches all shards; expensive.
func (s *Sharded[K, V]) Keys() ([]K, error) {
	keys := make([]K, 0)
	for _, shard := range s.shards {
		shardKeys, err := shard.Keys()
		if err != nil {
			return nil, err
		}
		keys = append(keys, shardKeys...)
	}
	return keys, nil
}

// Len sums the physical entry counts of all shards.
func (s *Sharded[K, V]) Len() (int, error) {
	total := 0
	for _, shard := range s.shards {
		n, err := shard.Len()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Clear empties every shard, stopping at the first failure.
func (s *Sharded[K, V]) Clear() error {
	for _, shard := range s.shards {
		if err := shard.Clear(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every shard and reports the combined failures.
func (s *Sharded[K, V]) Close() error {
	var errs []error
	for _, shard := range s.shards {
		errs = append(errs, shard.Close())
	}
	return errors.Join(errs...)
}
