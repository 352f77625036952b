package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaper_ArmsOnFirstInsert(t *testing.T) {
	m := New(WithWindow[string, int](10*time.Second), WithPollInterval[string, int](20*time.Millisecond))
	defer func() { _ = m.Close() }()

	assert.False(t, m.IsPolling(), "An empty map has nothing to poll for")
	require.NoError(t, m.Put("k", 1))
	assert.True(t, m.IsPolling(), "The empty-to-non-empty insert arms the reaper")

	require.NoError(t, m.Clear())
	assert.False(t, m.IsPolling(), "Clear cancels the reaper")
}

func TestReaper_SweepDrainsMapAndSelfCancels(t *testing.T) {
	m := New(WithWindow[string, int](30*time.Millisecond),
		WithSlidingExpiration[string, int](false), WithPollInterval[string, int](20*time.Millisecond))
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Put("two", 50))
	require.NoError(t, m.Put("one", 50))
	require.True(t, m.IsPolling())

	assert.Eventually(t, func() bool {
		count, err := m.Len()
		return err == nil && count == 0 && !m.IsPolling()
	}, time.Second, 10*time.Millisecond, "Sweeps should drain the map and the reaper should cancel itself")

	_, err := m.Get("two")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get("one")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReaper_SweepKeepsLiveEntries(t *testing.T) {
	m := New(WithWindow[string, int](10*time.Second), WithPollInterval[string, int](20*time.Millisecond))
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Put("k", 1))
	time.Sleep(70 * time.Millisecond) // A few sweeps pass.

	got, err := m.Get("k")
	require.NoError(t, err, "Sweeps must not remove live entries")
	assert.Equal(t, 1, got)
	assert.True(t, m.IsPolling(), "The reaper keeps ticking while entries remain")
}

func TestReaper_StopAndStartPolling(t *testing.T) {
	m := New(WithWindow[string, int](10*time.Second), WithPollInterval[string, int](20*time.Millisecond))
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Put("k", 1))
	require.True(t, m.IsPolling())

	require.NoError(t, m.StopPolling())
	assert.False(t, m.IsPolling())

	// Inserts while suppressed must not re-arm.
	require.NoError(t, m.Put("j", 2))
	assert.False(t, m.IsPolling())

	require.NoError(t, m.StartPolling())
	assert.True(t, m.IsPolling(), "StartPolling re-arms against a non-empty map")
}

func TestReaper_ZeroPollIntervalKeepsReaperOff(t *testing.T) {
	m := New(WithWindow[string, int](10*time.Second), WithPollInterval[string, int](0))
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Put("k", 1))
	assert.False(t, m.IsPolling(), "A zero interval disables the reaper")

	require.NoError(t, m.SetPollInterval(20*time.Millisecond))
	assert.True(t, m.IsPolling(), "A positive interval on a non-empty map arms a reaper")

	require.NoError(t, m.SetPollInterval(0))
	assert.False(t, m.IsPolling(), "Setting the interval to zero cancels the reaper")
	require.NoError(t, m.Put("j", 2))
	assert.False(t, m.IsPolling(), "Further inserts must not re-arm while the interval is zero")
}

func TestReaper_RemovingLastEntryDisarms(t *testing.T) {
	m := New(WithWindow[string, int](10*time.Second), WithPollInterval[string, int](20*time.Millisecond))
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Put("k", 1))
	require.True(t, m.IsPolling())

	removed, err := m.Remove("k")
	require.NoError(t, err)
	require.True(t, removed)
	assert.False(t, m.IsPolling(), "Draining the map cancels the reaper")

	// The next empty-to-non-empty insert arms a fresh reaper.
	require.NoError(t, m.Put("j", 2))
	assert.True(t, m.IsPolling())
}

func TestReaper_CloseCancels(t *testing.T) {
	m := New(WithWindow[string, int](10*time.Second), WithPollInterval[string, int](20*time.Millisecond))
	require.NoError(t, m.Put("k", 1))
	require.True(t, m.IsPolling())

	require.NoError(t, m.Close())
	assert.False(t, m.IsPolling())
}
