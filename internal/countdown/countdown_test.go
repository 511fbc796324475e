package countdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func TestNewStoreStartsAbsent(t *testing.T) {
	s := NewStore(anchor)
	snap := s.Read()

	_, ok := snap.Remaining()
	assert.False(t, ok)
	assert.Equal(t, anchor, snap.Anchor)
	assert.Equal(t, Placeholder, Text(snap, anchor.Add(10*time.Second)))
}

func TestStorePublishAndRead(t *testing.T) {
	s := NewStore(anchor)
	s.Publish(125, anchor)

	remaining, ok := s.Read().Remaining()
	require.True(t, ok)
	assert.Equal(t, 125, remaining)

	later := anchor.Add(30 * time.Second)
	s.PublishAbsent(later)
	snap := s.Read()
	_, ok = snap.Remaining()
	assert.False(t, ok)
	assert.Equal(t, later, snap.Anchor)
}

func TestStorePublishClampsNegative(t *testing.T) {
	s := NewStore(anchor)
	s.Publish(-5, anchor)

	remaining, ok := s.Read().Remaining()
	require.True(t, ok)
	assert.Equal(t, 0, remaining)
}

// Each writer publishes remaining == anchor offset in seconds, so a torn read
// would show up as a mismatch between the two fields.
func TestStoreReadsAreNeverTorn(t *testing.T) {
	s := NewStore(anchor)
	s.Publish(0, anchor)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				s.Publish(i, anchor.Add(time.Duration(i)*time.Second))
			}
		}
	}()

	for i := 0; i < 10000; i++ {
		snap := s.Read()
		remaining, ok := snap.Remaining()
		require.True(t, ok)
		require.Equal(t, time.Duration(remaining)*time.Second, snap.Anchor.Sub(anchor))
	}
	close(stop)
	wg.Wait()
}

func TestFormat(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{60, "01:00"},
		{125, "02:05"},
		{599, "09:59"},
		{3600, "60:00"},
		{5999, "99:59"},
		{6000, "100:00"},
		{-3, "00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, Format(tc.seconds))
		})
	}
}

func TestLiveResyncsOnPublish(t *testing.T) {
	s := NewStore(anchor)
	s.Publish(125, anchor)

	assert.Equal(t, "01:00", Text(s.Read(), anchor.Add(65*time.Second)))

	// Fresh data replaces the extrapolation entirely
	fetchedAt := anchor.Add(70 * time.Second)
	s.Publish(300, fetchedAt)
	assert.Equal(t, "04:59", Text(s.Read(), fetchedAt.Add(1500*time.Millisecond)))
}

func TestLiveIsMonotonicAndNeverNegative(t *testing.T) {
	s := NewStore(anchor)
	s.Publish(3, anchor)
	snap := s.Read()

	previous := 3
	for ms := 0; ms <= 10000; ms += 250 {
		live, ok := Live(snap, anchor.Add(time.Duration(ms)*time.Millisecond))
		require.True(t, ok)
		require.GreaterOrEqual(t, live, 0)
		require.LessOrEqual(t, live, previous)
		previous = live
	}
	assert.Equal(t, 0, previous)
	assert.Equal(t, "00:00", Text(snap, anchor.Add(time.Hour)))
}

func TestLiveIgnoresClockBeforeAnchor(t *testing.T) {
	s := NewStore(anchor)
	s.Publish(90, anchor)

	live, ok := Live(s.Read(), anchor.Add(-10*time.Second))
	require.True(t, ok)
	assert.Equal(t, 90, live)
}
