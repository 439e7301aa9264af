package rest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestSync(t *testing.T, clock *fakeClock, serverMs func() int64) *timeSync {
	t.Helper()
	fetch := func(ctx context.Context) (int64, error) { return serverMs(), nil }
	return newTimeSync(fetch, clock.Now, 3*time.Hour, 0, true)
}

func TestTimeSyncSmallOffsetIgnored(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	s := newTestSync(t, clock, func() int64 { return clock.now.UnixMilli() + 499 })
	ts, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, clock.now.UnixMilli(), ts)
}

func TestTimeSyncLargeOffsetApplied(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	s := newTestSync(t, clock, func() int64 { return clock.now.UnixMilli() + 500 })
	ts, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, clock.now.UnixMilli()+500, ts)
}

func TestTimeSyncNegativeOffsetApplied(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	s := newTestSync(t, clock, func() int64 { return clock.now.UnixMilli() - 120 })
	ts, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, clock.now.UnixMilli()-120, ts)
}

func TestTimeSyncLatencyNotCountedAsSkew(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	fetch := func(ctx context.Context) (int64, error) {
		// A zero-skew server answering over a slow link: the reply
		// carries the local time at send, arriving 600ms later.
		sent := clock.now.UnixMilli()
		clock.Advance(600 * time.Millisecond)
		return sent, nil
	}
	s := newTimeSync(fetch, clock.Now, time.Hour, 0, true)
	ts, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, clock.now.UnixMilli(), ts)
	require.Equal(t, time.Duration(0), s.offset)
}

func TestTimeSyncFirstRefreshFetchesTwice(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	calls := 0
	s := newTestSync(t, clock, func() int64 {
		calls++
		if calls == 1 {
			// Warm-up measurement dominated by connection setup.
			return clock.now.UnixMilli() + 5_000
		}
		return clock.now.UnixMilli()
	})
	ts, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, clock.now.UnixMilli(), ts)

	// A forced refresh later fetches only once.
	require.NoError(t, s.Refresh(context.Background()))
	require.Equal(t, 3, calls)
}

func TestTimeSyncRefreshOnlyWhenStale(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	calls := 0
	s := newTestSync(t, clock, func() int64 {
		calls++
		return clock.now.UnixMilli()
	})
	_, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	fetched := calls

	_, err = s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, fetched, calls)

	clock.Advance(4 * time.Hour)
	_, err = s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Greater(t, calls, fetched)
}

func TestTimeSyncFetchErrorSurfaces(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	boom := errors.New("boom")
	s := newTimeSync(func(ctx context.Context) (int64, error) { return 0, boom },
		clock.Now, time.Hour, 0, true)
	_, err := s.Timestamp(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestTimeSyncStaticOffset(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	fetch := func(ctx context.Context) (int64, error) { return clock.now.UnixMilli(), nil }
	s := newTimeSync(fetch, clock.Now, time.Hour, 250*time.Millisecond, true)
	ts, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Equal(t, clock.now.UnixMilli()+250, ts)
}

func TestTimeSyncDisabledAutoUsesLocalClock(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_000_000)}
	calls := 0
	fetch := func(ctx context.Context) (int64, error) { calls++; return 0, nil }
	s := newTimeSync(fetch, clock.Now, time.Hour, 0, false)
	ts, err := s.Timestamp(context.Background())
	require.NoError(t, err)
	require.Zero(t, calls)
	require.Equal(t, clock.now.UnixMilli(), ts)
}
