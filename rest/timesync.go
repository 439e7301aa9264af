package rest

import (
	"context"
	"sync"
	"time"

	"github.com/coachpo/chiliz/internal/observability"
)

// serverClock fetches the exchange clock in epoch milliseconds.
type serverClock func(ctx context.Context) (int64, error)

// timeSync keeps a local estimate of the exchange clock. Signed requests
// carry server-aligned timestamps so the exchange accepts them within its
// receive window.
type timeSync struct {
	mu sync.Mutex

	fetch    serverClock
	clock    func() time.Time
	interval time.Duration
	static   time.Duration
	auto     bool

	offset      time.Duration
	synced      bool
	everFetched bool
	lastSync    time.Time
}

// syncThreshold is the measured offset below which the local clock is
// trusted as-is. Small positive skews are dominated by network latency.
const syncThreshold = 500 * time.Millisecond

func newTimeSync(fetch serverClock, clock func() time.Time, interval, static time.Duration, auto bool) *timeSync {
	if clock == nil {
		clock = time.Now
	}
	return &timeSync{
		fetch:    fetch,
		clock:    clock,
		interval: interval,
		static:   static,
		auto:     auto,
	}
}

// Timestamp returns the epoch milliseconds to stamp on a signed request,
// refreshing the offset first when auto-sync deems it stale.
func (s *timeSync) Timestamp(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auto && (!s.synced || s.clock().Sub(s.lastSync) > s.interval) {
		if err := s.refreshLocked(ctx); err != nil {
			return 0, err
		}
	}
	return s.nowLocked().UnixMilli(), nil
}

// Refresh forces a resynchronisation against the exchange clock.
func (s *timeSync) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// Now returns the current server-aligned time.
func (s *timeSync) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowLocked()
}

func (s *timeSync) nowLocked() time.Time {
	return s.clock().Add(s.offset + s.static)
}

func (s *timeSync) refreshLocked(ctx context.Context) error {
	// The local clock is sampled before the request goes out; measuring
	// after the response would fold the round-trip latency into the
	// offset as spurious negative skew.
	local := s.clock()
	serverMs, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	// The very first measurement pays for connection setup, so it is
	// discarded and a second one taken.
	if !s.everFetched {
		s.everFetched = true
		local = s.clock()
		serverMs, err = s.fetch(ctx)
		if err != nil {
			return err
		}
	}
	raw := time.UnixMilli(serverMs).Sub(local)
	offset := raw
	if raw >= 0 && raw < syncThreshold {
		offset = 0
	}
	s.offset = offset
	s.synced = true
	s.lastSync = s.clock()
	observability.Log().Debug("time sync refreshed",
		observability.F("raw_offset", raw.String()),
		observability.F("applied_offset", offset.String()))
	return nil
}
