package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"
	"golang.org/x/time/rate"

	"github.com/coachpo/chiliz/errs"
	"github.com/coachpo/chiliz/internal/observability"
)

// Conn sends control frames to the exchange. The production implementation
// is the reconnecting websocket below; tests substitute their own.
type Conn interface {
	Send(ctx context.Context, payload []byte) error
}

// socket is a websocket connection that redials with exponential backoff and
// replays subscriptions after every reconnect. Outbound control frames are
// paced to stay under the exchange's per-connection message budget.
type socket struct {
	url         string
	onMessage   func(payload []byte)
	onReconnect func(ctx context.Context) error
	limiter     *rate.Limiter

	mu     sync.Mutex
	conn   *websocket.Conn
	ready  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func newSocket(url string, onMessage func([]byte), onReconnect func(ctx context.Context) error) *socket {
	return &socket{
		url:         url,
		onMessage:   onMessage,
		onReconnect: onReconnect,
		limiter:     rate.NewLimiter(rate.Limit(5), 10),
		ready:       make(chan struct{}),
	}
}

// Start launches the connection loop. It returns once the loop is running.
func (s *socket) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx)
}

// Close tears the connection down and stops reconnecting.
func (s *socket) Close() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Send writes one text frame. It waits for the pacing limiter and, when the
// connection is still being established, for the dial to finish.
func (s *socket) Send(ctx context.Context, payload []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return errs.New(errs.CodeCancelled, errs.WithMessage("send cancelled"), errs.WithCause(err))
	}
	for {
		s.mu.Lock()
		conn, ready := s.conn, s.ready
		s.mu.Unlock()
		if conn != nil {
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return errs.New(errs.CodeNetwork, errs.WithMessage("websocket write"), errs.WithCause(err))
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return errs.New(errs.CodeCancelled, errs.WithMessage("send cancelled"), errs.WithCause(ctx.Err()))
		case <-ready:
		}
	}
}

func (s *socket) run(ctx context.Context) {
	defer close(s.done)
	backoffCfg := backoff.NewExponentialBackOff()
	dialled := false
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		conn, _, err := websocket.Dial(ctx, s.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			observability.Log().Warn("websocket dial failed",
				observability.F("url", s.url),
				observability.F("error", err.Error()))
			sleep := backoffCfg.NextBackOff()
			select {
			case <-ctx.Done():
				return
			case <-time.After(sleep):
			}
			continue
		}
		backoffCfg.Reset()
		s.mu.Lock()
		s.conn = conn
		close(s.ready)
		s.mu.Unlock()

		// The first connection carries no earlier subscriptions to replay;
		// pending subscribers are still parked on the ready channel and
		// deliver their own frames. Replaying here as well would send each
		// of those frames twice.
		if s.onReconnect != nil && dialled {
			if err := s.onReconnect(ctx); err != nil {
				observability.Log().Warn("resubscribe after reconnect failed",
					observability.F("error", err.Error()))
			}
		}
		dialled = true

		err = s.readLoop(ctx, conn)
		s.mu.Lock()
		s.conn = nil
		s.ready = make(chan struct{})
		s.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "shutdown")
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		observability.Log().Warn("websocket connection lost",
			observability.F("error", err.Error()))
		sleep := backoffCfg.NextBackOff()
		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

func (s *socket) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}
		s.onMessage(data)
	}
}
