package stream

import (
	"context"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/coachpo/chiliz/config"
	"github.com/coachpo/chiliz/errs"
	"github.com/coachpo/chiliz/internal/observability"
	"github.com/coachpo/chiliz/schema"
)

// Client subscribes to the exchange's public market data streams. One
// websocket connection carries every subscription; it is dialled lazily on
// the first subscribe and replayed after reconnects.
type Client struct {
	opts config.Options
	disp *dispatcher

	mu      sync.Mutex
	conn    Conn
	sock    *socket
	started bool
	frames  map[string][]byte
}

// Option customises a Client.
type Option func(*Client)

// WithConn substitutes the websocket connection, primarily for tests. The
// client then never dials on its own.
func WithConn(conn Conn) Option {
	return func(c *Client) { c.conn = conn }
}

// New constructs a stream client from the given options.
func New(opts config.Options, options ...Option) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		opts:   opts,
		disp:   newDispatcher(),
		frames: make(map[string][]byte),
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// Subscription is a live stream registration. Close it through the client's
// Unsubscribe.
type Subscription struct {
	ID    string
	Topic string
}

// SubscribeKlines streams candlestick updates for the given symbols at one
// interval. The handler runs synchronously on the read loop; a slow handler
// delays subsequent messages.
func (c *Client) SubscribeKlines(ctx context.Context, symbols []string, interval schema.KlineInterval, handler func(schema.KlineUpdate)) (*Subscription, error) {
	if interval.String() == "" {
		return nil, errs.Invalid("unrecognised kline interval")
	}
	req := schema.SubscribeRequest{
		Symbol: joinSymbols(symbols),
		Topic:  "kline_" + interval.String(),
		Event:  "sub",
		Params: schema.SubscribeParams{Binary: false, KlineType: interval.String()},
	}
	return c.subscribe(ctx, req, req.Topic, func(payload []byte) {
		var update schema.KlineUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			observability.Log().Warn("undecodable kline update",
				observability.F("error", err.Error()))
			return
		}
		handler(update)
	})
}

// SubscribeTickers streams rolling 24 hour statistics for the given symbols.
func (c *Client) SubscribeTickers(ctx context.Context, symbols []string, handler func(schema.TickerUpdate)) (*Subscription, error) {
	req := schema.SubscribeRequest{
		Symbol: joinSymbols(symbols),
		Topic:  "realtimes",
		Event:  "sub",
		Params: schema.SubscribeParams{Binary: false},
	}
	return c.subscribe(ctx, req, req.Topic, func(payload []byte) {
		var update schema.TickerUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			observability.Log().Warn("undecodable ticker update",
				observability.F("error", err.Error()))
			return
		}
		handler(update)
	})
}

// SubscribeUserData is not offered by this exchange variant; account changes
// must be polled over REST.
func (c *Client) SubscribeUserData(ctx context.Context, listenKey string, handler func([]byte)) (*Subscription, error) {
	return nil, errs.NotSupported("private topics are not available on the public quote stream")
}

func joinSymbols(symbols []string) string {
	trimmed := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.TrimSpace(s); s != "" {
			trimmed = append(trimmed, s)
		}
	}
	return strings.Join(trimmed, ",")
}

func (c *Client) subscribe(ctx context.Context, req schema.SubscribeRequest, key string, handler handlerFunc) (*Subscription, error) {
	if req.Symbol == "" {
		return nil, errs.Invalid("at least one symbol is required")
	}
	frame, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Invalid("encode subscribe frame: " + err.Error())
	}

	conn, err := c.ensureConn(ctx)
	if err != nil {
		return nil, err
	}

	sub := &subscription{
		id:      uuid.NewString(),
		key:     key,
		state:   StatePending,
		handler: handler,
	}
	c.disp.add(sub)
	c.mu.Lock()
	c.frames[sub.id] = frame
	c.mu.Unlock()

	if err := conn.Send(ctx, frame); err != nil {
		c.disp.remove(sub.id)
		c.mu.Lock()
		delete(c.frames, sub.id)
		c.mu.Unlock()
		return nil, err
	}
	return &Subscription{ID: sub.id, Topic: key}, nil
}

// Unsubscribe cancels a subscription. Frames already in flight may still be
// delivered to other subscriptions on the same topic.
func (c *Client) Unsubscribe(ctx context.Context, sub *Subscription) error {
	if sub == nil {
		return errs.Invalid("nil subscription")
	}
	c.disp.remove(sub.ID)
	c.mu.Lock()
	frame := c.frames[sub.ID]
	delete(c.frames, sub.ID)
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || frame == nil {
		return nil
	}

	var req schema.SubscribeRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		return nil
	}
	req.Event = "cancel"
	cancelFrame, err := json.Marshal(req)
	if err != nil {
		return nil
	}
	return conn.Send(ctx, cancelFrame)
}

// State reports the lifecycle state of a subscription.
func (c *Client) State(sub *Subscription) SubscriptionState {
	if sub == nil {
		return StateClosed
	}
	return c.disp.state(sub.ID)
}

// HandleMessage feeds one raw frame into the dispatcher. The internal read
// loop calls it for every text frame; tests may call it directly.
func (c *Client) HandleMessage(payload []byte) {
	c.disp.Route(payload)
}

// Close tears down the websocket connection and every subscription.
func (c *Client) Close() {
	c.mu.Lock()
	sock := c.sock
	c.sock = nil
	c.started = false
	c.conn = nil
	ids := make([]string, 0, len(c.frames))
	for id := range c.frames {
		ids = append(ids, id)
	}
	c.frames = make(map[string][]byte)
	c.mu.Unlock()
	for _, id := range ids {
		c.disp.remove(id)
	}
	if sock != nil {
		sock.Close()
	}
}

func (c *Client) ensureConn(ctx context.Context) (Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	if !c.started {
		sock := newSocket(c.opts.WebsocketURL, c.HandleMessage, c.resubscribe)
		sock.Start(context.WithoutCancel(ctx))
		c.sock = sock
		c.conn = sock
		c.started = true
	}
	return c.conn, nil
}

// resubscribe replays every live subscribe frame after a reconnect.
func (c *Client) resubscribe(ctx context.Context) error {
	c.mu.Lock()
	frames := make([][]byte, 0, len(c.frames))
	for _, frame := range c.frames {
		frames = append(frames, frame)
	}
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	for _, frame := range frames {
		if err := conn.Send(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}
