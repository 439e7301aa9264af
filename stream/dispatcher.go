// Package stream implements the typed client for the exchange websocket API.
package stream

import (
	"sync"

	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/panics"

	"github.com/coachpo/chiliz/internal/observability"
)

// SubscriptionState tracks a subscription through its lifecycle.
type SubscriptionState int

const (
	// StatePending means the subscribe frame was sent but no data arrived yet.
	StatePending SubscriptionState = iota
	// StateActive means at least one matching message was delivered.
	StateActive
	// StateClosed means the subscription was cancelled.
	StateClosed
)

type handlerFunc func(payload []byte)

type subscription struct {
	id      string
	key     string
	state   SubscriptionState
	handler handlerFunc
}

// dispatcher routes incoming frames to subscriptions by topic key. The key
// is the frame's topic, suffixed with "_<klineType>" when the frame carries
// one, and matches by exact string equality.
type dispatcher struct {
	mu   sync.Mutex
	subs map[string][]*subscription
}

func newDispatcher() *dispatcher {
	return &dispatcher{subs: make(map[string][]*subscription)}
}

func (d *dispatcher) add(sub *subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs[sub.key] = append(d.subs[sub.key], sub)
}

func (d *dispatcher) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, subs := range d.subs {
		kept := subs[:0]
		for _, sub := range subs {
			if sub.id == id {
				sub.state = StateClosed
				continue
			}
			kept = append(kept, sub)
		}
		if len(kept) == 0 {
			delete(d.subs, key)
		} else {
			d.subs[key] = kept
		}
	}
}

func (d *dispatcher) state(id string) SubscriptionState {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, subs := range d.subs {
		for _, sub := range subs {
			if sub.id == id {
				return sub.state
			}
		}
	}
	return StateClosed
}

// frameHeader is the routing envelope shared by every data frame.
type frameHeader struct {
	Topic  string `json:"topic"`
	Params struct {
		KlineType string `json:"klineType"`
	} `json:"params"`
	Pong *int64 `json:"pong"`
	Ping *int64 `json:"ping"`
}

// topicKey builds the routing key for a topic and optional kline type.
func topicKey(topic, klineType string) string {
	if klineType == "" {
		return topic
	}
	return topic + "_" + klineType
}

// Route delivers one raw frame to every subscription registered under its
// topic key. Each matching handler runs exactly once, synchronously, and a
// panicking handler does not take the read loop down. Heartbeat frames are
// consumed without dispatching.
func (d *dispatcher) Route(payload []byte) {
	var header frameHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		observability.Log().Warn("undecodable stream frame",
			observability.F("error", err.Error()))
		return
	}
	if header.Pong != nil || header.Ping != nil {
		return
	}
	if header.Topic == "" {
		return
	}
	key := topicKey(header.Topic, header.Params.KlineType)

	d.mu.Lock()
	subs := make([]*subscription, len(d.subs[key]))
	copy(subs, d.subs[key])
	for _, sub := range subs {
		if sub.state == StatePending {
			sub.state = StateActive
		}
	}
	d.mu.Unlock()

	for _, sub := range subs {
		var pc panics.Catcher
		pc.Try(func() { sub.handler(payload) })
		if recovered := pc.Recovered(); recovered != nil {
			observability.Log().Error("subscription handler panicked",
				observability.F("topic", key),
				observability.F("panic", recovered.String()))
		}
	}
}
