package schema

import "github.com/shopspring/decimal"

// SubscribeParams carries the per-topic options of a websocket request.
type SubscribeParams struct {
	Binary    bool   `json:"binary"`
	KlineType string `json:"klineType,omitempty"`
}

// SubscribeRequest is the frame sent to subscribe or unsubscribe a topic.
// Symbol holds one or more symbols joined by commas.
type SubscribeRequest struct {
	Symbol string          `json:"symbol"`
	Topic  string          `json:"topic"`
	Event  string          `json:"event"`
	Params SubscribeParams `json:"params"`
}

// KlineTick is one candlestick carried by the kline stream.
type KlineTick struct {
	OpenTime Timestamp       `json:"t"`
	Symbol   string          `json:"s"`
	Close    decimal.Decimal `json:"c"`
	High     decimal.Decimal `json:"h"`
	Low      decimal.Decimal `json:"l"`
	Open     decimal.Decimal `json:"o"`
	Volume   decimal.Decimal `json:"v"`
}

// KlineUpdate is one kline stream message. First marks the snapshot sent
// right after subscribing.
type KlineUpdate struct {
	Symbol string          `json:"symbol"`
	Topic  string          `json:"topic"`
	Params SubscribeParams `json:"params"`
	Data   []KlineTick     `json:"data"`
	First  bool            `json:"f"`
	Shared bool            `json:"shared"`
}

// TickerTick is one statistics entry carried by the realtimes stream.
type TickerTick struct {
	OpenTime    Timestamp       `json:"t"`
	Symbol      string          `json:"s"`
	Close       decimal.Decimal `json:"c"`
	High        decimal.Decimal `json:"h"`
	Low         decimal.Decimal `json:"l"`
	Open        decimal.Decimal `json:"o"`
	Volume      decimal.Decimal `json:"v"`
	QuoteVolume decimal.Decimal `json:"qv"`
}

// TickerUpdate is one realtimes stream message.
type TickerUpdate struct {
	Symbol string          `json:"symbol"`
	Topic  string          `json:"topic"`
	Params SubscribeParams `json:"params"`
	Data   []TickerTick    `json:"data"`
	First  bool            `json:"f"`
	Shared bool            `json:"shared"`
}
