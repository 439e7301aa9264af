// Package schema defines the wire types exchanged with the Chiliz REST and websocket APIs.
package schema

import (
	json "github.com/goccy/go-json"

	"github.com/coachpo/chiliz/errs"
)

// codec maps an enum onto its wire strings through an explicit ordered table.
// REST and websocket payloads share the same table per enum so values
// round-trip regardless of which surface produced them.
type codec[T comparable] struct {
	name  string
	pairs []pair[T]
}

type pair[T comparable] struct {
	value T
	wire  string
}

func (c codec[T]) encode(v T) (string, bool) {
	for _, p := range c.pairs {
		if p.value == v {
			return p.wire, true
		}
	}
	return "", false
}

func (c codec[T]) decode(wire string) (T, error) {
	for _, p := range c.pairs {
		if p.wire == wire {
			return p.value, nil
		}
	}
	var zero T
	return zero, errs.New(errs.CodeUnknownEnum, errs.WithMessage("unknown "+c.name+" value"), errs.WithRawMessage(wire))
}

func (c codec[T]) marshal(v T) ([]byte, error) {
	wire, ok := c.encode(v)
	if !ok {
		return nil, errs.New(errs.CodeUnknownEnum, errs.WithMessage("unmapped "+c.name+" value"))
	}
	return json.Marshal(wire)
}

func (c codec[T]) unmarshal(data []byte, out *T) error {
	var wire string
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	v, err := c.decode(wire)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// OrderSide is the side of an order.
type OrderSide int

const (
	// Buy side.
	Buy OrderSide = iota
	// Sell side.
	Sell
)

var orderSideCodec = codec[OrderSide]{name: "order side", pairs: []pair[OrderSide]{
	{Buy, "BUY"},
	{Sell, "SELL"},
}}

// OrderType is the execution type of an order.
type OrderType int

const (
	// Limit orders rest in the book at a specific price.
	Limit OrderType = iota
	// Market orders execute at the best available price.
	Market
	// LimitMaker orders are rejected unless they would rest in the book.
	LimitMaker
	// StopLoss orders are unavailable on this exchange variant.
	StopLoss
	// StopLossLimit orders are unavailable on this exchange variant.
	StopLossLimit
	// TakeProfit orders are unavailable on this exchange variant.
	TakeProfit
	// TakeProfitLimit orders are unavailable on this exchange variant.
	TakeProfitLimit
	// MarketOfPayout orders are unavailable on this exchange variant.
	MarketOfPayout
)

var orderTypeCodec = codec[OrderType]{name: "order type", pairs: []pair[OrderType]{
	{Limit, "LIMIT"},
	{Market, "MARKET"},
	{LimitMaker, "LIMIT_MAKER"},
	{StopLoss, "STOP_LOSS"},
	{StopLossLimit, "STOP_LOSS_LIMIT"},
	{TakeProfit, "TAKE_PROFIT"},
	{TakeProfitLimit, "TAKE_PROFIT_LIMIT"},
	{MarketOfPayout, "MARKET_OF_PAYOUT"},
}}

// OrderStatus is the lifecycle state of an order.
type OrderStatus int

const (
	// OrderNew marks a freshly accepted order.
	OrderNew OrderStatus = iota
	// OrderPartiallyFilled marks an order with quantity left to fill.
	OrderPartiallyFilled
	// OrderFilled marks a completed order.
	OrderFilled
	// OrderCanceled marks a cancelled order.
	OrderCanceled
	// OrderPendingCancel marks an order in the process of being cancelled.
	OrderPendingCancel
	// OrderRejected marks a rejected order.
	OrderRejected
)

var orderStatusCodec = codec[OrderStatus]{name: "order status", pairs: []pair[OrderStatus]{
	{OrderNew, "NEW"},
	{OrderPartiallyFilled, "PARTIALLY_FILLED"},
	{OrderFilled, "FILLED"},
	{OrderCanceled, "CANCELED"},
	{OrderPendingCancel, "PENDING_CANCEL"},
	{OrderRejected, "REJECTED"},
}}

// TimeInForce is how long an order stays active.
type TimeInForce int

const (
	// GoodTillCancel keeps the order active until filled or cancelled.
	GoodTillCancel TimeInForce = iota
	// ImmediateOrCancel fills what it can on placement and cancels the rest.
	ImmediateOrCancel
	// FillOrKill fills entirely on placement or cancels.
	FillOrKill
)

var timeInForceCodec = codec[TimeInForce]{name: "time in force", pairs: []pair[TimeInForce]{
	{GoodTillCancel, "GTC"},
	{ImmediateOrCancel, "IOC"},
	{FillOrKill, "FOK"},
}}

// KlineInterval is the timespan of one candlestick.
type KlineInterval int

const (
	// OneMinute interval.
	OneMinute KlineInterval = iota
	// ThreeMinutes interval.
	ThreeMinutes
	// FiveMinutes interval.
	FiveMinutes
	// FifteenMinutes interval.
	FifteenMinutes
	// ThirtyMinutes interval.
	ThirtyMinutes
	// OneHour interval.
	OneHour
	// TwoHours interval.
	TwoHours
	// FourHours interval.
	FourHours
	// SixHours interval.
	SixHours
	// EightHours interval.
	EightHours
	// TwelveHours interval.
	TwelveHours
	// OneDay interval.
	OneDay
	// ThreeDays interval.
	ThreeDays
	// OneWeek interval.
	OneWeek
	// OneMonth interval.
	OneMonth
)

var klineIntervalCodec = codec[KlineInterval]{name: "kline interval", pairs: []pair[KlineInterval]{
	{OneMinute, "1m"},
	{ThreeMinutes, "3m"},
	{FiveMinutes, "5m"},
	{FifteenMinutes, "15m"},
	{ThirtyMinutes, "30m"},
	{OneHour, "1h"},
	{TwoHours, "2h"},
	{FourHours, "4h"},
	{SixHours, "6h"},
	{EightHours, "8h"},
	{TwelveHours, "12h"},
	{OneDay, "1d"},
	{ThreeDays, "3d"},
	{OneWeek, "1w"},
	{OneMonth, "1M"},
}}

// SymbolStatus is the trading state of a symbol.
type SymbolStatus int

const (
	// SymbolTrading means the symbol is open for trading.
	SymbolTrading SymbolStatus = iota
	// SymbolHalt means trading is halted.
	SymbolHalt
	// SymbolBreak means the symbol is in a scheduled break.
	SymbolBreak
)

var symbolStatusCodec = codec[SymbolStatus]{name: "symbol status", pairs: []pair[SymbolStatus]{
	{SymbolTrading, "TRADING"},
	{SymbolHalt, "HALT"},
	{SymbolBreak, "BREAK"},
}}

// SymbolFilterType discriminates the symbol filter variants.
type SymbolFilterType int

const (
	// FilterPrice bounds order prices and their tick granularity.
	FilterPrice SymbolFilterType = iota
	// FilterLotSize bounds order quantities and their step granularity.
	FilterLotSize
	// FilterMinNotional sets the minimum order value.
	FilterMinNotional
	// FilterMaxOrders caps open orders per symbol.
	FilterMaxOrders
	// FilterMaxAlgoOrders caps open algorithmic orders per symbol.
	FilterMaxAlgoOrders
	// FilterIcebergParts caps the parts of an iceberg order.
	FilterIcebergParts
)

var symbolFilterTypeCodec = codec[SymbolFilterType]{name: "symbol filter type", pairs: []pair[SymbolFilterType]{
	{FilterPrice, "PRICE_FILTER"},
	{FilterLotSize, "LOT_SIZE"},
	{FilterMinNotional, "MIN_NOTIONAL"},
	{FilterMaxOrders, "MAX_NUM_ORDERS"},
	{FilterMaxAlgoOrders, "MAX_NUM_ALGO_ORDERS"},
	{FilterIcebergParts, "ICEBERG_PARTS"},
}}

// RateLimitType is the quantity a rate limit constrains.
type RateLimitType int

const (
	// RateLimitRequestWeight limits aggregate request weight.
	RateLimitRequestWeight RateLimitType = iota
	// RateLimitOrders limits order placement.
	RateLimitOrders
	// RateLimitRawRequests limits raw request count.
	RateLimitRawRequests
)

var rateLimitTypeCodec = codec[RateLimitType]{name: "rate limit type", pairs: []pair[RateLimitType]{
	{RateLimitRequestWeight, "REQUEST_WEIGHT"},
	{RateLimitOrders, "ORDERS"},
	{RateLimitRawRequests, "RAW_REQUEST"},
}}

// RateLimitInterval is the unit a rate limit is measured over.
type RateLimitInterval int

const (
	// IntervalSecond measures per second.
	IntervalSecond RateLimitInterval = iota
	// IntervalMinute measures per minute.
	IntervalMinute
	// IntervalDay measures per day.
	IntervalDay
)

var rateLimitIntervalCodec = codec[RateLimitInterval]{name: "rate limit interval", pairs: []pair[RateLimitInterval]{
	{IntervalSecond, "SECOND"},
	{IntervalMinute, "MINUTE"},
	{IntervalDay, "DAY"},
}}

// String returns the wire representation, or the empty string for unmapped values.
func (s OrderSide) String() string { w, _ := orderSideCodec.encode(s); return w }

// ParseOrderSide decodes a wire string into an OrderSide.
func ParseOrderSide(wire string) (OrderSide, error) { return orderSideCodec.decode(wire) }

// MarshalJSON encodes the value through its codec table.
func (s OrderSide) MarshalJSON() ([]byte, error) { return orderSideCodec.marshal(s) }

// UnmarshalJSON decodes the value through its codec table.
func (s *OrderSide) UnmarshalJSON(data []byte) error { return orderSideCodec.unmarshal(data, s) }

// String returns the wire representation, or the empty string for unmapped values.
func (t OrderType) String() string { w, _ := orderTypeCodec.encode(t); return w }

// ParseOrderType decodes a wire string into an OrderType.
func ParseOrderType(wire string) (OrderType, error) { return orderTypeCodec.decode(wire) }

// MarshalJSON encodes the value through its codec table.
func (t OrderType) MarshalJSON() ([]byte, error) { return orderTypeCodec.marshal(t) }

// UnmarshalJSON decodes the value through its codec table.
func (t *OrderType) UnmarshalJSON(data []byte) error { return orderTypeCodec.unmarshal(data, t) }

// String returns the wire representation, or the empty string for unmapped values.
func (s OrderStatus) String() string { w, _ := orderStatusCodec.encode(s); return w }

// ParseOrderStatus decodes a wire string into an OrderStatus.
func ParseOrderStatus(wire string) (OrderStatus, error) { return orderStatusCodec.decode(wire) }

// MarshalJSON encodes the value through its codec table.
func (s OrderStatus) MarshalJSON() ([]byte, error) { return orderStatusCodec.marshal(s) }

// UnmarshalJSON decodes the value through its codec table.
func (s *OrderStatus) UnmarshalJSON(data []byte) error { return orderStatusCodec.unmarshal(data, s) }

// String returns the wire representation, or the empty string for unmapped values.
func (t TimeInForce) String() string { w, _ := timeInForceCodec.encode(t); return w }

// ParseTimeInForce decodes a wire string into a TimeInForce.
func ParseTimeInForce(wire string) (TimeInForce, error) { return timeInForceCodec.decode(wire) }

// MarshalJSON encodes the value through its codec table.
func (t TimeInForce) MarshalJSON() ([]byte, error) { return timeInForceCodec.marshal(t) }

// UnmarshalJSON decodes the value through its codec table.
func (t *TimeInForce) UnmarshalJSON(data []byte) error { return timeInForceCodec.unmarshal(data, t) }

// String returns the wire representation, or the empty string for unmapped values.
func (i KlineInterval) String() string { w, _ := klineIntervalCodec.encode(i); return w }

// ParseKlineInterval decodes a wire string into a KlineInterval.
func ParseKlineInterval(wire string) (KlineInterval, error) { return klineIntervalCodec.decode(wire) }

// MarshalJSON encodes the value through its codec table.
func (i KlineInterval) MarshalJSON() ([]byte, error) { return klineIntervalCodec.marshal(i) }

// UnmarshalJSON decodes the value through its codec table.
func (i *KlineInterval) UnmarshalJSON(data []byte) error { return klineIntervalCodec.unmarshal(data, i) }

// String returns the wire representation, or the empty string for unmapped values.
func (s SymbolStatus) String() string { w, _ := symbolStatusCodec.encode(s); return w }

// ParseSymbolStatus decodes a wire string into a SymbolStatus.
func ParseSymbolStatus(wire string) (SymbolStatus, error) { return symbolStatusCodec.decode(wire) }

// MarshalJSON encodes the value through its codec table.
func (s SymbolStatus) MarshalJSON() ([]byte, error) { return symbolStatusCodec.marshal(s) }

// UnmarshalJSON decodes the value through its codec table.
func (s *SymbolStatus) UnmarshalJSON(data []byte) error { return symbolStatusCodec.unmarshal(data, s) }

// String returns the wire representation, or the empty string for unmapped values.
func (t SymbolFilterType) String() string { w, _ := symbolFilterTypeCodec.encode(t); return w }

// ParseSymbolFilterType decodes a wire string into a SymbolFilterType.
func ParseSymbolFilterType(wire string) (SymbolFilterType, error) {
	return symbolFilterTypeCodec.decode(wire)
}

// MarshalJSON encodes the value through its codec table.
func (t SymbolFilterType) MarshalJSON() ([]byte, error) { return symbolFilterTypeCodec.marshal(t) }

// UnmarshalJSON decodes the value through its codec table.
func (t *SymbolFilterType) UnmarshalJSON(data []byte) error {
	return symbolFilterTypeCodec.unmarshal(data, t)
}

// String returns the wire representation, or the empty string for unmapped values.
func (t RateLimitType) String() string { w, _ := rateLimitTypeCodec.encode(t); return w }

// ParseRateLimitType decodes a wire string into a RateLimitType.
func ParseRateLimitType(wire string) (RateLimitType, error) { return rateLimitTypeCodec.decode(wire) }

// MarshalJSON encodes the value through its codec table.
func (t RateLimitType) MarshalJSON() ([]byte, error) { return rateLimitTypeCodec.marshal(t) }

// UnmarshalJSON decodes the value through its codec table.
func (t *RateLimitType) UnmarshalJSON(data []byte) error { return rateLimitTypeCodec.unmarshal(data, t) }

// String returns the wire representation, or the empty string for unmapped values.
func (i RateLimitInterval) String() string { w, _ := rateLimitIntervalCodec.encode(i); return w }

// ParseRateLimitInterval decodes a wire string into a RateLimitInterval.
func ParseRateLimitInterval(wire string) (RateLimitInterval, error) {
	return rateLimitIntervalCodec.decode(wire)
}

// MarshalJSON encodes the value through its codec table.
func (i RateLimitInterval) MarshalJSON() ([]byte, error) { return rateLimitIntervalCodec.marshal(i) }

// UnmarshalJSON decodes the value through its codec table.
func (i *RateLimitInterval) UnmarshalJSON(data []byte) error {
	return rateLimitIntervalCodec.unmarshal(data, i)
}
