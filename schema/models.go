package schema

import (
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Int64 is a 64-bit identifier that arrives either bare or quoted on the wire.
type Int64 int64

// MarshalJSON encodes the identifier as a bare number.
func (v Int64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(v), 10)), nil
}

// UnmarshalJSON accepts both bare and quoted numbers.
func (v *Int64) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*v = Int64(n)
	return nil
}

// Timestamp is a point in time carried as epoch milliseconds on the wire.
type Timestamp struct {
	time.Time
}

// TimestampFrom wraps a time.Time truncated to millisecond precision.
func TimestampFrom(t time.Time) Timestamp {
	return Timestamp{time.UnixMilli(t.UnixMilli())}
}

// UnixMillis returns the epoch milliseconds of the timestamp.
func (t Timestamp) UnixMillis() int64 { return t.Time.UnixMilli() }

// MarshalJSON encodes epoch milliseconds.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(t.Time.UnixMilli(), 10)), nil
}

// UnmarshalJSON accepts epoch milliseconds as a number or a quoted number.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	t.Time = time.UnixMilli(ms)
	return nil
}

// ServerTime is the exchange clock reading.
type ServerTime struct {
	ServerTime Timestamp `json:"serverTime"`
}

// RateLimit describes one request budget enforced by the exchange.
type RateLimit struct {
	Type           RateLimitType     `json:"rateLimitType"`
	Interval       RateLimitInterval `json:"interval"`
	IntervalNumber int               `json:"intervalUnit"`
	Limit          int               `json:"limit"`
}

// Symbol is one tradable instrument with its constraints.
type Symbol struct {
	Symbol             string          `json:"symbol"`
	SymbolName         string          `json:"symbolName"`
	MarketID           Int64           `json:"exchangeId"`
	Status             SymbolStatus    `json:"status"`
	BaseAsset          string          `json:"baseAsset"`
	BaseAssetPrecision decimal.Decimal `json:"baseAssetPrecision"`
	QuoteAsset         string          `json:"quoteAsset"`
	QuotePrecision     decimal.Decimal `json:"quotePrecision"`
	IcebergAllowed     bool            `json:"icebergAllowed"`
	Filters            FilterSet       `json:"filters"`
}

// PriceFilter returns the symbol's price filter, if present.
func (s Symbol) PriceFilter() (PriceFilter, bool) { return s.Filters.Price() }

// LotSizeFilter returns the symbol's lot size filter, if present.
func (s Symbol) LotSizeFilter() (LotSizeFilter, bool) { return s.Filters.LotSize() }

// MinNotionalFilter returns the symbol's minimum notional filter, if present.
func (s Symbol) MinNotionalFilter() (MinNotionalFilter, bool) { return s.Filters.MinNotional() }

// ExchangeInfo is the broker metadata: server clock, rate limits and symbols.
type ExchangeInfo struct {
	Timezone   string      `json:"timezone"`
	ServerTime Timestamp   `json:"serverTime"`
	RateLimits []RateLimit `json:"rateLimits"`
	Symbols    []Symbol    `json:"symbols"`
}

// Symbol returns the symbol entry matching name case-insensitively.
func (e ExchangeInfo) Symbol(name string) (Symbol, bool) {
	for _, s := range e.Symbols {
		if strings.EqualFold(s.Symbol, name) || strings.EqualFold(s.SymbolName, name) {
			return s, true
		}
	}
	return Symbol{}, false
}

// BookEntry is one price level of the order book.
type BookEntry struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// UnmarshalJSON decodes the two-element [price, quantity] wire array.
func (e *BookEntry) UnmarshalJSON(data []byte) error {
	var raw [2]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Price, e.Quantity = raw[0], raw[1]
	return nil
}

// MarshalJSON encodes the two-element [price, quantity] wire array.
func (e BookEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]decimal.Decimal{e.Price, e.Quantity})
}

// OrderBook is a depth snapshot for one symbol.
type OrderBook struct {
	Time Timestamp   `json:"time"`
	Bids []BookEntry `json:"bids"`
	Asks []BookEntry `json:"asks"`
}

// Kline is one candlestick. The wire form is a positional array.
type Kline struct {
	OpenTime    Timestamp
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Volume      decimal.Decimal
	CloseTime   Timestamp
	QuoteVolume decimal.Decimal
	TradeCount  int64
}

// UnmarshalJSON decodes the positional candlestick array. Trailing elements
// beyond the trade count are ignored.
func (k *Kline) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	targets := []any{
		&k.OpenTime, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume,
		&k.CloseTime, &k.QuoteVolume, &k.TradeCount,
	}
	for i, dst := range targets {
		if i >= len(raw) {
			break
		}
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the positional candlestick array.
func (k Kline) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume,
		k.CloseTime, k.QuoteVolume, k.TradeCount,
	})
}

// RecentTrade is one public trade from the recent trades feed.
type RecentTrade struct {
	Price        decimal.Decimal `json:"price"`
	Time         Timestamp       `json:"time"`
	Quantity     decimal.Decimal `json:"qty"`
	IsBuyerMaker bool            `json:"isBuyerMaker"`
}

// Price is the latest price of one symbol.
type Price struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// BookPrice is the best bid and ask of one symbol.
type BookPrice struct {
	Symbol      string          `json:"symbol"`
	BidPrice    decimal.Decimal `json:"bidPrice"`
	BidQuantity decimal.Decimal `json:"bidQty"`
	AskPrice    decimal.Decimal `json:"askPrice"`
	AskQuantity decimal.Decimal `json:"askQty"`
}

// Ticker24h is the rolling 24 hour price statistics of one symbol.
type Ticker24h struct {
	Time         Timestamp       `json:"time"`
	Symbol       string          `json:"symbol"`
	BestBidPrice decimal.Decimal `json:"bestBidPrice"`
	BestAskPrice decimal.Decimal `json:"bestAskPrice"`
	LastPrice    decimal.Decimal `json:"lastPrice"`
	OpenPrice    decimal.Decimal `json:"openPrice"`
	HighPrice    decimal.Decimal `json:"highPrice"`
	LowPrice     decimal.Decimal `json:"lowPrice"`
	Volume       decimal.Decimal `json:"volume"`
	QuoteVolume  decimal.Decimal `json:"quoteVolume"`
}

// Balance is the funds held in one asset.
type Balance struct {
	Asset   string          `json:"asset"`
	AssetID string          `json:"assetId"`
	Total   decimal.Decimal `json:"total"`
	Free    decimal.Decimal `json:"free"`
	Locked  decimal.Decimal `json:"locked"`
}

// AccountInfo is the account snapshot with per-asset balances.
type AccountInfo struct {
	CanTrade    bool      `json:"canTrade"`
	CanWithdraw bool      `json:"canWithdraw"`
	CanDeposit  bool      `json:"canDeposit"`
	UpdateTime  Timestamp `json:"updateTime"`
	Balances    []Balance `json:"balances"`
}

// PlacedOrder is the acknowledgement returned when an order is accepted.
type PlacedOrder struct {
	Symbol           string          `json:"symbol"`
	OrderID          Int64           `json:"orderId"`
	ClientOrderID    string          `json:"clientOrderId"`
	TransactTime     Timestamp       `json:"transactTime"`
	Price            decimal.Decimal `json:"price"`
	OriginalQuantity decimal.Decimal `json:"origQty"`
	ExecutedQuantity decimal.Decimal `json:"executedQty"`
	Status           OrderStatus     `json:"status"`
	TimeInForce      TimeInForce     `json:"timeInForce"`
	Type             OrderType       `json:"type"`
	Side             OrderSide       `json:"side"`
}

// Order is the full state of an order as reported by order queries.
type Order struct {
	Symbol              string          `json:"symbol"`
	ExchangeID          Int64           `json:"exchangeId"`
	OrderID             Int64           `json:"orderId"`
	ClientOrderID       string          `json:"clientOrderId"`
	Price               decimal.Decimal `json:"price"`
	OriginalQuantity    decimal.Decimal `json:"origQty"`
	ExecutedQuantity    decimal.Decimal `json:"executedQty"`
	CumulativeQuoteQty  decimal.Decimal `json:"cummulativeQuoteQty"`
	AveragePrice        decimal.Decimal `json:"avgPrice"`
	Status              OrderStatus     `json:"status"`
	TimeInForce         TimeInForce     `json:"timeInForce"`
	Type                OrderType       `json:"type"`
	Side                OrderSide       `json:"side"`
	StopPrice           decimal.Decimal `json:"stopPrice"`
	IcebergQuantity     decimal.Decimal `json:"icebergQty"`
	Time                Timestamp       `json:"time"`
	UpdateTime          Timestamp       `json:"updateTime"`
	IsWorking           bool            `json:"isWorking"`
}

// CanceledOrder is the acknowledgement returned when an order is cancelled.
type CanceledOrder struct {
	Symbol        string      `json:"symbol"`
	ExchangeID    Int64       `json:"exchangeId"`
	ClientOrderID string      `json:"clientOrderId"`
	OrderID       Int64       `json:"orderId"`
	Status        OrderStatus `json:"status"`
}

// TradeFee is the fee charged for one account trade.
type TradeFee struct {
	FeeTokenID   string          `json:"feeTokenId"`
	FeeTokenName string          `json:"feeTokenName"`
	Fee          decimal.Decimal `json:"fee"`
}

// Trade is one fill belonging to the account.
type Trade struct {
	ID              Int64           `json:"id"`
	Symbol          string          `json:"symbol"`
	OrderID         Int64           `json:"orderId"`
	MatchOrderID    Int64           `json:"matchOrderId"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"qty"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commissionAsset"`
	Time            Timestamp       `json:"time"`
	IsBuyer         bool            `json:"isBuyer"`
	IsMaker         bool            `json:"isMaker"`
	Fee             TradeFee        `json:"fee"`
}

// Deposit is one inbound transfer into the account.
type Deposit struct {
	OrderID        Int64           `json:"orderId"`
	Token          string          `json:"token"`
	Address        string          `json:"address"`
	AddressTag     string          `json:"addressTag"`
	FromAddress    string          `json:"fromAddress"`
	FromAddressTag string          `json:"fromAddressTag"`
	Time           Timestamp       `json:"time"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// ListenKey grants access to the user data stream.
type ListenKey struct {
	ListenKey string `json:"listenKey"`
}
