package rest

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/coachpo/chiliz/errs"
	"github.com/coachpo/chiliz/schema"
)

var depthLimits = []int{5, 10, 20, 50, 100, 500, 1000}

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{2,32}$`)

func validateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return errs.Invalid("invalid symbol " + strconv.Quote(symbol))
	}
	return nil
}

// Ping checks connectivity and returns the round-trip latency.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	start := c.clock()
	if err := c.get(ctx, apiGeneral, "ping", nil, nil); err != nil {
		return 0, err
	}
	return c.clock().Sub(start), nil
}

// ServerTime returns the exchange clock reading.
func (c *Client) ServerTime(ctx context.Context) (schema.ServerTime, error) {
	var out schema.ServerTime
	err := c.get(ctx, apiGeneral, "time", nil, &out)
	return out, err
}

// BrokerInfo returns the broker metadata: rate limits and the symbol list
// with trading constraints.
func (c *Client) BrokerInfo(ctx context.Context) (schema.ExchangeInfo, error) {
	var out schema.ExchangeInfo
	err := c.get(ctx, apiGeneral, "brokerInfo", nil, &out)
	return out, err
}

// OrderBook returns a depth snapshot. A zero limit uses the server default;
// otherwise it must be one of 5, 10, 20, 50, 100, 500 or 1000.
func (c *Client) OrderBook(ctx context.Context, symbol string, limit int) (schema.OrderBook, error) {
	var out schema.OrderBook
	if err := validateSymbol(symbol); err != nil {
		return out, err
	}
	params := NewParams().Set("symbol", symbol)
	if limit != 0 {
		valid := false
		for _, l := range depthLimits {
			if limit == l {
				valid = true
				break
			}
		}
		if !valid {
			return out, errs.Invalid("depth limit must be one of 5, 10, 20, 50, 100, 500, 1000")
		}
		params.SetInt("limit", int64(limit))
	}
	err := c.get(ctx, apiQuote, "depth", params, &out)
	return out, err
}

// RecentTrades returns the latest public trades, newest last. A zero limit
// uses the server default; otherwise it must be within 1 to 1000.
func (c *Client) RecentTrades(ctx context.Context, symbol string, limit int) ([]schema.RecentTrade, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	params := NewParams().Set("symbol", symbol)
	if err := setBoundedLimit(params, limit, 1000); err != nil {
		return nil, err
	}
	var out []schema.RecentTrade
	err := c.get(ctx, apiQuote, "trades", params, &out)
	return out, err
}

// KlinesQuery narrows a candlestick request. Zero values are omitted.
type KlinesQuery struct {
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// Klines returns candlesticks for symbol at the given interval, oldest
// first. The limit must be within 1 to 2000 when set.
func (c *Client) Klines(ctx context.Context, symbol string, interval schema.KlineInterval, query KlinesQuery) ([]schema.Kline, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	if interval.String() == "" {
		return nil, errs.Invalid("unrecognised kline interval")
	}
	params := NewParams().
		Set("symbol", symbol).
		Set("interval", interval.String())
	if !query.StartTime.IsZero() {
		params.SetInt("startTime", query.StartTime.UnixMilli())
	}
	if !query.EndTime.IsZero() {
		params.SetInt("endTime", query.EndTime.UnixMilli())
	}
	if err := setBoundedLimit(params, query.Limit, 2000); err != nil {
		return nil, err
	}
	var out []schema.Kline
	err := c.get(ctx, apiQuote, "klines", params, &out)
	return out, err
}

// Ticker24h returns the rolling 24 hour statistics of one symbol.
func (c *Client) Ticker24h(ctx context.Context, symbol string) (schema.Ticker24h, error) {
	var out schema.Ticker24h
	if err := validateSymbol(symbol); err != nil {
		return out, err
	}
	err := c.get(ctx, apiQuote, "ticker/24hr", NewParams().Set("symbol", symbol), &out)
	return out, err
}

// Tickers24h returns the rolling 24 hour statistics of every symbol.
func (c *Client) Tickers24h(ctx context.Context) ([]schema.Ticker24h, error) {
	var out []schema.Ticker24h
	err := c.get(ctx, apiQuote, "ticker/24hr", nil, &out)
	return out, err
}

// Price returns the latest price of one symbol.
func (c *Client) Price(ctx context.Context, symbol string) (schema.Price, error) {
	var out schema.Price
	if err := validateSymbol(symbol); err != nil {
		return out, err
	}
	err := c.get(ctx, apiQuote, "ticker/price", NewParams().Set("symbol", symbol), &out)
	return out, err
}

// Prices returns the latest price of every symbol.
func (c *Client) Prices(ctx context.Context) ([]schema.Price, error) {
	var out []schema.Price
	err := c.get(ctx, apiQuote, "ticker/price", nil, &out)
	return out, err
}

// BookPrice returns the best bid and ask of one symbol.
func (c *Client) BookPrice(ctx context.Context, symbol string) (schema.BookPrice, error) {
	var out schema.BookPrice
	if err := validateSymbol(symbol); err != nil {
		return out, err
	}
	err := c.get(ctx, apiQuote, "ticker/bookTicker", NewParams().Set("symbol", symbol), &out)
	return out, err
}

// BookPrices returns the best bid and ask of every symbol.
func (c *Client) BookPrices(ctx context.Context) ([]schema.BookPrice, error) {
	var out []schema.BookPrice
	err := c.get(ctx, apiQuote, "ticker/bookTicker", nil, &out)
	return out, err
}

func setBoundedLimit(params *Params, limit, max int) error {
	if limit == 0 {
		return nil
	}
	if limit < 1 || limit > max {
		return errs.Invalid("limit must be within 1 to " + strconv.Itoa(max))
	}
	params.SetInt("limit", int64(limit))
	return nil
}
