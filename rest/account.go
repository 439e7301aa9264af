package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/coachpo/chiliz/schema"
)

// Account returns the account snapshot with per-asset balances.
func (c *Client) Account(ctx context.Context) (schema.AccountInfo, error) {
	var out schema.AccountInfo
	err := c.signed(ctx, http.MethodGet, "account", NewParams(), &out)
	return out, err
}

// MyTradesQuery narrows an account trade listing. Zero values are omitted.
type MyTradesQuery struct {
	StartTime time.Time
	EndTime   time.Time
	FromID    int64
	ToID      int64
	Limit     int
}

// MyTrades returns the account's fills, newest first.
func (c *Client) MyTrades(ctx context.Context, query MyTradesQuery) ([]schema.Trade, error) {
	params := NewParams()
	if !query.StartTime.IsZero() {
		params.SetInt("startTime", query.StartTime.UnixMilli())
	}
	if !query.EndTime.IsZero() {
		params.SetInt("endTime", query.EndTime.UnixMilli())
	}
	if query.FromID != 0 {
		params.SetInt("fromId", query.FromID)
	}
	if query.ToID != 0 {
		params.SetInt("toId", query.ToID)
	}
	if err := setBoundedLimit(params, query.Limit, 1000); err != nil {
		return nil, err
	}
	var out []schema.Trade
	err := c.signed(ctx, http.MethodGet, "myTrades", params, &out)
	return out, err
}

// DepositsQuery narrows a deposit listing. Zero values are omitted.
type DepositsQuery struct {
	StartTime time.Time
	EndTime   time.Time
	FromID    int64
	Limit     int
}

// Deposits returns the account's deposit history, newest first.
func (c *Client) Deposits(ctx context.Context, query DepositsQuery) ([]schema.Deposit, error) {
	params := NewParams()
	if !query.StartTime.IsZero() {
		params.SetInt("startTime", query.StartTime.UnixMilli())
	}
	if !query.EndTime.IsZero() {
		params.SetInt("endTime", query.EndTime.UnixMilli())
	}
	if query.FromID != 0 {
		params.SetInt("fromId", query.FromID)
	}
	if err := setBoundedLimit(params, query.Limit, 1000); err != nil {
		return nil, err
	}
	var out []schema.Deposit
	err := c.signed(ctx, http.MethodGet, "depositOrders", params, &out)
	return out, err
}

// StartUserStream requests a listen key for the user data stream. The key
// expires after 60 minutes unless kept alive.
func (c *Client) StartUserStream(ctx context.Context) (string, error) {
	var out schema.ListenKey
	if err := c.signed(ctx, http.MethodPost, "userDataStream", NewParams(), &out); err != nil {
		return "", err
	}
	return out.ListenKey, nil
}

// KeepAliveUserStream extends the lifetime of a listen key.
func (c *Client) KeepAliveUserStream(ctx context.Context, listenKey string) error {
	params := NewParams().Set("listenKey", listenKey)
	return c.signed(ctx, http.MethodPut, "userDataStream", params, nil)
}

// CloseUserStream invalidates a listen key.
func (c *Client) CloseUserStream(ctx context.Context, listenKey string) error {
	params := NewParams().Set("listenKey", listenKey)
	return c.signed(ctx, http.MethodDelete, "userDataStream", params, nil)
}
