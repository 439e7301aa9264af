package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coachpo/chiliz/errs"
	"github.com/coachpo/chiliz/schema"
)

// OrderRequest describes an order to place. Quantity is required; Price is
// required for limit orders. A zero TimeInForce means good-till-cancel.
// ClientOrderID left empty gets a generated id.
type OrderRequest struct {
	Symbol          string
	Side            schema.OrderSide
	Type            schema.OrderType
	TimeInForce     schema.TimeInForce
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	ClientOrderID   string
	StopPrice       decimal.Decimal
	IcebergQuantity decimal.Decimal
	AssetType       string
}

// PlaceOrder submits an order. Quantity and price pass trade rule validation
// first and may be adjusted in auto-comply mode.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (schema.PlacedOrder, error) {
	return c.placeOrder(ctx, "order", req)
}

// PlaceTestOrder validates and signs an order without sending it to the
// matching engine.
func (c *Client) PlaceTestOrder(ctx context.Context, req OrderRequest) (schema.PlacedOrder, error) {
	return c.placeOrder(ctx, "order/test", req)
}

func (c *Client) placeOrder(ctx context.Context, endpoint string, req OrderRequest) (schema.PlacedOrder, error) {
	var out schema.PlacedOrder
	if err := validateSymbol(req.Symbol); err != nil {
		return out, err
	}
	if req.Quantity.IsZero() {
		return out, errs.Invalid("quantity is required")
	}
	if req.Type == schema.Limit && req.Price.IsZero() {
		return out, errs.Invalid("limit orders require a price")
	}

	quantity := req.Quantity
	price := req.Price
	var pricePtr *decimal.Decimal
	if !price.IsZero() {
		pricePtr = &price
	}
	if err := c.rules.apply(ctx, req.Symbol, &quantity, pricePtr); err != nil {
		return out, err
	}

	clientOrderID := req.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.NewString()
	}

	params := NewParams().
		Set("symbol", req.Symbol).
		Set("side", req.Side.String()).
		Set("type", req.Type.String()).
		Set("quantity", quantity.String())
	if pricePtr != nil {
		params.Set("price", pricePtr.String())
	}
	if req.TimeInForce.String() != "" {
		params.Set("timeInForce", req.TimeInForce.String())
	}
	params.Set("newClientOrderId", clientOrderID)
	if !req.StopPrice.IsZero() {
		params.Set("stopPrice", req.StopPrice.String())
	}
	if !req.IcebergQuantity.IsZero() {
		params.Set("icebergQty", req.IcebergQuantity.String())
	}
	params.SetOptional("assetType", req.AssetType)

	err := c.signed(ctx, http.MethodPost, endpoint, params, &out)
	return out, err
}

// OrderRef identifies an order by exchange id or client id. Exactly one of
// the two must be set.
type OrderRef struct {
	OrderID       int64
	ClientOrderID string
}

func (r OrderRef) validate() error {
	if (r.OrderID == 0) == (r.ClientOrderID == "") {
		return errs.Invalid("exactly one of order id and client order id must be set")
	}
	return nil
}

func (r OrderRef) fill(params *Params, clientKey string) {
	if r.OrderID != 0 {
		params.SetInt("orderId", r.OrderID)
	}
	params.SetOptional(clientKey, r.ClientOrderID)
}

// GetOrder returns the current state of one order.
func (c *Client) GetOrder(ctx context.Context, ref OrderRef) (schema.Order, error) {
	var out schema.Order
	if err := ref.validate(); err != nil {
		return out, err
	}
	params := NewParams()
	ref.fill(params, "origClientOrderId")
	err := c.signed(ctx, http.MethodGet, "order", params, &out)
	return out, err
}

// CancelOrder cancels one open order.
func (c *Client) CancelOrder(ctx context.Context, ref OrderRef) (schema.CanceledOrder, error) {
	var out schema.CanceledOrder
	if err := ref.validate(); err != nil {
		return out, err
	}
	params := NewParams()
	ref.fill(params, "clientOrderId")
	err := c.signed(ctx, http.MethodDelete, "order", params, &out)
	return out, err
}

// OpenOrdersQuery narrows an open order listing. Zero values are omitted.
type OpenOrdersQuery struct {
	Symbol  string
	OrderID int64
	Limit   int
}

// OpenOrders returns currently open orders, optionally narrowed to a symbol
// or to ids above OrderID.
func (c *Client) OpenOrders(ctx context.Context, query OpenOrdersQuery) ([]schema.Order, error) {
	params := NewParams().SetOptional("symbol", query.Symbol)
	if query.OrderID != 0 {
		params.SetInt("orderId", query.OrderID)
	}
	if err := setBoundedLimit(params, query.Limit, 1000); err != nil {
		return nil, err
	}
	var out []schema.Order
	err := c.signed(ctx, http.MethodGet, "openOrders", params, &out)
	return out, err
}

// HistoryOrdersQuery narrows a historic order listing. Zero values are
// omitted.
type HistoryOrdersQuery struct {
	Symbol    string
	OrderID   int64
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// HistoryOrders returns completed orders, newest first.
func (c *Client) HistoryOrders(ctx context.Context, query HistoryOrdersQuery) ([]schema.Order, error) {
	params := NewParams().SetOptional("symbol", query.Symbol)
	if query.OrderID != 0 {
		params.SetInt("orderId", query.OrderID)
	}
	if !query.StartTime.IsZero() {
		params.SetInt("startTime", query.StartTime.UnixMilli())
	}
	if !query.EndTime.IsZero() {
		params.SetInt("endTime", query.EndTime.UnixMilli())
	}
	if err := setBoundedLimit(params, query.Limit, 1000); err != nil {
		return nil, err
	}
	var out []schema.Order
	err := c.signed(ctx, http.MethodGet, "historyOrders", params, &out)
	return out, err
}
