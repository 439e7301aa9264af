package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/chiliz/config"
	"github.com/coachpo/chiliz/errs"
	"github.com/coachpo/chiliz/schema"
)

const (
	testAPIKey    = "test-api-key"
	testAPISecret = "test-api-secret"
)

func newTestClient(t *testing.T, handler http.Handler, mutate func(*config.Options)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := config.Default()
	opts.RESTBaseURL = server.URL
	opts.Credentials = config.Credentials{APIKey: testAPIKey, APISecret: testAPISecret}
	opts.AutoTimestamp = false
	if mutate != nil {
		mutate(&opts)
	}
	clock := &fakeClock{now: time.UnixMilli(1_595_563_200_000)}
	client, err := New(opts, WithClock(clock.Now))
	require.NoError(t, err)
	return client
}

func TestPublicEndpointPath(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"9500.55"}`))
	}), nil)

	price, err := client.Price(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, "/openapi/quote/v1/ticker/price", gotPath)
	require.Equal(t, "symbol=BTCUSDT", gotQuery)
	require.Equal(t, "BTCUSDT", price.Symbol)
}

func TestSignedRequestShape(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"canTrade":true,"balances":[{"asset":"CHZ","free":"10","locked":"0"}]}`))
	}), nil)

	account, err := client.Account(context.Background())
	require.NoError(t, err)
	require.True(t, account.CanTrade)
	require.Len(t, account.Balances, 1)

	require.Equal(t, "/openapi/v1/account", got.URL.Path)
	require.Equal(t, testAPIKey, got.Header.Get("X-BH-APIKEY"))

	// The signature is appended last and covers everything before it.
	raw := got.URL.RawQuery
	idx := strings.LastIndex(raw, "&signature=")
	require.Greater(t, idx, 0)
	payload, signature := raw[:idx], raw[idx+len("&signature="):]
	require.Equal(t, signPayload(payload, testAPISecret), signature)

	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	require.Equal(t, "5000", values.Get("recvWindow"))
	require.Equal(t, "1595563200000", values.Get("timestamp"))
}

func TestPlaceOrderParamsInURI(t *testing.T) {
	var method, query string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
		  "symbol":"BTCUSDT","orderId":"499871255245816064","clientOrderId":"my-order",
		  "transactTime":1595563200123,"price":"9500","origQty":"5","executedQty":"0",
		  "status":"NEW","timeInForce":"GTC","type":"LIMIT","side":"BUY"
		}`))
	}), nil)

	placed, err := client.PlaceOrder(context.Background(), OrderRequest{
		Symbol:        "BTCUSDT",
		Side:          schema.Buy,
		Type:          schema.Limit,
		TimeInForce:   schema.GoodTillCancel,
		Quantity:      dec("5"),
		Price:         dec("9500"),
		ClientOrderID: "my-order",
	})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, schema.Int64(499871255245816064), placed.OrderID)
	require.Equal(t, schema.OrderNew, placed.Status)

	values, err := url.ParseQuery(query)
	require.NoError(t, err)
	require.Equal(t, "BTCUSDT", values.Get("symbol"))
	require.Equal(t, "BUY", values.Get("side"))
	require.Equal(t, "LIMIT", values.Get("type"))
	require.Equal(t, "5", values.Get("quantity"))
	require.Equal(t, "9500", values.Get("price"))
	require.Equal(t, "my-order", values.Get("newClientOrderId"))
	require.NotEmpty(t, values.Get("signature"))
}

func TestPlaceOrderAutoComply(t *testing.T) {
	var orderQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openapi/v1/brokerInfo":
			body, err := json.Marshal(testMetadata())
			require.NoError(t, err)
			_, _ = w.Write(body)
		case "/openapi/v1/order":
			orderQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":"1","clientOrderId":"x","status":"NEW","timeInForce":"GTC","type":"LIMIT","side":"BUY","price":"9500","origQty":"5","executedQty":"0","transactTime":1595563200123}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	client := newTestClient(t, handler, func(o *config.Options) {
		o.TradeRules = config.TradeRulesAutoComply
	})

	_, err := client.PlaceOrder(context.Background(), OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     schema.Buy,
		Type:     schema.Limit,
		Quantity: dec("7"),
		Price:    dec("9500.005"),
	})
	require.NoError(t, err)

	values, err := url.ParseQuery(orderQuery)
	require.NoError(t, err)
	require.Equal(t, "5", values.Get("quantity"))
	require.Equal(t, "9500", values.Get("price"))
	require.NotEmpty(t, values.Get("newClientOrderId"))
}

func TestExchangeErrorDecoding(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}), nil)

	_, err := client.Price(context.Background(), "NOPE")
	require.Equal(t, errs.CodeExchange, errs.CodeOf(err))
	var apiErr *errs.E
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.HTTP)
	require.Equal(t, "-1121", apiErr.RawCode)
	require.Equal(t, "Invalid symbol.", apiErr.RawMsg)
}

func TestExchangeErrorDegradesToText(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	}), nil)

	_, err := client.Ping(context.Background())
	var apiErr *errs.E
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.HTTP)
	require.Equal(t, "upstream exploded", apiErr.RawMsg)
}

func TestCancelledContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.ServerTime(ctx)
	require.Equal(t, errs.CodeCancelled, errs.CodeOf(err))
}

func TestSignedWithoutCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the transport")
	}), func(o *config.Options) {
		o.Credentials = config.Credentials{}
	})

	_, err := client.Account(context.Background())
	require.Equal(t, errs.CodeMissingCredentials, errs.CodeOf(err))
}

func TestValidationBeforeIO(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the transport")
	}), nil)
	ctx := context.Background()

	_, err := client.OrderBook(ctx, "BTCUSDT", 7)
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))

	_, err = client.Klines(ctx, "BTCUSDT", schema.OneHour, KlinesQuery{Limit: 2001})
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))

	_, err = client.RecentTrades(ctx, "", 10)
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))

	_, err = client.GetOrder(ctx, OrderRef{})
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))

	_, err = client.CancelOrder(ctx, OrderRef{OrderID: 1, ClientOrderID: "x"})
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))
}

func TestAutoTimestampSyncsBeforeSignedCall(t *testing.T) {
	timeCalls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/openapi/v1/time":
			timeCalls++
			_, _ = w.Write([]byte(`{"serverTime":1595563201000}`))
		case "/openapi/v1/account":
			_, _ = w.Write([]byte(`{"balances":[]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	client := newTestClient(t, handler, func(o *config.Options) {
		o.AutoTimestamp = true
	})

	_, err := client.Account(context.Background())
	require.NoError(t, err)
	// The first synchronisation discards a warm-up measurement.
	require.Equal(t, 2, timeCalls)

	_, err = client.Account(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, timeCalls)
}

func TestUserStreamLifecycle(t *testing.T) {
	var methods []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/openapi/v1/userDataStream", r.URL.Path)
		methods = append(methods, r.Method)
		_, _ = w.Write([]byte(`{"listenKey":"abc123"}`))
	})
	client := newTestClient(t, handler, nil)
	ctx := context.Background()

	key, err := client.StartUserStream(ctx)
	require.NoError(t, err)
	require.Equal(t, "abc123", key)
	require.NoError(t, client.KeepAliveUserStream(ctx, key))
	require.NoError(t, client.CloseUserStream(ctx, key))
	require.Equal(t, []string{http.MethodPost, http.MethodPut, http.MethodDelete}, methods)
}
