package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/coachpo/chiliz/config"
	"github.com/coachpo/chiliz/errs"
	"github.com/coachpo/chiliz/internal/observability"
	"github.com/coachpo/chiliz/schema"
)

const (
	apiGeneral = "openapi"
	apiQuote   = "openapi/quote"
	apiVersion = "v1"
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the exchange REST API. Public market data needs no
// credentials; account and trading endpoints require an API key pair.
type Client struct {
	opts  config.Options
	http  Doer
	clock func() time.Time
	sync  *timeSync
	rules *ruleEngine
}

// Option customises a Client.
type Option func(*Client)

// WithTransport substitutes the HTTP transport.
func WithTransport(d Doer) Option {
	return func(c *Client) { c.http = d }
}

// WithClock substitutes the local clock, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) { c.clock = clock }
}

// New constructs a Client from the given options.
func New(opts config.Options, options ...Option) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		opts:  opts,
		http:  &http.Client{Timeout: opts.HTTPTimeout},
		clock: time.Now,
	}
	for _, o := range options {
		o(c)
	}
	c.sync = newTimeSync(c.fetchServerMillis, c.clock,
		opts.TimestampRecalcInterval, opts.TimestampOffset, opts.AutoTimestamp)
	c.rules = newRuleEngine(opts.TradeRules, opts.TradeRulesUpdateInterval,
		c.BrokerInfo, c.clock)
	return c, nil
}

// SyncTime forces a resynchronisation against the exchange clock.
func (c *Client) SyncTime(ctx context.Context) error {
	return c.sync.Refresh(ctx)
}

// ServerNow returns the current server-aligned time estimate.
func (c *Client) ServerNow() time.Time {
	return c.sync.Now()
}

func (c *Client) fetchServerMillis(ctx context.Context) (int64, error) {
	var out schema.ServerTime
	if err := c.get(ctx, apiGeneral, "time", nil, &out); err != nil {
		return 0, err
	}
	return out.ServerTime.UnixMillis(), nil
}

func (c *Client) endpointURL(group, endpoint string) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		strings.TrimRight(c.opts.RESTBaseURL, "/"), group, apiVersion, endpoint)
}

func (c *Client) get(ctx context.Context, group, endpoint string, params *Params, out any) error {
	return c.request(ctx, http.MethodGet, group, endpoint, params, false, out)
}

func (c *Client) signed(ctx context.Context, method, endpoint string, params *Params, out any) error {
	return c.request(ctx, method, apiGeneral, endpoint, params, true, out)
}

// request performs one API call. All parameters travel in the URI regardless
// of method; signed calls carry a server-aligned timestamp and an HMAC of the
// encoded query appended as the final parameter.
func (c *Client) request(ctx context.Context, method, group, endpoint string, params *Params, signed bool, out any) error {
	if params == nil {
		params = NewParams()
	}
	if signed {
		if !c.opts.Credentials.Configured() {
			return errs.MissingCredentials()
		}
		if c.opts.ReceiveWindow > 0 {
			params.SetInt("recvWindow", c.opts.ReceiveWindow.Milliseconds())
		}
		ts, err := c.sync.Timestamp(ctx)
		if err != nil {
			return err
		}
		params.SetInt("timestamp", ts)
		params.Set("signature", signPayload(params.Encode(), c.opts.Credentials.APISecret))
	}

	target := c.endpointURL(group, endpoint)
	if params.Len() > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return errs.New(errs.CodeInvalid, errs.WithMessage("build request"), errs.WithCause(err))
	}
	if signed {
		req.Header.Set("X-BH-APIKEY", c.opts.Credentials.APIKey)
	}

	start := c.clock()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errs.New(errs.CodeCancelled, errs.WithMessage("request cancelled"), errs.WithCause(ctx.Err()))
		}
		return errs.New(errs.CodeNetwork, errs.WithMessage("request "+endpoint), errs.WithCause(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.New(errs.CodeNetwork, errs.WithMessage("read response"), errs.WithCause(err))
	}
	observability.Log().Debug("rest call",
		observability.F("method", method),
		observability.F("endpoint", endpoint),
		observability.F("status", resp.StatusCode),
		observability.F("elapsed", c.clock().Sub(start).String()))

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.New(errs.CodeExchange,
			errs.WithHTTP(resp.StatusCode),
			errs.WithMessage("decode "+endpoint+" response"),
			errs.WithCause(err))
	}
	return nil
}

type apiError struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

// decodeAPIError maps an error response onto the error envelope. Bodies that
// are not the documented {"code","msg"} object degrade to the raw text.
func decodeAPIError(status int, body []byte) error {
	var payload apiError
	if err := json.Unmarshal(body, &payload); err == nil && (payload.Code != 0 || payload.Msg != "") {
		return errs.New(errs.CodeExchange,
			errs.WithHTTP(status),
			errs.WithRawCode(fmt.Sprintf("%d", payload.Code)),
			errs.WithRawMessage(payload.Msg),
			errs.WithMessage("exchange rejected request"))
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return errs.New(errs.CodeExchange,
		errs.WithHTTP(status),
		errs.WithRawMessage(msg),
		errs.WithMessage("exchange rejected request"))
}
