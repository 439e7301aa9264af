// Package errs provides structured error types shared by the REST and stream clients.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Code identifies a failure category surfaced by the client.
type Code string

const (
	// CodeInvalid indicates invalid input detected before any network call.
	CodeInvalid Code = "invalid_request"
	// CodeMissingCredentials indicates a signed call without a configured key/secret pair.
	CodeMissingCredentials Code = "missing_credentials"
	// CodeCancelled indicates the caller cancelled the operation.
	CodeCancelled Code = "cancelled"
	// CodeNetwork indicates a transport-layer failure.
	CodeNetwork Code = "network"
	// CodeExchange indicates an exchange-reported business error.
	CodeExchange Code = "exchange_error"
	// CodeUnknownSymbol indicates the symbol is absent from the exchange metadata.
	CodeUnknownSymbol Code = "unknown_symbol"
	// CodeMetadataUnavailable indicates the exchange metadata snapshot could not be fetched.
	CodeMetadataUnavailable Code = "metadata_unavailable"
	// CodeLotSize indicates an order quantity outside the symbol's lot-size grid.
	CodeLotSize Code = "lot_size_violation"
	// CodePriceRange indicates an order price outside the symbol's min/max bounds.
	CodePriceRange Code = "price_range_violation"
	// CodePriceTick indicates an order price off the symbol's tick grid.
	CodePriceTick Code = "price_tick_violation"
	// CodeMinNotional indicates an order whose total value is below the symbol minimum.
	CodeMinNotional Code = "min_notional_violation"
	// CodeUnknownEnum indicates a wire value with no entry in its codec table.
	CodeUnknownEnum Code = "unknown_enum_value"
	// CodeNotSupported indicates a protocol feature this exchange variant does not offer.
	CodeNotSupported Code = "not_supported"
)

// E captures structured error information produced across the client.
type E struct {
	Code    Code
	HTTP    int
	RawCode string
	RawMsg  string
	Message string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the given code.
func New(code Code, opts ...Option) *E {
	e := &E{Code: code}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithRawCode captures the raw exchange error code.
func WithRawCode(code string) Option {
	trimmed := strings.TrimSpace(code)
	return func(e *E) {
		e.RawCode = trimmed
	}
}

// WithRawMessage captures the raw exchange error message.
func WithRawMessage(msg string) Option {
	return func(e *E) {
		e.RawMsg = msg
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.HTTP > 0 {
		parts = append(parts, "http="+strconv.Itoa(e.HTTP))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.RawCode != "" {
		parts = append(parts, "raw_code="+strconv.Quote(e.RawCode))
	}
	if e.RawMsg != "" {
		parts = append(parts, "raw_msg="+strconv.Quote(e.RawMsg))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// CodeOf extracts the error code from err, or empty when err is not an *E.
func CodeOf(err error) Code {
	var e *E
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Invalid returns a standardized error for malformed caller input.
func Invalid(msg string) *E {
	return New(CodeInvalid, WithMessage(msg))
}

// MissingCredentials returns a standardized error for unauthenticated signed calls.
func MissingCredentials() *E {
	return New(CodeMissingCredentials, WithMessage("no valid API credentials provided, key/secret needed"))
}

// NotSupported returns a standardized error for unsupported protocol features.
func NotSupported(msg string) *E {
	return New(CodeNotSupported, WithMessage(msg))
}
