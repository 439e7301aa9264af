package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormattingIncludesAllFields(t *testing.T) {
	err := New(
		CodeExchange,
		WithHTTP(400),
		WithMessage("order rejected"),
		WithRawCode("-1121"),
		WithRawMessage("Invalid symbol."),
		WithCause(errors.New("http 400")),
	)

	out := err.Error()
	if !strings.Contains(out, "code=exchange_error") {
		t.Fatalf("expected code marker in error string: %s", out)
	}
	if !strings.Contains(out, "http=400") {
		t.Fatalf("expected http status in error string: %s", out)
	}
	if !strings.Contains(out, "raw_code=\"-1121\"") {
		t.Fatalf("expected raw exchange code in error string: %s", out)
	}
	if !strings.Contains(out, "cause=\"http 400\"") {
		t.Fatalf("expected wrapped cause in error string: %s", out)
	}
}

func TestCodeOfUnwrapsWrappedErrors(t *testing.T) {
	inner := New(CodeMissingCredentials)
	wrapped := New(CodeNetwork, WithCause(inner))

	if got := CodeOf(wrapped); got != CodeNetwork {
		t.Fatalf("expected outermost code, got %q", got)
	}
	if !errors.Is(wrapped, wrapped) {
		t.Fatal("error should match itself")
	}
	var e *E
	if !errors.As(wrapped.Unwrap(), &e) || e.Code != CodeMissingCredentials {
		t.Fatalf("expected to unwrap to missing_credentials, got %v", wrapped.Unwrap())
	}
}

func TestCodeOfNonEnvelope(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code for plain error, got %q", got)
	}
}

func TestHelpersCarryCodes(t *testing.T) {
	if Invalid("bad symbol").Code != CodeInvalid {
		t.Fatal("Invalid should carry invalid_request")
	}
	if MissingCredentials().Code != CodeMissingCredentials {
		t.Fatal("MissingCredentials should carry missing_credentials")
	}
	if NotSupported("private topics").Code != CodeNotSupported {
		t.Fatal("NotSupported should carry not_supported")
	}
}
