package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindTransform, http.StatusUnprocessableEntity},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindBadRequest, http.StatusBadRequest},
		{KindRateLimit, http.StatusTooManyRequests},
		{KindService, http.StatusBadGateway},
		{KindNetwork, http.StatusBadGateway},
		{KindTimeout, http.StatusGatewayTimeout},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindUnknown, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := New(tc.kind, "x").HTTPStatus(); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestGetKindThroughWrappedChain(t *testing.T) {
	base := New(KindRateLimit, "slow down")
	wrapped := fmt.Errorf("submit: %w", base)

	if got := GetKind(wrapped); got != KindRateLimit {
		t.Fatalf("GetKind = %s, want %s", got, KindRateLimit)
	}
	if !Is(wrapped, KindRateLimit) {
		t.Fatal("Is should see through fmt wrapping")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("plain errors should be KindUnknown")
	}
}

func TestRetryable(t *testing.T) {
	retryable := []Kind{KindService, KindNetwork, KindTimeout}
	terminal := []Kind{KindTransform, KindValidation, KindAuth, KindRateLimit, KindNotFound, KindConflict, KindInternal, KindUnknown}

	for _, k := range retryable {
		if !New(k, "").Retryable() {
			t.Errorf("%s should be retryable", k)
		}
	}
	for _, k := range terminal {
		if New(k, "").Retryable() {
			t.Errorf("%s should not be retryable", k)
		}
	}
}

func TestErrorMessageIncludesOpAndCause(t *testing.T) {
	err := Wrap(KindNetwork, "quote server unreachable", errors.New("connection refused")).WithOp("quote.submit")
	want := "quote.submit: quote server unreachable: connection refused"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
