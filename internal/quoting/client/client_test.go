package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/retry"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// flakyTransport fails the first n round trips with a connection error.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errors.New("connection refused")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func testConfig(url string) *config.Config {
	return &config.Config{
		QuoteAPIURL:         url,
		QuoteSource:         "test-portal",
		QuoteRequestTimeout: 5 * time.Second,
		QuoteMaxRetries:     config.DefaultQuoteMaxRetries,
		QuoteRetryDelay:     config.DefaultQuoteRetryDelay,
	}
}

func samplePayload() *domain.QuotePayload {
	return &domain.QuotePayload{ExternalReferenceID: "20260314-ABC123", Source: "SureStrat"}
}

func TestSubmitRetriesConnectionFailures(t *testing.T) {
	var served atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
		_, _ = io.WriteString(w, `{"premium": 850.25, "excess": 5000, "quoteId": "Q-1"}`)
	}))
	defer srv.Close()

	transport := &flakyTransport{failures: 2}
	sleeper := &recordingSleeper{}
	c := New(testConfig(srv.URL), logger.Nop(),
		WithHTTPClient(&http.Client{Transport: transport}),
		WithSleeper(sleeper),
	)

	out := c.Submit(context.Background(), samplePayload())

	if out.Kind != domain.OutcomeImmediate || out.Premium != 850.25 || out.Excess != 5000 || out.QuoteID != "Q-1" {
		t.Fatalf("outcome = %+v", out)
	}
	if got := transport.calls.Load(); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
	if served.Load() != 1 {
		t.Fatalf("server saw %d requests, want 1", served.Load())
	}
	if len(sleeper.delays) != 2 || sleeper.delays[0] != config.DefaultQuoteRetryDelay {
		t.Fatalf("delays = %v", sleeper.delays)
	}
}

func TestSubmitExhaustedRetriesIsNetworkError(t *testing.T) {
	transport := &flakyTransport{failures: 10}
	c := New(testConfig("http://quotes.invalid"), logger.Nop(),
		WithHTTPClient(&http.Client{Transport: transport}),
		WithSleeper(&recordingSleeper{}),
	)

	out := c.Submit(context.Background(), samplePayload())

	if out.Kind != domain.OutcomeFailed || out.Err.Kind != apperr.KindNetwork {
		t.Fatalf("outcome = %+v", out)
	}
	if got := transport.calls.Load(); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestSubmitValidationErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"loc":["body","vehicles",0,"make"],"msg":"field required","type":"value_error.missing"},{"loc":["body","applicant","email"],"msg":"invalid email","type":"value_error"}]}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), logger.Nop(), WithSleeper(&recordingSleeper{}))
	out := c.Submit(context.Background(), samplePayload())

	if calls.Load() != 1 {
		t.Fatalf("attempts = %d, want 1", calls.Load())
	}
	if out.Kind != domain.OutcomeFailed || out.Err.Kind != apperr.KindValidation {
		t.Fatalf("outcome = %+v", out)
	}
	if len(out.Err.Fields) != 2 || out.Err.Fields[0].Field != "vehicles -> 0 -> make" || out.Err.Fields[1].Field != "applicant -> email" {
		t.Fatalf("fields = %+v", out.Err.Fields)
	}
}

func TestSubmitClassifiesStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   apperr.Kind
	}{
		{http.StatusBadRequest, apperr.KindValidation},
		{http.StatusUnauthorized, apperr.KindAuth},
		{http.StatusForbidden, apperr.KindAuth},
		{http.StatusNotFound, apperr.KindUnknown},
		{http.StatusGone, apperr.KindUnknown},
		{http.StatusTooManyRequests, apperr.KindRateLimit},
		{http.StatusInternalServerError, apperr.KindService},
		{http.StatusServiceUnavailable, apperr.KindService},
		{http.StatusTeapot, apperr.KindUnknown},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		out := New(testConfig(srv.URL), logger.Nop()).Submit(context.Background(), samplePayload())
		srv.Close()

		if out.Kind != domain.OutcomeFailed || out.Err.Kind != tc.want {
			t.Errorf("status %d: outcome = %+v, want %s", tc.status, out, tc.want)
		}
	}
}

func TestSubmitSendsHeadersAndPayload(t *testing.T) {
	var gotHeaders http.Header
	var gotBody domain.QuotePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"success": true, "data": {"quoteId": "Q-9", "status": "processing"}}`)
	}))
	defer srv.Close()

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	out := New(testConfig(srv.URL), logger.Nop()).Submit(ctx, samplePayload())

	if out.Kind != domain.OutcomePending || out.QuoteID != "Q-9" {
		t.Fatalf("outcome = %+v", out)
	}
	if gotHeaders.Get("X-Request-ID") != "req-42" || gotHeaders.Get("X-Source") != "test-portal" {
		t.Fatalf("headers = %v", gotHeaders)
	}
	if gotHeaders.Get("Content-Type") != "application/json" {
		t.Fatalf("content type = %q", gotHeaders.Get("Content-Type"))
	}
	if gotBody.ExternalReferenceID != "20260314-ABC123" {
		t.Fatalf("body = %+v", gotBody)
	}
}

func TestSubmitDecodesResponseShapes(t *testing.T) {
	cases := map[string]struct {
		body string
		kind domain.OutcomeKind
	}{
		"flat priced":      {`{"premium": 100, "excess": 10}`, domain.OutcomeImmediate},
		"stringified":      {`"{\"premium\": \"100\", \"excess\": \"10\"}"`, domain.OutcomeImmediate},
		"envelope pending": {`{"data": {"quote_id": "Q-2"}}`, domain.OutcomePending},
		"job failed":       {`{"status": "failed", "message": "declined"}`, domain.OutcomeFailed},
		"no quote":         {`{"ok": true}`, domain.OutcomeFailed},
		"unreadable":       {`not json`, domain.OutcomeFailed},
	}

	for name, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, tc.body)
		}))
		out := New(testConfig(srv.URL), logger.Nop()).Submit(context.Background(), samplePayload())
		srv.Close()

		if out.Kind != tc.kind {
			t.Errorf("%s: kind = %s, want %s", name, out.Kind, tc.kind)
		}
	}
}

func TestStatusParsesJobState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/Q-7/status") {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"status": "completed", "premium": "612.40", "excess": 3000}`)
	}))
	defer srv.Close()

	st, err := New(testConfig(srv.URL), logger.Nop()).PollStatus(context.Background(), "Q-7")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.State != domain.JobCompleted || st.Premium != 612.40 || st.Excess != 3000 {
		t.Fatalf("status = %+v", st)
	}
}

func TestGetMissingQuoteIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail": "Quote not found"}`)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), logger.Nop()).GetQuote(context.Background(), "Q-404", "")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestPollExpiredQuoteIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL), logger.Nop()).PollStatus(context.Background(), "Q-410")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestGetReturnsResolvedQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": {"premium": 700, "excess": 2500, "externalReferenceId": "20260314-XYZ789"}}`)
	}))
	defer srv.Close()

	q, err := New(testConfig(srv.URL), logger.Nop()).GetQuote(context.Background(), "Q-5", "fallback-ref")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if q.Premium != 700 || q.QuoteID != "Q-5" || q.ExternalReferenceID != "20260314-XYZ789" || q.Status != domain.QuoteStatusComplete {
		t.Fatalf("quote = %+v", q)
	}
}

var _ retry.Sleeper = (*recordingSleeper)(nil)
