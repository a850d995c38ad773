// Package client provides the HTTP client for the external quoting API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/internal/upstream"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/retry"
)

const (
	serviceName = "quote-api"
	// maxBodyBytes caps how much of an upstream response is read.
	maxBodyBytes = 1 << 20
)

// quoteStatusKinds adds the quote-record statuses to the shared mapping for
// calls that address an existing quote. Submissions use the shared mapping
// alone.
var quoteStatusKinds = map[int]apperr.Kind{
	http.StatusNotFound: apperr.KindNotFound,
	http.StatusGone:     apperr.KindNotFound,
}

// Client submits quote payloads and queries quote jobs.
type Client struct {
	baseURL    string
	source     string
	httpClient *http.Client
	policy     retry.Policy
	sleeper    retry.Sleeper
	log        *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSleeper replaces the wait used between transport retries.
func WithSleeper(s retry.Sleeper) Option {
	return func(c *Client) { c.sleeper = s }
}

// New creates a quoting API client from configuration.
func New(cfg config.QuoteAPIConfig, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.GetQuoteAPIURL(),
		source:     cfg.GetQuoteSource(),
		httpClient: &http.Client{Timeout: cfg.GetQuoteRequestTimeout()},
		policy:     retry.Policy{MaxRetries: cfg.GetQuoteMaxRetries(), Delay: cfg.GetQuoteRetryDelay()},
		sleeper:    retry.TimerSleeper,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// transportError marks a failure where no HTTP response was received.
// Only these are retried.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransport(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

type response struct {
	status int
	body   []byte
}

// Submit posts payload and classifies the answer. It never returns a Go
// error: every failure is carried by a Failed outcome.
func (c *Client) Submit(ctx context.Context, payload *domain.QuotePayload) domain.Outcome {
	const op = "quote.submit"

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Failed(apperr.Wrap(apperr.KindInternal, "could not encode quote request", err).WithOp(op))
	}

	var resp response
	err = retry.Do(ctx, c.policy, c.sleeper, isTransport, func(attempt int) error {
		r, err := c.do(ctx, http.MethodPost, c.baseURL, body, attempt)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return domain.Failed(networkError(op, err))
	}

	if resp.status < 200 || resp.status >= 300 {
		return domain.Failed(upstream.Classify(op, resp.status, resp.body, nil))
	}
	return decodeSubmission(op, resp.body)
}

// PollStatus fetches the state of a pending quote job. Failures are returned
// as *apperr.Error; the caller decides whether to keep polling.
func (c *Client) PollStatus(ctx context.Context, quoteID string) (domain.JobStatus, error) {
	const op = "quote.status"

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(quoteID)+"/status", nil, 1)
	if err != nil {
		return domain.JobStatus{}, networkError(op, err)
	}
	if resp.status < 200 || resp.status >= 300 {
		return domain.JobStatus{}, upstream.Classify(op, resp.status, resp.body, quoteStatusKinds)
	}

	obj, ok := upstream.Unwrap(resp.body)
	if !ok {
		return domain.JobStatus{}, apperr.New(apperr.KindUnknown, "unrecognised status response").WithOp(op)
	}

	status := domain.JobStatus{
		State:   domain.ParseJobState(upstream.String(obj, "status", "state")),
		Message: upstream.String(obj, "message", "error"),
	}
	status.Premium, _ = upstream.Number(obj, "premium")
	status.Excess, _ = upstream.Number(obj, "excess")
	return status, nil
}

// GetQuote retrieves a completed quote by ID. A missing or expired quote
// yields a KindNotFound error. referenceID is used when the record omits it.
func (c *Client) GetQuote(ctx context.Context, quoteID, referenceID string) (*domain.ResolvedQuote, error) {
	const op = "quote.get"

	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+url.PathEscape(quoteID), nil, 1)
	if err != nil {
		return nil, networkError(op, err)
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, upstream.Classify(op, resp.status, resp.body, quoteStatusKinds)
	}

	obj, ok := upstream.Unwrap(resp.body)
	if !ok {
		return nil, apperr.New(apperr.KindUnknown, "unrecognised quote response").WithOp(op)
	}
	premium, ok := upstream.Number(obj, "premium")
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "quote has no premium yet").WithOp(op)
	}
	excess, _ := upstream.Number(obj, "excess")

	id := upstream.String(obj, "quoteId", "quote_id", "id")
	if id == "" {
		id = quoteID
	}
	if ref := upstream.String(obj, "externalReferenceId", "referenceId"); ref != "" {
		referenceID = ref
	}
	return domain.NewResolvedQuote(premium, excess, id, referenceID, time.Now()), nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, body []byte, attempt int) (response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID(ctx))
	req.Header.Set("X-Source", c.source)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).UpstreamCall(serviceName, method, reqURL, 0, attempt, time.Since(start), err)
		return response{}, &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.log.WithContext(ctx).UpstreamCall(serviceName, method, reqURL, resp.StatusCode, attempt, time.Since(start), err)
		return response{}, &transportError{err: fmt.Errorf("read body: %w", err)}
	}

	c.log.WithContext(ctx).UpstreamCall(serviceName, method, reqURL, resp.StatusCode, attempt, time.Since(start), nil)
	return response{status: resp.StatusCode, body: data}, nil
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func networkError(op string, err error) *apperr.Error {
	if ae, ok := apperr.As(err); ok {
		return ae
	}
	return apperr.Wrap(apperr.KindNetwork, "Unable to reach the quoting service. Please check your connection and try again.", err).WithOp(op)
}
