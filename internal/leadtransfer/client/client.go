// Package client provides the HTTP client for the lead-transfer API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"quote_portal_backend/internal/leadtransfer/transport"
	"quote_portal_backend/internal/upstream"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/sanitize"
)

const (
	serviceName    = "lead-transfer"
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
	// duplicateCode is the upstream code for a lead that was already transferred.
	duplicateCode = "TRANSFER_DUPLICATE"
)

// Lead is the flattened body sent upstream.
type Lead struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	IDNumber      string `json:"id_number,omitempty"`
	QuoteID       string `json:"quote_id,omitempty"`
	ContactNumber string `json:"contact_number"`
	Agent         string `json:"agent"`
	Branch        string `json:"branch"`
}

// NewLead merges form and agent data. Free-text fields are reduced to
// plain text before they leave the portal.
func NewLead(f transport.FormData, a transport.AgentInfo) Lead {
	return Lead{
		FirstName:     sanitize.Text(f.FirstName),
		LastName:      sanitize.Text(f.LastName),
		Email:         strings.TrimSpace(f.Email),
		IDNumber:      strings.TrimSpace(f.IDNumber),
		QuoteID:       strings.TrimSpace(f.QuoteID),
		ContactNumber: strings.TrimSpace(f.ContactNumber),
		Agent:         sanitize.Text(a.Agent),
		Branch:        sanitize.Text(a.Branch),
	}
}

// Result is the normalized transfer response.
type Result struct {
	ClientID    string
	RedirectURL string
	Message     string
}

// Client posts leads to the lead-transfer API.
type Client struct {
	url        string
	publicHost string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a lead-transfer client.
func New(cfg config.LeadTransferConfig, log *logger.Logger) *Client {
	return &Client{
		url:        cfg.GetLeadTransferURL(),
		publicHost: cfg.GetLeadTransferPublicHost(),
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

// Transfer sends lead upstream. A 409 answer is a KindConflict error
// carrying the upstream duplicate details.
func (c *Client) Transfer(ctx context.Context, lead Lead) (Result, error) {
	const op = "lead.transfer"

	body, err := json.Marshal(lead)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "could not encode lead", err).WithOp(op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "could not build transfer request", err).WithOp(op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).UpstreamCall(serviceName, http.MethodPost, c.url, 0, 1, time.Since(start), err)
		return Result{}, apperr.Wrap(apperr.KindNetwork, "No response received from the transfer service. Please check your connection.", err).WithOp(op)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.log.WithContext(ctx).UpstreamCall(serviceName, http.MethodPost, c.url, resp.StatusCode, 1, time.Since(start), err)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindNetwork, "The transfer response could not be read.", fmt.Errorf("read body: %w", err)).WithOp(op)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, classify(op, resp.StatusCode, data)
	}
	return c.normalize(data), nil
}

func classify(op string, status int, body []byte) *apperr.Error {
	err := upstream.Classify(op, status, body, map[int]apperr.Kind{
		http.StatusConflict: apperr.KindConflict,
	})
	if err.Kind == apperr.KindConflict && err.Code == "" {
		err.Code = duplicateCode
	}
	return err
}

// normalize extracts the client ID and redirect URL from any accepted shape.
func (c *Client) normalize(body []byte) Result {
	obj, ok := upstream.Unwrap(body)
	if !ok {
		return Result{}
	}
	if inner, ok := obj["api_response"]; ok {
		encoded, _ := json.Marshal(inner)
		if nested, ok := upstream.Unwrap(encoded); ok {
			for k, v := range nested {
				if _, exists := obj[k]; !exists {
					obj[k] = v
				}
			}
		}
	}

	return Result{
		ClientID:    upstream.String(obj, "uuid", "client_id", "id"),
		RedirectURL: RewriteLocalhost(upstream.String(obj, "redirect_url", "redirectUrl"), c.publicHost),
		Message:     upstream.String(obj, "message"),
	}
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
