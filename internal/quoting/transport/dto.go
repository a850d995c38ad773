package transport

import (
	"time"

	"quote_portal_backend/internal/quoting/presentation"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// QuoteRequestHeader is the part of a questionnaire checked before a quote
// is started. The full body is kept as the questionnaire.
type QuoteRequestHeader struct {
	FirstName    string           `json:"firstName" validate:"required,min=2"`
	LastName     string           `json:"lastName" validate:"required,min=2"`
	Email        string           `json:"email" validate:"required,email"`
	MobileNumber string           `json:"mobileNumber" validate:"required,min=10"`
	IDNumber     string           `json:"idNumber" validate:"required,za_id"`
	AgentEmail   string           `json:"agentEmail" validate:"omitempty,email"`
	AgentBranch  string           `json:"agentBranch" validate:"omitempty,min=2"`
	Vehicles     []map[string]any `json:"vehicles" validate:"required,min=1"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// SubmitQuoteResponse acknowledges a started quote.
type SubmitQuoteResponse struct {
	SessionID string              `json:"sessionId"`
	Status    presentation.Status `json:"status"`
}

// AttemptResponse is one submission log entry.
type AttemptResponse struct {
	ReferenceID  string     `json:"referenceId"`
	QuoteID      *string    `json:"quoteId,omitempty"`
	Status       string     `json:"status"`
	Premium      *float64   `json:"premium,omitempty"`
	Excess       *float64   `json:"excess,omitempty"`
	ErrorCode    *string    `json:"errorCode,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// AttemptListResponse wraps a session's submission log.
type AttemptListResponse struct {
	Items []AttemptResponse `json:"items"`
}
