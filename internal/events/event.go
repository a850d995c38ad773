// Package events defines the quote and lead outcome events exchanged
// between the quoting, lead transfer and notification modules. The bus
// itself lives in platform/events.
package events

import (
	"time"

	"quote_portal_backend/platform/events"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Event names.
const (
	QuoteResolvedName   = "quoting.quote.resolved"
	QuoteFailedName     = "quoting.quote.failed"
	LeadTransferredName = "leadtransfer.lead.transferred"
)

// Applicant identifies the customer behind a quote or transfer.
type Applicant struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// FullName joins first and last name.
func (a Applicant) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// =============================================================================
// Quoting Domain Events
// =============================================================================

// QuoteResolved is published when a quote pipeline ends with a price.
type QuoteResolved struct {
	BaseEvent
	SessionID   string    `json:"sessionId"`
	ReferenceID string    `json:"referenceId"`
	QuoteID     string    `json:"quoteId,omitempty"`
	Premium     float64   `json:"premium"`
	Excess      float64   `json:"excess"`
	Applicant   Applicant `json:"applicant"`
	AgentEmail  string    `json:"agentEmail,omitempty"`
	AgentBranch string    `json:"agentBranch,omitempty"`
	ResolvedAt  time.Time `json:"resolvedAt"`
}

func (e QuoteResolved) EventName() string { return QuoteResolvedName }

// QuoteFailed is published when a quote pipeline ends with a terminal error.
type QuoteFailed struct {
	BaseEvent
	SessionID    string    `json:"sessionId"`
	ReferenceID  string    `json:"referenceId,omitempty"`
	QuoteID      string    `json:"quoteId,omitempty"`
	ErrorCode    string    `json:"errorCode"`
	ErrorMessage string    `json:"errorMessage"`
	Applicant    Applicant `json:"applicant"`
	AgentEmail   string    `json:"agentEmail,omitempty"`
}

func (e QuoteFailed) EventName() string { return QuoteFailedName }

// =============================================================================
// Lead Transfer Domain Events
// =============================================================================

// LeadTransferred is published after the lead-transfer API accepted a lead.
type LeadTransferred struct {
	BaseEvent
	ClientID    string    `json:"clientId,omitempty"`
	RedirectURL string    `json:"redirectUrl,omitempty"`
	QuoteID     string    `json:"quoteId,omitempty"`
	Applicant   Applicant `json:"applicant"`
	Agent       string    `json:"agent"`
	Branch      string    `json:"branch"`
}

func (e LeadTransferred) EventName() string { return LeadTransferredName }
