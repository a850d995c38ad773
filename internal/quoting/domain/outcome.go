package domain

import (
	"time"

	"quote_portal_backend/platform/apperr"
)

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind int

const (
	// OutcomeImmediate carries a priced quote in the submission response.
	OutcomeImmediate OutcomeKind = iota + 1
	// OutcomePending carries only a quote ID that must be polled.
	OutcomePending
	// OutcomeFailed carries a classified error.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeImmediate:
		return "immediate"
	case OutcomePending:
		return "pending"
	case OutcomeFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Outcome is the result of one submission. Exactly one variant is populated,
// selected by Kind; build it with Immediate, Pending or Failed.
type Outcome struct {
	Kind    OutcomeKind
	Premium float64
	Excess  float64
	QuoteID string
	Err     *apperr.Error
}

// Immediate builds a priced outcome. quoteID may be empty.
func Immediate(premium, excess float64, quoteID string) Outcome {
	return Outcome{Kind: OutcomeImmediate, Premium: premium, Excess: excess, QuoteID: quoteID}
}

// Pending builds an outcome that must be resolved by polling quoteID.
func Pending(quoteID string) Outcome {
	return Outcome{Kind: OutcomePending, QuoteID: quoteID}
}

// Failed builds a failed outcome.
func Failed(err *apperr.Error) Outcome {
	if err == nil {
		panic("domain: Failed outcome requires an error")
	}
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// QuoteStatusComplete is the only status a ResolvedQuote carries.
const QuoteStatusComplete = "complete"

// ResolvedQuote is the final priced quote handed to the presentation layer.
type ResolvedQuote struct {
	Premium             float64   `json:"premium"`
	Excess              float64   `json:"excess"`
	QuoteID             string    `json:"quoteId,omitempty"`
	ExternalReferenceID string    `json:"referenceId"`
	ResolvedAt          time.Time `json:"timestamp"`
	Status              string    `json:"status"`
}

// NewResolvedQuote stamps a completed quote.
func NewResolvedQuote(premium, excess float64, quoteID, referenceID string, at time.Time) *ResolvedQuote {
	return &ResolvedQuote{
		Premium:             premium,
		Excess:              excess,
		QuoteID:             quoteID,
		ExternalReferenceID: referenceID,
		ResolvedAt:          at.UTC(),
		Status:              QuoteStatusComplete,
	}
}
