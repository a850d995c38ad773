// Package presentation reduces workflow events into the view state shown to
// users. It holds no timers and performs no I/O.
package presentation

import (
	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/platform/apperr"
)

// Status is the coarse view status.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Action is what the user is advised to do after an error.
type Action string

const (
	ActionFix     Action = "fix"
	ActionRetry   Action = "retry"
	ActionWait    Action = "wait"
	ActionReload  Action = "reload"
	ActionRestart Action = "restart"
)

// ErrorView is the user-facing rendering of a terminal error.
type ErrorView struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Details   []string            `json:"details,omitempty"`
	Fields    []apperr.FieldError `json:"fields,omitempty"`
	Action    Action              `json:"action"`
	Retryable bool                `json:"retryable"`
}

// State is the poll state stored per session.
type State struct {
	Status      Status                `json:"status"`
	ReferenceID string                `json:"referenceId,omitempty"`
	Quote       *domain.ResolvedQuote `json:"quote,omitempty"`
	Error       *ErrorView            `json:"error,omitempty"`
	Attempts    int                   `json:"attempts,omitempty"`
}

// Event is an input to Reduce.
type Event interface{ event() }

// Started marks a new pipeline run.
type Started struct{ ReferenceID string }

// Polled records one status check while processing.
type Polled struct{ Attempt int }

// Completed carries the resolved quote.
type Completed struct{ Quote *domain.ResolvedQuote }

// Failed carries the terminal error.
type Failed struct{ Err *apperr.Error }

// Retried marks an explicit user retry.
type Retried struct{}

func (Started) event()   {}
func (Polled) event()    {}
func (Completed) event() {}
func (Failed) event()    {}
func (Retried) event()   {}

// Initial is the state before anything was submitted.
func Initial() State {
	return State{Status: StatusIdle}
}

// Reduce applies ev to s. Transitions not listed below leave s unchanged:
//
//	any        --Started-->   processing
//	processing --Polled-->    processing
//	processing --Completed--> complete
//	processing --Failed-->    error
//	error      --Retried-->   processing
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case Started:
		return State{Status: StatusProcessing, ReferenceID: e.ReferenceID}
	case Polled:
		if s.Status != StatusProcessing {
			return s
		}
		s.Attempts = e.Attempt
		return s
	case Completed:
		if s.Status != StatusProcessing || e.Quote == nil {
			return s
		}
		ref := s.ReferenceID
		if e.Quote.ExternalReferenceID != "" {
			ref = e.Quote.ExternalReferenceID
		}
		return State{Status: StatusComplete, ReferenceID: ref, Quote: e.Quote}
	case Failed:
		if s.Status != StatusProcessing || e.Err == nil {
			return s
		}
		return State{Status: StatusError, ReferenceID: s.ReferenceID, Error: NewErrorView(e.Err)}
	case Retried:
		if s.Status != StatusError {
			return s
		}
		return State{Status: StatusProcessing}
	default:
		return s
	}
}

// NewErrorView renders err for users.
func NewErrorView(err *apperr.Error) *ErrorView {
	code := err.Kind.String()
	text := kindCopy(code)

	view := &ErrorView{
		Code:      code,
		Message:   text.Message,
		Fields:    err.Fields,
		Action:    text.Action,
		Retryable: err.Retryable(),
	}

	for _, f := range err.Fields {
		view.Details = append(view.Details, FieldLabel(f.Field)+": "+f.Message)
	}
	if len(view.Details) == 0 && err.Message != "" && err.Message != text.Message {
		view.Details = []string{err.Message}
	}
	return view
}
