// Package workflow drives a quote from questionnaire to resolved price:
// transform, submit, then poll until the upstream job settles.
package workflow

import (
	"context"
	"time"

	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/retry"
)

// State is the resolver state.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
	StateFailed     State = "failed"
)

// Observer receives every state change and poll attempt of one resolve call.
type Observer interface {
	OnTransition(from, to State)
	OnPoll(attempt int, status domain.JobStatus, err error)
}

type nopObserver struct{}

func (nopObserver) OnTransition(State, State) {}

func (nopObserver) OnPoll(int, domain.JobStatus, error) {}

// StatusClient is the subset of the quote API the resolver needs.
type StatusClient interface {
	PollStatus(ctx context.Context, quoteID string) (domain.JobStatus, error)
	GetQuote(ctx context.Context, quoteID, referenceID string) (*domain.ResolvedQuote, error)
}

// Resolver turns a submission outcome into a resolved quote.
type Resolver struct {
	client      StatusClient
	interval    time.Duration
	maxAttempts int
	sleeper     retry.Sleeper
	now         func() time.Time
	log         *logger.Logger
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithSleeper replaces the wait between polls.
func WithSleeper(s retry.Sleeper) ResolverOption {
	return func(r *Resolver) { r.sleeper = s }
}

// WithClock replaces the clock used to stamp resolved quotes.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a resolver with the configured poll budget.
func NewResolver(client StatusClient, cfg config.PollConfig, log *logger.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:      client,
		interval:    cfg.GetPollInterval(),
		maxAttempts: cfg.GetPollMaxAttempts(),
		sleeper:     retry.TimerSleeper,
		now:         time.Now,
		log:         log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve settles outcome. Immediate outcomes complete without network
// calls; pending ones are polled sequentially, one interval apart, until the
// job completes, fails, or the attempt budget runs out (KindTimeout).
// Network and service poll errors are logged and retried on the next tick;
// any other poll error fails the quote at once. Cancelling ctx stops polling
// and returns ctx.Err().
func (r *Resolver) Resolve(ctx context.Context, outcome domain.Outcome, referenceID string, obs Observer) (*domain.ResolvedQuote, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	log := r.log.WithContext(ctx).With("reference_id", referenceID)

	transition := func(from, to State) {
		log.QuoteTransition(referenceID, string(from), string(to))
		obs.OnTransition(from, to)
	}

	switch outcome.Kind {
	case domain.OutcomeImmediate:
		transition(StateIdle, StateComplete)
		return domain.NewResolvedQuote(outcome.Premium, outcome.Excess, outcome.QuoteID, referenceID, r.now()), nil
	case domain.OutcomeFailed:
		transition(StateIdle, StateFailed)
		return nil, outcome.Err
	case domain.OutcomePending:
	default:
		transition(StateIdle, StateFailed)
		return nil, apperr.Internal("unrecognised submission outcome").WithOp("quote.resolve")
	}

	transition(StateIdle, StateProcessing)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := r.sleeper.Sleep(ctx, r.interval); err != nil {
			log.Info("quote polling cancelled", "attempt", attempt)
			return nil, err
		}

		status, err := r.client.PollStatus(ctx, outcome.QuoteID)
		obs.OnPoll(attempt, status, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			if transientPoll(err) {
				log.Warn("quote poll failed", "attempt", attempt, "error", err)
				continue
			}
			transition(StateProcessing, StateFailed)
			return nil, pollError(err)
		}

		switch status.State {
		case domain.JobCompleted:
			quote, err := r.completed(ctx, outcome.QuoteID, referenceID, status)
			if err != nil {
				transition(StateProcessing, StateFailed)
				return nil, err
			}
			transition(StateProcessing, StateComplete)
			return quote, nil
		case domain.JobFailed:
			msg := status.Message
			if msg == "" {
				msg = "The quote could not be generated."
			}
			transition(StateProcessing, StateFailed)
			return nil, apperr.New(apperr.KindService, msg).WithOp("quote.resolve")
		}
	}

	transition(StateProcessing, StateFailed)
	return nil, apperr.Timeout("The quote is taking longer than expected.").
		WithOp("quote.resolve").
		WithDetails(map[string]any{"quoteId": outcome.QuoteID, "attempts": r.maxAttempts})
}

// completed builds the quote from the status body, or fetches the record
// when the status did not carry a premium.
func (r *Resolver) completed(ctx context.Context, quoteID, referenceID string, status domain.JobStatus) (*domain.ResolvedQuote, error) {
	if status.Premium > 0 {
		return domain.NewResolvedQuote(status.Premium, status.Excess, quoteID, referenceID, r.now()), nil
	}
	quote, err := r.client.GetQuote(ctx, quoteID, referenceID)
	if err != nil {
		if ae, ok := apperr.As(err); ok {
			return nil, ae
		}
		return nil, apperr.Wrap(apperr.KindUnknown, "The completed quote could not be retrieved.", err).WithOp("quote.resolve")
	}
	return quote, nil
}

func transientPoll(err error) bool {
	switch apperr.GetKind(err) {
	case apperr.KindNetwork, apperr.KindService:
		return true
	default:
		return false
	}
}

func pollError(err error) *apperr.Error {
	if ae, ok := apperr.As(err); ok {
		return ae
	}
	return apperr.Wrap(apperr.KindUnknown, "The quote status could not be read.", err).WithOp("quote.resolve")
}
