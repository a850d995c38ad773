package workflow

import (
	"context"
	"errors"

	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/internal/quoting/presentation"
	"quote_portal_backend/internal/quoting/session"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/logger"
)

// Transformer converts a questionnaire into a quote request.
type Transformer interface {
	Transform(q domain.Questionnaire) (*domain.QuotePayload, error)
}

// Submitter sends a quote request.
type Submitter interface {
	Submit(ctx context.Context, payload *domain.QuotePayload) domain.Outcome
}

// Result is the end state of one pipeline run.
type Result struct {
	SessionID   string
	Request     domain.Questionnaire
	ReferenceID string
	QuoteID     string
	Quote       *domain.ResolvedQuote
	Err         *apperr.Error
	Cancelled   bool
}

// Pipeline runs transform, submit and resolve for a session and is the only
// writer of the session's result slots.
type Pipeline struct {
	transformer Transformer
	submitter   Submitter
	resolver    *Resolver
	store       session.Store
	log         *logger.Logger
}

// NewPipeline wires the pipeline stages.
func NewPipeline(t Transformer, s Submitter, r *Resolver, store session.Store, log *logger.Logger) *Pipeline {
	return &Pipeline{transformer: t, submitter: s, resolver: r, store: store, log: log}
}

// Prepare resets a session for a fresh quote: previous slots are cleared,
// the questionnaire is saved as lastRequest and the poll state is set to
// processing. It runs before Execute so readers never see a stale state.
func (p *Pipeline) Prepare(ctx context.Context, sessionID string, q domain.Questionnaire) error {
	if err := p.store.Clear(ctx, sessionID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "The quote session could not be reset.", err).WithOp("quote.prepare")
	}
	if err := session.SetJSON(ctx, p.store, sessionID, session.SlotLastRequest, q); err != nil {
		return apperr.Wrap(apperr.KindInternal, "The quote request could not be saved.", err).WithOp("quote.prepare")
	}
	p.saveState(ctx, sessionID, presentation.Reduce(presentation.Initial(), presentation.Started{}))
	return nil
}

// PrepareRetry loads the saved lastRequest of a failed session and moves it
// back to processing. Only sessions in the error state can be retried.
func (p *Pipeline) PrepareRetry(ctx context.Context, sessionID string) (domain.Questionnaire, error) {
	var q domain.Questionnaire
	if err := session.GetJSON(ctx, p.store, sessionID, session.SlotLastRequest, &q); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperr.NotFound("There is no previous quote request to retry.").WithOp("quote.retry")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "The previous quote request could not be read.", err).WithOp("quote.retry")
	}

	state := LoadState(ctx, p.store, sessionID)
	if state.Status != presentation.StatusError {
		return nil, apperr.Conflict("Only a failed quote can be retried.").WithOp("quote.retry")
	}

	_ = p.store.Remove(ctx, sessionID, session.SlotPendingResult)
	_ = p.store.Remove(ctx, sessionID, session.SlotPendingError)
	p.saveState(ctx, sessionID, presentation.Reduce(state, presentation.Retried{}))
	return q, nil
}

// Run prepares the session and executes the pipeline.
func (p *Pipeline) Run(ctx context.Context, sessionID string, q domain.Questionnaire) Result {
	if err := p.Prepare(context.WithoutCancel(ctx), sessionID, q); err != nil {
		return Result{SessionID: sessionID, Request: q, Err: toAppErr(err, apperr.KindInternal)}
	}
	return p.Execute(ctx, sessionID, q)
}

// Retry re-runs the whole pipeline from the saved lastRequest. A new
// reference ID is generated; no earlier poll sequence is resumed.
func (p *Pipeline) Retry(ctx context.Context, sessionID string) Result {
	q, err := p.PrepareRetry(context.WithoutCancel(ctx), sessionID)
	if err != nil {
		return Result{SessionID: sessionID, Err: toAppErr(err, apperr.KindInternal)}
	}
	return p.Execute(ctx, sessionID, q)
}

// Execute transforms, submits and resolves q, writing the terminal result
// into the session. Once ctx is cancelled the run writes nothing further,
// whatever stage it is in.
func (p *Pipeline) Execute(ctx context.Context, sessionID string, q domain.Questionnaire) Result {
	log := p.log.WithContext(ctx)
	res := Result{SessionID: sessionID, Request: q}

	payload, err := p.transformer.Transform(q)
	if err != nil {
		return p.fail(ctx, res, presentation.Reduce(presentation.Initial(), presentation.Started{}), toAppErr(err, apperr.KindTransform))
	}
	res.ReferenceID = payload.ExternalReferenceID

	obs := &stateObserver{p: p, run: ctx, sessionID: sessionID,
		state: presentation.Reduce(presentation.Initial(), presentation.Started{ReferenceID: res.ReferenceID})}
	if ctx.Err() != nil {
		return cancelled(log, res)
	}
	p.saveState(context.WithoutCancel(ctx), sessionID, obs.state)

	outcome := p.submitter.Submit(ctx, payload)
	res.QuoteID = outcome.QuoteID

	quote, err := p.resolver.Resolve(ctx, outcome, res.ReferenceID, obs)
	if ctx.Err() != nil {
		return cancelled(log, res)
	}
	if err != nil {
		return p.fail(ctx, res, obs.state, toAppErr(err, apperr.KindUnknown))
	}

	res.Quote = quote
	bg := context.WithoutCancel(ctx)
	if err := session.SetJSON(bg, p.store, sessionID, session.SlotPendingResult, quote); err != nil {
		log.Warn("saving quote result failed", "error", err)
	}
	p.saveState(bg, sessionID, presentation.Reduce(obs.state, presentation.Completed{Quote: quote}))
	return res
}

func (p *Pipeline) fail(ctx context.Context, res Result, state presentation.State, err *apperr.Error) Result {
	if ctx.Err() != nil {
		return cancelled(p.log.WithContext(ctx), res)
	}
	res.Err = err
	bg := context.WithoutCancel(ctx)
	next := presentation.Reduce(state, presentation.Failed{Err: err})
	if err := session.SetJSON(bg, p.store, res.SessionID, session.SlotPendingError, next.Error); err != nil {
		p.log.WithContext(ctx).Warn("saving quote error failed", "error", err)
	}
	p.saveState(bg, res.SessionID, next)
	return res
}

func cancelled(log *logger.Logger, res Result) Result {
	log.Info("quote pipeline cancelled", "reference_id", res.ReferenceID)
	res.Cancelled = true
	res.Quote = nil
	res.Err = nil
	return res
}

func (p *Pipeline) saveState(ctx context.Context, sessionID string, state presentation.State) {
	if err := session.SetJSON(ctx, p.store, sessionID, session.SlotPollState, state); err != nil {
		p.log.WithContext(ctx).Warn("saving poll state failed", "error", err)
	}
}

// LoadState reads the poll state of a session. A missing or unreadable slot
// reads as the idle state.
func LoadState(ctx context.Context, store session.Store, sessionID string) presentation.State {
	var state presentation.State
	if err := session.GetJSON(ctx, store, sessionID, session.SlotPollState, &state); err != nil {
		return presentation.Initial()
	}
	return state
}

// stateObserver mirrors poll progress into the session's poll state.
type stateObserver struct {
	p         *Pipeline
	run       context.Context
	sessionID string
	state     presentation.State
}

func (o *stateObserver) OnTransition(_, _ State) {}

func (o *stateObserver) OnPoll(attempt int, _ domain.JobStatus, _ error) {
	o.state = presentation.Reduce(o.state, presentation.Polled{Attempt: attempt})
	if o.run.Err() != nil {
		return
	}
	o.p.saveState(context.WithoutCancel(o.run), o.sessionID, o.state)
}

func toAppErr(err error, fallback apperr.Kind) *apperr.Error {
	if ae, ok := apperr.As(err); ok {
		return ae
	}
	return apperr.Wrap(fallback, "The quote could not be processed.", err)
}
