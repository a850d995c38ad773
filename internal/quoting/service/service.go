// Package service coordinates quote sessions: it starts pipelines in the
// background, tracks their cancellation, publishes domain events and keeps
// the submission log.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quote_portal_backend/internal/events"
	"quote_portal_backend/internal/quoting/domain"
	"quote_portal_backend/internal/quoting/presentation"
	"quote_portal_backend/internal/quoting/repository"
	"quote_portal_backend/internal/quoting/session"
	"quote_portal_backend/internal/quoting/workflow"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/logger"
)

// Pipeline is the workflow the service drives.
type Pipeline interface {
	Prepare(ctx context.Context, sessionID string, q domain.Questionnaire) error
	PrepareRetry(ctx context.Context, sessionID string) (domain.Questionnaire, error)
	Execute(ctx context.Context, sessionID string, q domain.Questionnaire) workflow.Result
}

// QuoteFetcher retrieves stored quotes from the quoting API.
type QuoteFetcher interface {
	GetQuote(ctx context.Context, quoteID, referenceID string) (*domain.ResolvedQuote, error)
}

// AttemptLog persists quote attempts. It is optional.
type AttemptLog interface {
	Save(ctx context.Context, a repository.Attempt) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]repository.Attempt, error)
}

// SessionView is what a client sees when it polls a session.
type SessionView struct {
	SessionID string `json:"sessionId"`
	presentation.State
}

// Service handles quote session business logic.
type Service struct {
	pipeline Pipeline
	store    session.Store
	quotes   QuoteFetcher
	attempts AttemptLog
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	running map[string]*run
	nextRun uint64
	wg      sync.WaitGroup
}

// run is one background pipeline execution. done is closed once the run
// has made its last session write.
type run struct {
	id     uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new quoting service.
func New(pipeline Pipeline, store session.Store, quotes QuoteFetcher, log *logger.Logger) *Service {
	return &Service{
		pipeline: pipeline,
		store:    store,
		quotes:   quotes,
		log:      log,
		now:      time.Now,
		running:  make(map[string]*run),
	}
}

// SetEventBus injects the event bus used for quote outcome events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetAttemptLog injects the submission log.
func (s *Service) SetAttemptLog(log AttemptLog) {
	s.attempts = log
}

// Submit starts a quote for sessionID (a new session when empty) and returns
// immediately. A pipeline already running for the session is cancelled and
// has finished writing before the session is reset.
func (s *Service) Submit(ctx context.Context, sessionID string, q domain.Questionnaire) (string, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.Lock()
	previous := s.running[sessionID]
	runCtx, r := s.reserveLocked(ctx, sessionID)
	s.mu.Unlock()
	stop(previous)

	if err := s.pipeline.Prepare(ctx, sessionID, q); err != nil {
		s.finish(sessionID, r)
		return "", err
	}

	s.launch(runCtx, sessionID, q, r)
	return sessionID, nil
}

// Retry restarts a failed session from its saved request. Only one run per
// session may be active.
func (s *Service) Retry(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	if _, busy := s.running[sessionID]; busy {
		s.mu.Unlock()
		return apperr.Conflict("A quote is already being processed for this session.").WithOp("quote.retry")
	}
	runCtx, r := s.reserveLocked(ctx, sessionID)
	s.mu.Unlock()

	q, err := s.pipeline.PrepareRetry(ctx, sessionID)
	if err != nil {
		s.finish(sessionID, r)
		return err
	}

	s.launch(runCtx, sessionID, q, r)
	return nil
}

// Session returns the current view of a session.
func (s *Service) Session(ctx context.Context, sessionID string) (SessionView, error) {
	state := workflow.LoadState(ctx, s.store, sessionID)
	if state.Status == presentation.StatusIdle {
		return SessionView{}, apperr.NotFound("Quote session not found or expired.").WithOp("quote.session")
	}
	return SessionView{SessionID: sessionID, State: state}, nil
}

// Cancel stops any running pipeline for the session, waits for it to exit
// and clears its slots.
func (s *Service) Cancel(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	r := s.running[sessionID]
	delete(s.running, sessionID)
	s.mu.Unlock()
	stop(r)

	if err := s.store.Clear(ctx, sessionID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "The quote session could not be cleared.", err).WithOp("quote.cancel")
	}
	return nil
}

// GetQuote retrieves a stored quote by its upstream ID.
func (s *Service) GetQuote(ctx context.Context, quoteID string) (*domain.ResolvedQuote, error) {
	return s.quotes.GetQuote(ctx, quoteID, "")
}

// Attempts lists the submission log of a session, newest first.
func (s *Service) Attempts(ctx context.Context, sessionID string, limit int) ([]repository.Attempt, error) {
	if s.attempts == nil {
		return nil, apperr.NotFound("Submission history is not enabled.").WithOp("quote.attempts")
	}
	list, err := s.attempts.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Submission history could not be loaded.", err).WithOp("quote.attempts")
	}
	return list, nil
}

// Shutdown cancels every running pipeline and waits for them to exit or
// for ctx to end.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, r := range s.running {
		r.cancel()
		delete(s.running, id)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every running pipeline has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// reserveLocked registers a new run for the session, replacing any current
// one. The caller holds s.mu.
func (s *Service) reserveLocked(parent context.Context, sessionID string) (context.Context, *run) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	ctx = context.WithValue(ctx, logger.SessionIDKey, sessionID)

	s.nextRun++
	r := &run{id: s.nextRun, cancel: cancel, done: make(chan struct{})}
	s.running[sessionID] = r
	return ctx, r
}

func (s *Service) launch(ctx context.Context, sessionID string, q domain.Questionnaire, r *run) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.finish(sessionID, r)

		res := s.pipeline.Execute(ctx, sessionID, q)
		if res.Cancelled || ctx.Err() != nil {
			return
		}
		s.record(ctx, res)
		s.publish(ctx, res)
	}()
}

// finish releases r. The session entry is dropped only if r is still the
// current run.
func (s *Service) finish(sessionID string, r *run) {
	r.cancel()

	s.mu.Lock()
	if current, ok := s.running[sessionID]; ok && current.id == r.id {
		delete(s.running, sessionID)
	}
	s.mu.Unlock()
	close(r.done)
}

// stop cancels r and waits until it has exited.
func stop(r *run) {
	if r == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (s *Service) record(ctx context.Context, res workflow.Result) {
	if s.attempts == nil || res.ReferenceID == "" {
		return
	}

	now := s.now().UTC()
	a := repository.Attempt{
		ExternalReferenceID: res.ReferenceID,
		SessionID:           res.SessionID,
		ResolvedAt:          &now,
	}
	if res.QuoteID != "" {
		a.QuoteID = &res.QuoteID
	}

	if res.Err != nil {
		kind := res.Err.Kind.String()
		a.Status = repository.StatusFailed
		a.ErrorKind = &kind
		a.ErrorMessage = &res.Err.Message
	} else {
		a.Status = repository.StatusComplete
		a.Premium = &res.Quote.Premium
		a.Excess = &res.Quote.Excess
	}

	if err := s.attempts.Save(ctx, a); err != nil {
		s.log.WithContext(ctx).Error("failed to record quote attempt", "error", err, "reference_id", res.ReferenceID)
	}
}

func (s *Service) publish(ctx context.Context, res workflow.Result) {
	if s.eventBus == nil {
		return
	}

	applicant := applicantOf(res.Request)
	if res.Err != nil {
		s.eventBus.Publish(ctx, events.QuoteFailed{
			BaseEvent:    events.NewBaseEvent(),
			SessionID:    res.SessionID,
			ReferenceID:  res.ReferenceID,
			QuoteID:      res.QuoteID,
			ErrorCode:    res.Err.Kind.String(),
			ErrorMessage: res.Err.Message,
			Applicant:    applicant,
			AgentEmail:   res.Request.String("agentEmail"),
		})
		return
	}

	s.eventBus.Publish(ctx, events.QuoteResolved{
		BaseEvent:   events.NewBaseEvent(),
		SessionID:   res.SessionID,
		ReferenceID: res.ReferenceID,
		QuoteID:     res.Quote.QuoteID,
		Premium:     res.Quote.Premium,
		Excess:      res.Quote.Excess,
		Applicant:   applicant,
		AgentEmail:  res.Request.String("agentEmail"),
		AgentBranch: res.Request.String("agentBranch"),
		ResolvedAt:  res.Quote.ResolvedAt,
	})
}

func applicantOf(q domain.Questionnaire) events.Applicant {
	return events.Applicant{
		FirstName: q.String("firstName"),
		LastName:  q.String("lastName"),
		Email:     q.String("email"),
		Phone:     q.String("mobileNumber"),
	}
}
