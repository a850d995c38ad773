// Package notification provides event handlers for sending notifications
// in response to domain events. Domain modules publish events and never
// touch mail transport or templates.
package notification

import (
	"context"
	"fmt"
	"strings"

	"quote_portal_backend/internal/events"
	"quote_portal_backend/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	dispatcher Dispatcher
	recipients []string
	log        *logger.Logger
}

// New creates the notification module. recipients always receive every
// notification; agents are added per event when known.
func New(dispatcher Dispatcher, recipients []string, log *logger.Logger) *Module {
	return &Module{dispatcher: dispatcher, recipients: recipients, log: log}
}

// RegisterHandlers subscribes to the events that produce notifications.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.QuoteResolvedName, m)
	bus.Subscribe(events.QuoteFailedName, m)
	bus.Subscribe(events.LeadTransferredName, m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteResolved:
		return m.handleQuoteResolved(ctx, e)
	case events.QuoteFailed:
		return m.handleQuoteFailed(ctx, e)
	case events.LeadTransferred:
		return m.handleLeadTransferred(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleQuoteResolved(ctx context.Context, e events.QuoteResolved) error {
	name := e.Applicant.FullName()
	premium := formatRand(e.Premium)
	resolvedAt := e.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = e.OccurredAt()
	}

	content, err := renderEmailTemplate("quote_resolved.html", quoteResolvedEmailData{
		baseEmailData: applicantData("Quote completed", e.Applicant),
		ReferenceID:   e.ReferenceID,
		QuoteID:       e.QuoteID,
		Premium:       premium,
		Excess:        formatRand(e.Excess),
		AgentBranch:   e.AgentBranch,
		OccurredAt:    resolvedAt.Format(timeLayout),
	})
	if err != nil {
		return err
	}

	return m.dispatch(ctx, Email{
		Event:   e.EventName(),
		To:      m.audience(e.AgentEmail),
		Subject: fmt.Sprintf(subjectQuoteResolvedFmt, name, premium),
		HTML:    content,
	})
}

func (m *Module) handleQuoteFailed(ctx context.Context, e events.QuoteFailed) error {
	content, err := renderEmailTemplate("quote_failed.html", quoteFailedEmailData{
		baseEmailData: applicantData("Quote failed", e.Applicant),
		ReferenceID:   e.ReferenceID,
		ErrorCode:     e.ErrorCode,
		ErrorMessage:  e.ErrorMessage,
	})
	if err != nil {
		return err
	}

	return m.dispatch(ctx, Email{
		Event:   e.EventName(),
		To:      m.audience(e.AgentEmail),
		Subject: fmt.Sprintf(subjectQuoteFailedFmt, e.Applicant.FullName()),
		HTML:    content,
	})
}

func (m *Module) handleLeadTransferred(ctx context.Context, e events.LeadTransferred) error {
	content, err := renderEmailTemplate("lead_transferred.html", leadTransferredEmailData{
		baseEmailData: applicantData("Lead transferred", e.Applicant),
		ClientID:      e.ClientID,
		QuoteID:       e.QuoteID,
		RedirectURL:   e.RedirectURL,
		Agent:         e.Agent,
		Branch:        e.Branch,
	})
	if err != nil {
		return err
	}

	return m.dispatch(ctx, Email{
		Event:   e.EventName(),
		To:      m.audience(""),
		Subject: fmt.Sprintf(subjectLeadTransferredFmt, e.Applicant.FullName()),
		HTML:    content,
	})
}

func (m *Module) dispatch(ctx context.Context, email Email) error {
	if m.dispatcher == nil {
		m.log.Debug("notification skipped; no dispatcher", "event", email.Event)
		return nil
	}
	if len(email.To) == 0 {
		m.log.Debug("notification skipped; no recipients", "event", email.Event)
		return nil
	}
	if err := m.dispatcher.Dispatch(ctx, email); err != nil {
		return fmt.Errorf("dispatch %s: %w", email.Event, err)
	}
	m.log.Info("notification dispatched", "event", email.Event, "recipients", len(email.To))
	return nil
}

// audience merges the configured recipients with extra, dropping duplicates.
func (m *Module) audience(extra string) []string {
	seen := make(map[string]bool, len(m.recipients)+1)
	var out []string
	for _, addr := range append(append([]string(nil), m.recipients...), extra) {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}

func applicantData(heading string, a events.Applicant) baseEmailData {
	return baseEmailData{
		Title:          heading,
		Heading:        heading,
		ApplicantName:  a.FullName(),
		ApplicantEmail: a.Email,
		ApplicantPhone: a.Phone,
	}
}
