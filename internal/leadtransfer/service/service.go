// Package service forwards captured leads to the downstream insurer.
package service

import (
	"context"

	"quote_portal_backend/internal/events"
	"quote_portal_backend/internal/leadtransfer/client"
	"quote_portal_backend/internal/leadtransfer/transport"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/logger"
)

// Transferrer sends a lead upstream.
type Transferrer interface {
	Transfer(ctx context.Context, lead client.Lead) (client.Result, error)
}

// SessionCanceller ends a quote session superseded by a transfer.
type SessionCanceller interface {
	Cancel(ctx context.Context, sessionID string) error
}

// Service handles lead transfer business logic.
type Service struct {
	client   Transferrer
	sessions SessionCanceller
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new lead transfer service. client may be nil when the
// transfer API is not configured.
func New(c Transferrer, sessions SessionCanceller, log *logger.Logger) *Service {
	return &Service{client: c, sessions: sessions, log: log}
}

// SetEventBus injects the event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Transfer forwards req and, on success, clears the caller's quote session
// and publishes LeadTransferred.
func (s *Service) Transfer(ctx context.Context, req transport.TransferRequest) (transport.TransferResponse, error) {
	if s.client == nil {
		return transport.TransferResponse{}, apperr.New(apperr.KindService, "Lead transfer is not configured.").WithOp("lead.transfer")
	}

	result, err := s.client.Transfer(ctx, client.NewLead(req.FormData, req.AgentInfo))
	if err != nil {
		s.log.WithContext(ctx).Warn("lead transfer failed", "error", err, "agent", req.AgentInfo.Agent)
		return transport.TransferResponse{}, err
	}

	if req.SessionID != "" && s.sessions != nil {
		if err := s.sessions.Cancel(ctx, req.SessionID); err != nil {
			s.log.WithContext(ctx).Warn("clearing quote session after transfer failed", "error", err, "session_id", req.SessionID)
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.LeadTransferred{
			BaseEvent:   events.NewBaseEvent(),
			ClientID:    result.ClientID,
			RedirectURL: result.RedirectURL,
			QuoteID:     req.FormData.QuoteID,
			Applicant: events.Applicant{
				FirstName: req.FormData.FirstName,
				LastName:  req.FormData.LastName,
				Email:     req.FormData.Email,
				Phone:     req.FormData.ContactNumber,
			},
			Agent:  req.AgentInfo.Agent,
			Branch: req.AgentInfo.Branch,
		})
	}

	return transport.TransferResponse{
		Success:     true,
		ClientID:    result.ClientID,
		RedirectURL: result.RedirectURL,
		Message:     result.Message,
	}, nil
}
