// Package service fans relay requests out to individual recipients.
package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/internal/mailrelay/transport"
	"quote_portal_backend/platform/apperr"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/sanitize"
)

// maxParallelSends bounds concurrent SMTP sessions per request.
const maxParallelSends = 4

// Service relays emails through a Sender.
type Service struct {
	sender   sender.Sender
	fallback []string
	log      *logger.Logger
}

// New creates a relay service. fallback receives requests without a recipient.
func New(s sender.Sender, fallback []string, log *logger.Logger) *Service {
	return &Service{sender: s, fallback: fallback, log: log}
}

// Recipients splits a comma-separated address list, falling back to the
// configured notification recipients when raw is blank.
func (s *Service) Recipients(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return append([]string(nil), s.fallback...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Send delivers req to every recipient. Per-recipient failures are reported
// in the result list, which keeps the input order.
func (s *Service) Send(ctx context.Context, req transport.SendEmailRequest) (transport.SendEmailResponse, error) {
	const op = "mailrelay.send"

	recipients := s.Recipients(req.To)
	if len(recipients) == 0 || req.Subject == "" || req.HTML == "" {
		return transport.SendEmailResponse{}, apperr.BadRequest("Missing required fields to, subject, or html").WithOp(op)
	}
	if s.sender == nil {
		return transport.SendEmailResponse{}, apperr.Internal("SMTP is not configured").WithOp(op)
	}

	if err := s.sender.Verify(ctx); err != nil {
		return transport.SendEmailResponse{}, apperr.Wrap(apperr.KindInternal, "SMTP server connection failed: "+err.Error(), err).WithOp(op)
	}

	text := req.Text
	if text == "" {
		text = sanitize.HTMLToText(req.HTML)
	}

	results := make([]transport.RecipientResult, len(recipients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelSends)
	for i, to := range recipients {
		g.Go(func() error {
			id, err := s.sender.Send(gctx, sender.Message{
				From:    req.From,
				To:      to,
				Subject: req.Subject,
				HTML:    req.HTML,
				Text:    text,
			})
			if err != nil {
				s.log.WithContext(ctx).Warn("relay send failed", "recipient", to, "error", err)
				results[i] = transport.RecipientResult{Recipient: to, Error: err.Error()}
				return nil
			}
			s.log.WithContext(ctx).Info("relay email sent", "recipient", to, "message_id", id)
			results[i] = transport.RecipientResult{Recipient: to, MessageID: id, Success: true}
			return nil
		})
	}
	_ = g.Wait()

	resp := transport.SendEmailResponse{Success: true, Results: results}
	for _, r := range results {
		if !r.Success {
			resp.Success = false
		}
	}
	if resp.Success {
		resp.Message = fmt.Sprintf("Emails successfully sent to %d recipients", len(results))
	} else {
		resp.Message = "Some emails failed to send"
	}
	return resp, nil
}
