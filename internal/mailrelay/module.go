// Package mailrelay provides the SMTP relay module.
package mailrelay

import (
	apphttp "quote_portal_backend/internal/http"
	"quote_portal_backend/internal/mailrelay/handler"
	"quote_portal_backend/internal/mailrelay/sender"
	"quote_portal_backend/internal/mailrelay/service"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/logger"
)

// Module represents the mail relay module
type Module struct {
	handler *handler.Handler
	sender  sender.Sender
}

// NewModule creates the relay. Without SMTP settings every send answers 500.
func NewModule(cfg config.SMTPConfig, log *logger.Logger) *Module {
	var s sender.Sender
	if cfg.IsSMTPEnabled() {
		s = sender.NewSMTPSender(cfg)
	} else {
		log.Warn("SMTP_HOST not set; email relay disabled")
	}

	svc := service.New(s, cfg.GetNotificationEmails(), log)
	return &Module{handler: handler.New(svc), sender: s}
}

// Sender exposes the SMTP sender for notification delivery. Nil when SMTP
// is not configured.
func (m *Module) Sender() sender.Sender {
	return m.sender
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "mailrelay"
}

// RegisterRoutes mounts the relay under /api.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.API, ctx.SubmitRateLimit)
}

var _ apphttp.Module = (*Module)(nil)
