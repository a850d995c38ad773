// Package leadtransfer provides the lead transfer module.
package leadtransfer

import (
	apphttp "quote_portal_backend/internal/http"
	"quote_portal_backend/internal/leadtransfer/client"
	"quote_portal_backend/internal/leadtransfer/handler"
	"quote_portal_backend/internal/leadtransfer/service"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/events"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/validator"
)

// Module represents the lead transfer domain module
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new lead transfer module with all dependencies wired.
func NewModule(cfg config.LeadTransferConfig, sessions service.SessionCanceller, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	var transferrer service.Transferrer
	if cfg.IsLeadTransferEnabled() {
		transferrer = client.New(cfg, log)
	} else {
		log.Warn("LEAD_TRANSFER_URL not set; lead transfers will be rejected")
	}

	svc := service.New(transferrer, sessions, log)
	svc.SetEventBus(eventBus)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "leadtransfer"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"), ctx.SubmitRateLimit)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
