// Package quoting provides the quote submission and resolution module.
package quoting

import (
	apphttp "quote_portal_backend/internal/http"
	"quote_portal_backend/internal/quoting/client"
	"quote_portal_backend/internal/quoting/handler"
	"quote_portal_backend/internal/quoting/repository"
	"quote_portal_backend/internal/quoting/service"
	"quote_portal_backend/internal/quoting/session"
	"quote_portal_backend/internal/quoting/transform"
	"quote_portal_backend/internal/quoting/workflow"
	"quote_portal_backend/platform/config"
	"quote_portal_backend/platform/events"
	"quote_portal_backend/platform/logger"
	"quote_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config combines the config interfaces the module needs.
type Config interface {
	config.QuoteAPIConfig
	config.PollConfig
}

// Module represents the quoting domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quoting module with all dependencies wired.
// pool may be nil, in which case the submission log is disabled.
func NewModule(cfg Config, store session.Store, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	quoteClient := client.New(cfg, log)
	pipeline := workflow.NewPipeline(
		transform.New(log),
		quoteClient,
		workflow.NewResolver(quoteClient, cfg, log),
		store,
		log,
	)

	svc := service.New(pipeline, store, quoteClient, log)
	svc.SetEventBus(eventBus)
	if pool != nil {
		svc.SetAttemptLog(repository.New(pool))
	}

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quoting"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/quotes"), ctx.SubmitRateLimit)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
