// Package jobrequests provides the job request bounded context module.
package jobrequests

import (
	"bosfinder_backend/internal/events"
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/internal/jobrequests/handler"
	"bosfinder_backend/internal/jobrequests/repository"
	"bosfinder_backend/internal/jobrequests/service"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"
)

// Dependencies are the ports the job request module consumes from other modules.
type Dependencies struct {
	Clients     service.ClientReader
	Catalog     service.CatalogLookup
	Leads       service.LeadGate
	Preferences service.BosPreferences
}

// Module is the job request bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the job request module.
func NewModule(store docstore.Store, deps Dependencies, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(store), deps.Clients, deps.Catalog, deps.Leads, eventBus, log)
	return &Module{
		handler: handler.New(svc, deps.Preferences, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "jobrequests"
}

// Service returns the job request service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts job request routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/job-requests/:id", m.handler.Get)

	clients := ctx.Protected.Group("/job-requests", httpkit.RequireRole(httpkit.RoleClient))
	clients.POST("", m.handler.Create)
	clients.GET("/mine", m.handler.Mine)
	clients.PATCH("/:id/status", m.handler.UpdateStatus)

	bos := ctx.Protected.Group("/job-requests", httpkit.RequireRole(httpkit.RoleBos))
	bos.GET("/matching", m.handler.Matching)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
