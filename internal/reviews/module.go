// Package reviews provides client ratings of professionals.
package reviews

import (
	"bosfinder_backend/internal/events"
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/internal/reviews/handler"
	"bosfinder_backend/internal/reviews/repository"
	"bosfinder_backend/internal/reviews/service"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"
)

// Module is the reviews bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(store docstore.Store, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(store), eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reviews"
}

// Service returns the reviews service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts review routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/bos-profiles/:id/reviews", m.handler.ListByBos)
	ctx.Protected.POST("/reviews", httpkit.RequireRole(httpkit.RoleClient), m.handler.Create)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
