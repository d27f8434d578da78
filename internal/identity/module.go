// Package identity provides the user records of clients and professionals.
// Authentication itself is external; users are keyed by the token subject.
package identity

import (
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/internal/identity/handler"
	"bosfinder_backend/internal/identity/repository"
	"bosfinder_backend/internal/identity/service"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"
)

// Module is the identity bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the identity module with all its dependencies.
func NewModule(store docstore.Store, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(store), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "identity"
}

// Service returns the identity service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts user routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/users", m.handler.Create)
	ctx.Protected.GET("/users/me", m.handler.Me)
	ctx.Protected.PATCH("/users/me", m.handler.UpdateMe)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
