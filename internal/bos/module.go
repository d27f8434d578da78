// Package bos provides the professional profile bounded context module.
package bos

import (
	"bosfinder_backend/internal/adapters/storage"
	"bosfinder_backend/internal/bos/handler"
	"bosfinder_backend/internal/bos/repository"
	"bosfinder_backend/internal/bos/service"
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"
)

// Module is the bos bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the profile module. photos may be nil.
func NewModule(store docstore.Store, owners service.OwnerReader, catalog service.CatalogLookup, photos storage.StorageService, cfg service.Config, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(store), owners, catalog, photos, cfg, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bos"
}

// Service returns the profile service for use by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts profile routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/bos-profiles", m.handler.Search)
	ctx.Protected.GET("/bos-profiles/:id", m.handler.Get)

	owner := ctx.Protected.Group("/bos-profiles", httpkit.RequireRole(httpkit.RoleBos))
	owner.POST("", m.handler.Create)
	owner.PATCH("/me", m.handler.UpdateMe)
	owner.PUT("/me/photo", m.handler.UploadPhoto)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
