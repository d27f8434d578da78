// Package catalog provides the reference data bounded context module.
package catalog

import (
	"bosfinder_backend/internal/catalog/handler"
	"bosfinder_backend/internal/catalog/repository"
	"bosfinder_backend/internal/catalog/service"
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/platform/validator"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule loads the embedded catalog and registers its validation tags on val.
func NewModule(val *validator.Validator) (*Module, error) {
	repo, err := repository.Default()
	if err != nil {
		return nil, err
	}
	svc := service.New(repo)
	if err := svc.RegisterValidations(val); err != nil {
		return nil, err
	}

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/catalog", m.handler.List)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
