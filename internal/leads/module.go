// Package leads provides the lead ledger bounded context module: leads, the
// contact unlock and the credit balance of professionals.
package leads

import (
	"bosfinder_backend/internal/events"
	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/internal/leads/handler"
	"bosfinder_backend/internal/leads/repository"
	"bosfinder_backend/internal/leads/service"
	"bosfinder_backend/platform/docstore"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(store docstore.Store, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(store), eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the ledger for other modules and the credit-grant command.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	bos := ctx.Protected.Group("", httpkit.RequireRole(httpkit.RoleBos))
	bos.POST("/job-requests/:id/lead", m.handler.OpenLead)
	bos.GET("/leads", m.handler.List)
	bos.GET("/leads/credits", m.handler.Credits)

	unlock := []gin.HandlerFunc{}
	if ctx.UnlockRateLimiter != nil {
		unlock = append(unlock, ctx.UnlockRateLimiter.ByUser())
	}
	unlock = append(unlock, m.handler.Unlock)
	bos.POST("/leads/:id/unlock", unlock...)

	ctx.Admin.POST("/bos-profiles/:id/credits", m.handler.Grant)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
