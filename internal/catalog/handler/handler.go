package handler

import (
	"bosfinder_backend/internal/catalog/service"
	"bosfinder_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	svc *service.Service
}

// New creates a new catalog handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// List returns categories and communes.
// GET /api/v1/catalog
func (h *Handler) List(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	httpkit.OK(c, h.svc.List())
}
