package handler

import (
	"net/http"

	"bosfinder_backend/internal/reviews/service"
	"bosfinder_backend/internal/reviews/transport"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create reviews a professional.
// POST /api/v1/reviews
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", validator.FieldErrors(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ListByBos lists a professional's reviews.
// GET /api/v1/bos-profiles/:id/reviews
func (h *Handler) ListByBos(c *gin.Context) {
	result, err := h.svc.ListByBos(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
