package handler

import (
	"net/http"

	"bosfinder_backend/internal/jobrequests/service"
	"bosfinder_backend/internal/jobrequests/transport"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for job requests.
type Handler struct {
	svc         *service.Service
	preferences service.BosPreferences
	val         *validator.Validator
}

// New creates a new job request handler.
func New(svc *service.Service, preferences service.BosPreferences, val *validator.Validator) *Handler {
	return &Handler{svc: svc, preferences: preferences, val: val}
}

// Create posts a job request.
// POST /api/v1/job-requests
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateJobRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	job, err := h.svc.Create(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, job)
}

// Mine lists the caller's job requests.
// GET /api/v1/job-requests/mine
func (h *Handler) Mine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListByClient(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Matching lists open job requests for a professional. Without query filters
// the caller's profile categories and commune apply.
// GET /api/v1/job-requests/matching
func (h *Handler) Matching(c *gin.Context) {
	var req transport.MatchingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	ctx := c.Request.Context()
	categories := req.Categories
	var commune *string
	if req.Commune != "" {
		commune = &req.Commune
	}
	if len(categories) == 0 {
		profileCategories, profileCommune, err := h.preferences.MatchingPreferences(ctx, identity.UserID())
		if httpkit.HandleError(c, err) {
			return
		}
		categories = profileCategories
		if commune == nil && profileCommune != "" {
			commune = &profileCommune
		}
	}

	result, err := h.svc.MatchingJobRequests(ctx, categories, commune)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns the owner view to the posting client and the gated view to professionals.
// GET /api/v1/job-requests/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	ctx := c.Request.Context()
	if identity.HasRole(httpkit.RoleBos) {
		view, err := h.svc.GetForBos(ctx, c.Param("id"), identity.UserID())
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, view)
		return
	}

	job, err := h.svc.GetForOwner(ctx, c.Param("id"), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, job)
}

// UpdateStatus changes the status of the caller's job request.
// PATCH /api/v1/job-requests/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	ctx := c.Request.Context()
	if err := h.svc.UpdateStatus(ctx, c.Param("id"), identity.UserID(), req.Status); httpkit.HandleError(c, err) {
		return
	}
	job, err := h.svc.GetForOwner(ctx, c.Param("id"), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, job)
}
