package handler

import (
	"net/http"

	"bosfinder_backend/internal/bos/service"
	"bosfinder_backend/internal/bos/transport"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	photoFormField      = "photo"
)

// Handler handles HTTP requests for bòs profiles.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new profile handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create creates the caller's profile.
// POST /api/v1/bos-profiles
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateProfileRequest
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

	profile, err := h.svc.CreateProfile(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, profile)
}

// Search lists professionals by category, commune and minimum rating.
// GET /api/v1/bos-profiles
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchProfilesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.SearchProfiles(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns a single profile.
// GET /api/v1/bos-profiles/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), c.Param("id"), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

// UpdateMe edits the caller's profile.
// PATCH /api/v1/bos-profiles/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var req transport.UpdateProfileRequest
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

	profile, err := h.svc.UpdateProfile(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

// UploadPhoto replaces the caller's profile photo.
// PUT /api/v1/bos-profiles/me/photo (multipart field "photo")
func (h *Handler) UploadPhoto(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	header, err := c.FormFile(photoFormField)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "photo file is required", nil)
		return
	}
	file, err := header.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer file.Close()

	profile, err := h.svc.UploadPhoto(c.Request.Context(), identity.UserID(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}
