package handler

import (
	"errors"
	"net/http"

	"bosfinder_backend/internal/leads/repository"
	"bosfinder_backend/internal/leads/service"
	"bosfinder_backend/internal/leads/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for leads and credits.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// OpenLead returns the caller's lead on a job request, creating it on first use.
// POST /api/v1/job-requests/:id/lead
func (h *Handler) OpenLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	lead, err := h.svc.GetOrCreateLead(c.Request.Context(), c.Param("id"), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(lead))
}

// List returns the caller's leads.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	leads, err := h.svc.ListLeadsByBos(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}
	httpkit.OK(c, transport.LeadListResponse{Items: items, Total: len(items)})
}

// Unlock spends one credit to reveal the client contact of a lead.
// POST /api/v1/leads/:id/unlock
func (h *Handler) Unlock(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UnlockContact(c.Request.Context(), c.Param("id"), identity.UserID())
	if err != nil {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind == apperr.KindStorage {
			httpkit.HandleError(c, err)
			return
		}
		message := result.Message
		if message == "" {
			message = appErr.Message
		}
		httpkit.JSON(c, appErr.HTTPStatus(), transport.UnlockResponse{
			Success:     false,
			Message:     message,
			LeadCredits: result.LeadCredits,
		})
		return
	}

	lead := toLeadResponse(result.Lead)
	httpkit.OK(c, transport.UnlockResponse{
		Success:         result.Success,
		Message:         result.Message,
		Lead:            &lead,
		LeadCredits:     result.LeadCredits,
		AlreadyUnlocked: result.AlreadyUnlocked,
	})
}

// Credits returns the caller's balance and credit history.
// GET /api/v1/leads/credits
func (h *Handler) Credits(c *gin.Context) {
	var req transport.CreditHistoryRequest
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
	balance, err := h.svc.Balance(ctx, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	entries, err := h.svc.CreditHistory(ctx, identity.UserID(), req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}

	history := make([]transport.CreditEntryResponse, 0, len(entries))
	for _, e := range entries {
		history = append(history, transport.CreditEntryResponse{
			ID:           e.ID,
			Type:         e.Type,
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			LeadID:       e.LeadID,
			Note:         e.Note,
			CreatedAt:    e.CreatedAt,
		})
	}
	httpkit.OK(c, transport.CreditsResponse{Balance: balance, History: history})
}

// Grant adds credits to a professional (admin only).
// POST /api/v1/admin/bos-profiles/:id/credits
func (h *Handler) Grant(c *gin.Context) {
	var req transport.GrantCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	bosID := c.Param("id")
	balance, err := h.svc.GrantCredits(c.Request.Context(), bosID, req.Amount, req.Note)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.GrantCreditsResponse{BosID: bosID, Balance: balance})
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                 lead.ID,
		JobRequestID:       lead.JobRequestID,
		BosID:              lead.BosID,
		HasUnlockedContact: lead.HasUnlockedContact,
		UnlockedAt:         lead.UnlockedAt,
		CreatedAt:          lead.CreatedAt,
	}
}
