package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cardgen_backend/internal/quota/service"
	"cardgen_backend/internal/quota/transport"
	"cardgen_backend/platform/httpkit"
	"cardgen_backend/platform/logger"
	"cardgen_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidUserID    = "invalid user ID"
	msgNothingToGrant   = "grant requires a plan or an extra request count"
)

// Handler exposes the admin quota endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// GetStatus returns a user's quota balances.
// GET /api/v1/admin/quota/:userID
func (h *Handler) GetStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || userID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	st, err := h.svc.Status(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	remaining, err := h.svc.Remaining(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toStatusResponse(userID, st, remaining))
}

// Grant activates a plan for a user, credits extra requests, or both.
// POST /api/v1/admin/quota/:userID/grant
func (h *Handler) Grant(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || userID < 1 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidUserID, nil)
		return
	}

	var req transport.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	if req.Plan == "" && req.Extra == 0 {
		httpkit.Error(c, http.StatusBadRequest, msgNothingToGrant, nil)
		return
	}

	if req.Plan != "" {
		if err := h.svc.SetPlan(c.Request.Context(), userID, req.Plan); httpkit.HandleError(c, err) {
			return
		}
	}
	if req.Extra > 0 {
		if err := h.svc.AddExtra(c.Request.Context(), userID, req.Extra); httpkit.HandleError(c, err) {
			return
		}
	}

	remaining, err := h.svc.Remaining(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}

	// Audit trail: which admin granted what.
	admin := httpkit.GetIdentity(c)
	h.log.Info("quota granted",
		"admin", admin.UserID().String(),
		"userId", userID,
		"plan", req.Plan,
		"extra", req.Extra,
		"remaining", remaining,
	)

	httpkit.OK(c, transport.GrantResponse{
		UserID:    userID,
		Plan:      req.Plan,
		Extra:     req.Extra,
		Remaining: remaining,
	})
}

func toStatusResponse(userID int64, st service.Status, remaining int) transport.QuotaStatusResponse {
	resp := transport.QuotaStatusResponse{
		UserID:         userID,
		Plan:           st.Plan,
		FreeLeft:       st.FreeLeft,
		ExtraRemaining: st.ExtraRemaining,
		PlanRemaining:  st.PlanRemaining,
		Remaining:      remaining,
		Unlimited:      st.Unlimited,
	}
	if !st.NextReset.IsZero() {
		resp.NextResetAt = st.NextReset.Format(time.RFC3339)
	}
	return resp
}
