package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/middleware"
	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/pkg/response"
)

// ProfileHandler exposes the borrower profile and referral endpoints.
type ProfileHandler struct {
	profileSvc  *service.ProfileService
	referralSvc *service.ReferralService
	log         *logrus.Logger
}

func NewProfileHandler(profileSvc *service.ProfileService, referralSvc *service.ReferralService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc, referralSvc: referralSvc, log: log}
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	profile, err := h.profileSvc.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, profile)
}

// Update handles PUT /api/v1/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req domain.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profileSvc.Update(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, profile)
}

// Referral handles GET /api/v1/referrals
func (h *ProfileHandler) Referral(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	referral, err := h.referralSvc.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, referral)
}

// SendInvite handles POST /api/v1/referrals/invite
func (h *ProfileHandler) SendInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req domain.SendInviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.referralSvc.SendInvite(r.Context(), userID, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Invite sent"})
}
