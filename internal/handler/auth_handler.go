package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/middleware"
	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/pkg/response"
)

// AuthHandler exposes the registration and sign-in endpoints.
type AuthHandler struct {
	authSvc *service.AuthService
	log     *logrus.Logger
}

func NewAuthHandler(authSvc *service.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, log: log}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	auth, err := h.authSvc.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Created(w, auth)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	auth, err := h.authSvc.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, auth)
}

// SendOTP handles POST /api/v1/auth/otp/send
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authSvc.SendOTP(r.Context(), &req); err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Verification code sent"})
}

// VerifyOTP handles POST /api/v1/auth/otp/verify
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	auth, err := h.authSvc.VerifyOTP(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, auth)
}

// ChangePassword handles POST /api/v1/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req domain.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authSvc.ChangePassword(r.Context(), userID, &req); err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Password updated"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	user, err := h.authSvc.GetUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, user)
}
