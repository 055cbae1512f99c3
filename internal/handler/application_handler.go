package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/middleware"
	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/pkg/response"
)

// ApplicationHandler exposes the loan application form endpoints.
type ApplicationHandler struct {
	appSvc *service.ApplicationService
	log    *logrus.Logger
}

func NewApplicationHandler(appSvc *service.ApplicationService, log *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc, log: log}
}

// Submit handles POST /api/v1/applications. The response keeps the
// form client's wire shape rather than the standard envelope.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitApplicationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.appSvc.Submit(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Raw(w, http.StatusCreated, result)
}

// ValidateStep handles POST /api/v1/applications/validate-step
func (h *ApplicationHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	var req domain.ValidateStepRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	response.Success(w, h.appSvc.ValidateStep(&req))
}

// List handles GET /api/v1/applications
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	apps, err := h.appSvc.ListByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, apps)
}

// Get handles GET /api/v1/applications/{id}
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	appID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid application id", err)
		return
	}

	app, err := h.appSvc.GetByID(r.Context(), userID, appID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, app)
}

// Review handles PUT /api/v1/applications/{id}/status
func (h *ApplicationHandler) Review(w http.ResponseWriter, r *http.Request) {
	appID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid application id", err)
		return
	}

	var req domain.ReviewApplicationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	app, err := h.appSvc.Review(r.Context(), appID, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, app)
}
