package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/middleware"
	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/pkg/response"
)

// LoanHandler exposes loan servicing endpoints: summaries, details,
// schedules, the transaction ledger and payments.
type LoanHandler struct {
	loanSvc   *service.LoanService
	ledgerSvc *service.LedgerService
	log       *logrus.Logger
}

func NewLoanHandler(loanSvc *service.LoanService, ledgerSvc *service.LedgerService, log *logrus.Logger) *LoanHandler {
	return &LoanHandler{loanSvc: loanSvc, ledgerSvc: ledgerSvc, log: log}
}

// List handles GET /api/v1/loans
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	summaries, err := h.loanSvc.ListSummaries(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, summaries)
}

// Get handles GET /api/v1/loans/{id}
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, loanID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	detail, err := h.loanSvc.GetDetail(r.Context(), userID, loanID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, detail)
}

// Schedule handles GET /api/v1/loans/{id}/schedule
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	userID, loanID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	schedule, err := h.loanSvc.GetSchedule(r.Context(), userID, loanID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, schedule)
}

// Transactions handles GET /api/v1/loans/{id}/transactions with
// page and page_size query parameters.
func (h *LoanHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, loanID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", service.DefaultLedgerPageSize)

	ledger, err := h.ledgerSvc.GetLedgerPage(r.Context(), userID, loanID, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, ledger)
}

// MakePayment handles POST /api/v1/loans/{id}/payments
func (h *LoanHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	userID, loanID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	var req domain.MakePaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	payment, err := h.loanSvc.MakePayment(r.Context(), userID, loanID, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Created(w, payment)
}

// Outstanding handles GET /api/v1/loans/{id}/outstanding
func (h *LoanHandler) Outstanding(w http.ResponseWriter, r *http.Request) {
	userID, loanID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	balance, err := h.loanSvc.GetOutstanding(r.Context(), userID, loanID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"outstanding_balance": balance.StringFixed(2)})
}

// Delinquency handles GET /api/v1/loans/{id}/delinquency
func (h *LoanHandler) Delinquency(w http.ResponseWriter, r *http.Request) {
	userID, loanID, ok := h.authorize(w, r)
	if !ok {
		return
	}

	result, err := h.loanSvc.IsDelinquent(r.Context(), userID, loanID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LoanHandler) authorize(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	loanID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, loanID, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
