package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cashewph/lending-platform/pkg/response"

	customError "github.com/cashewph/lending-platform/pkg/errors"
)

var validate = validator.New()

// decodeAndValidate decodes a JSON body into dst and runs struct
// validation. A false return means the error response was already sent.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		response.BadRequest(w, "validation failed", err)
		return false
	}

	return true
}

// statusForCode maps business error codes onto HTTP statuses.
var statusForCode = map[string]int{
	customError.ErrCodeUserNotFound:         http.StatusNotFound,
	customError.ErrCodeUserAlreadyExists:    http.StatusConflict,
	customError.ErrCodeInvalidCredentials:   http.StatusUnauthorized,
	customError.ErrCodeOTPInvalid:           http.StatusUnauthorized,
	customError.ErrCodeOTPCooldown:          http.StatusTooManyRequests,
	customError.ErrCodeLoanNotFound:         http.StatusNotFound,
	customError.ErrCodeLoanNotActive:        http.StatusConflict,
	customError.ErrCodeNoOutstandingBalance: http.StatusConflict,
	customError.ErrCodeApplicationNotFound:  http.StatusNotFound,
	customError.ErrCodeValidationFailed:     http.StatusBadRequest,
	customError.ErrCodeInvalidStatusChange:  http.StatusConflict,
	customError.ErrCodeInvalidPaymentAmount: http.StatusBadRequest,
	customError.ErrCodeDocumentNotFound:     http.StatusNotFound,
	customError.ErrCodeSignatureInvalid:     http.StatusForbidden,
	customError.ErrCodeMinimumLoanAmount:    http.StatusBadRequest,
	customError.ErrCodeProfileNotFound:      http.StatusNotFound,
	customError.ErrCodeMailError:            http.StatusBadGateway,
}

// handleServiceError translates service-layer errors into HTTP
// responses, hiding internals behind a generic 500 when the code is
// not a client-facing one.
func handleServiceError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if errors.As(err, &bizErr) {
		if status, ok := statusForCode[bizErr.Code]; ok {
			response.Error(w, status, bizErr.Message, bizErr.Err)
			return
		}
	}

	response.InternalServerError(w, "something went wrong", nil)
}
