package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrOTPInvalid             = errors.New("invalid or expired code")
	ErrOTPCooldown            = errors.New("code requested too recently")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrLoanNotActive          = errors.New("loan is not active")
	ErrNoOutstandingBalance   = errors.New("no outstanding balance")
	ErrApplicationNotFound    = errors.New("application not found")
	ErrInvalidStepInput       = errors.New("please fill in all required fields")
	ErrInvalidStatusChange    = errors.New("status may only move forward")
	ErrInvalidPaymentAmount   = errors.New("invalid payment amount")
	ErrDocumentNotFound       = errors.New("document not found")
	ErrSignatureInvalid       = errors.New("signature invalid or expired")
	ErrMinimumLoanAmount      = errors.New("loan amount below minimum")
	ErrProfileNotFound        = errors.New("profile not found")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeUserAlreadyExists    = "USER_ALREADY_EXISTS"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeOTPInvalid           = "OTP_INVALID"
	ErrCodeOTPCooldown          = "OTP_COOLDOWN"
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodeLoanNotActive        = "LOAN_NOT_ACTIVE"
	ErrCodeNoOutstandingBalance = "NO_OUTSTANDING_BALANCE"
	ErrCodeApplicationNotFound  = "APPLICATION_NOT_FOUND"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeInvalidStatusChange  = "INVALID_STATUS_CHANGE"
	ErrCodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	ErrCodeDocumentNotFound     = "DOCUMENT_NOT_FOUND"
	ErrCodeSignatureInvalid     = "SIGNATURE_INVALID"
	ErrCodeMinimumLoanAmount    = "MINIMUM_LOAN_AMOUNT"
	ErrCodeProfileNotFound      = "PROFILE_NOT_FOUND"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
	ErrCodeStorageError         = "STORAGE_ERROR"
	ErrCodeMailError            = "MAIL_ERROR"
)

// Wrap common errors with business context
func WrapUserNotFound(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("No account found for %s", email),
		ErrUserNotFound,
	)
}

func WrapUserAlreadyExists(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserAlreadyExists,
		fmt.Sprintf("An account already exists for %s", email),
		ErrUserAlreadyExists,
	)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCredentials,
		"Invalid email or password",
		ErrInvalidCredentials,
	)
}

func WrapOTPInvalid() *BusinessError {
	return NewBusinessError(
		ErrCodeOTPInvalid,
		"The code is invalid or has expired",
		ErrOTPInvalid,
	)
}

func WrapOTPCooldown(seconds int) *BusinessError {
	return NewBusinessError(
		ErrCodeOTPCooldown,
		fmt.Sprintf("Please wait %d seconds before requesting another code", seconds),
		ErrOTPCooldown,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanNotActive(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan %s is not active", loanID),
		ErrLoanNotActive,
	)
}

func WrapApplicationNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Application %s not found", id),
		ErrApplicationNotFound,
	)
}

func WrapValidationFailed(step int) *BusinessError {
	return NewBusinessError(
		ErrCodeValidationFailed,
		fmt.Sprintf("Step %d is incomplete. Please fill in all required fields", step),
		ErrInvalidStepInput,
	)
}

func WrapInvalidStatusChange(from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatusChange,
		fmt.Sprintf("Cannot move application from %s to %s", from, to),
		ErrInvalidStatusChange,
	)
}

func WrapMinimumLoanAmount(minimum string) *BusinessError {
	return NewBusinessError(
		ErrCodeMinimumLoanAmount,
		fmt.Sprintf("Minimum loan amount is PHP %s", minimum),
		ErrMinimumLoanAmount,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}

func WrapStorageError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeStorageError,
		"storage operation failed",
		err,
	)
}

func WrapMailError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeMailError,
		"failed to send email",
		err,
	)
}
