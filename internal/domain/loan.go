package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusActive    = "active"
	LoanStatusPaidOff   = "paid_off"
	LoanStatusDefaulted = "defaulted"
)

const (
	LoanTypePersonal = "personal"
	LoanTypeAuto     = "auto"
	LoanTypeHome     = "home"
)

// Loan represents a loan entity originated from an approved application
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	ApplicationID   uuid.UUID       `json:"application_id" db:"application_id"`
	LoanType        string          `json:"loan_type" db:"loan_type"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TermMonths      int             `json:"term_months" db:"term_months"`
	MonthlyPayment  decimal.Decimal `json:"monthly_payment" db:"monthly_payment"`
	CurrentBalance  decimal.Decimal `json:"current_balance" db:"current_balance"`
	Status          string          `json:"status" db:"status"`
	OriginationDate *time.Time      `json:"origination_date,omitempty" db:"origination_date"`
	MaturityDate    *time.Time      `json:"maturity_date,omitempty" db:"maturity_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanSummary is the per-loan projection shown on the dashboard
// (previously the user_loans_summary database view).
type LoanSummary struct {
	ID             uuid.UUID       `json:"id"`
	LoanType       string          `json:"loan_type"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	Status         string          `json:"status"`
	NextDueDate    *time.Time      `json:"next_due_date,omitempty"`
}

type LoanDetailResponse struct {
	Loan           *Loan          `json:"loan"`
	NextPayment    *ScheduleEntry `json:"next_payment,omitempty"`
	RecentPayments []*Payment     `json:"recent_payments"`
}

type MakePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"omitempty,oneof=bank_transfer gcash card cash"`
}

type DelinquencyResponse struct {
	LoanID       uuid.UUID `json:"loan_id"`
	IsDelinquent bool      `json:"is_delinquent"`
	MissedCount  int       `json:"missed_count"`
}
