package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
	ScheduleStatusFailed  = "failed"
)

// ScheduleEntry represents one installment of a loan's payment schedule
type ScheduleEntry struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	LoanID          uuid.UUID       `json:"loan_id" db:"loan_id"`
	PaymentNumber   int             `json:"payment_number" db:"payment_number"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	AmountDue       decimal.Decimal `json:"amount_due" db:"amount_due"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaidDate        *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	Status          string          `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

type ScheduleResponse struct {
	LoanID   uuid.UUID        `json:"loan_id"`
	Schedule []*ScheduleEntry `json:"schedule"`
}
