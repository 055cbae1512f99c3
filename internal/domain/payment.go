package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an append-only ledger row recording money received
// against a loan. Payments are never updated or deleted.
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      uuid.UUID       `json:"loan_id" db:"loan_id"`
	ScheduleID  *uuid.UUID      `json:"schedule_id,omitempty" db:"schedule_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
	Method      string          `json:"method" db:"method"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
