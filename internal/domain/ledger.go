package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LedgerRowInstallment = "installment"
	LedgerRowPayment     = "payment"
)

// LedgerRow is one display-ready entry of a loan's transaction ledger:
// either an installment coming due (a debit that increases the balance
// owed) or a payment posted (a credit that decreases it). The running
// balance reflects every row up to and including this one in
// chronological order. Previously the loan_transactions database view.
type LedgerRow struct {
	Type           string          `json:"type"`
	Date           time.Time       `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	ScheduleID     *uuid.UUID      `json:"schedule_id,omitempty"`
	PaymentID      *uuid.UUID      `json:"payment_id,omitempty"`
	Status         string          `json:"status"`
	IsOverdue      bool            `json:"is_overdue"`
	DaysOverdue    int             `json:"days_overdue"`
	IsNextDue      bool            `json:"is_next_due"`
}

// LedgerSummary carries the aggregates shown above the ledger table.
type LedgerSummary struct {
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	PaymentCount       int             `json:"payment_count"`
	PaidThisMonth      decimal.Decimal `json:"paid_this_month"`
	IsFullyPaid        bool            `json:"is_fully_paid"`
}

type LedgerPage struct {
	LoanID     uuid.UUID     `json:"loan_id"`
	Rows       []*LedgerRow  `json:"rows"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalRows  int           `json:"total_rows"`
	TotalPages int           `json:"total_pages"`
	Summary    LedgerSummary `json:"summary"`
}
