package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/repository"
	customError "github.com/cashewph/lending-platform/pkg/errors"
	"github.com/cashewph/lending-platform/pkg/utils"
)

const (
	DefaultLedgerPageSize = 20
	MaxLedgerPageSize     = 100
)

// LedgerService assembles a loan's transaction ledger: schedule entries
// and payments merged into one chronological sequence with a running
// balance. This computation previously lived in the loan_transactions
// database view; it is now done here over the raw rows.
type LedgerService struct {
	loanRepo    repository.LoanRepository
	paymentRepo repository.PaymentRepository
	log         *logrus.Logger
}

func NewLedgerService(loanRepo repository.LoanRepository, paymentRepo repository.PaymentRepository, log *logrus.Logger) *LedgerService {
	return &LedgerService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		log:         log,
	}
}

// GetLedgerPage returns one page of the ledger for a loan owned by the
// user. The running balance on every row reflects all prior rows, not
// just the current page, so the fold always runs over the full history.
func (s *LedgerService) GetLedgerPage(ctx context.Context, userID, loanID uuid.UUID, page, pageSize int) (*domain.LedgerPage, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if loan.UserID != userID {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}

	entries, err := s.loanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := time.Now()
	rows := AssembleLedger(entries, payments, now)
	summary := SummarizeLedger(rows, now)
	pagedRows, page, pageSize, totalPages := PaginateLedger(rows, page, pageSize)

	return &domain.LedgerPage{
		LoanID:     loanID,
		Rows:       pagedRows,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  len(rows),
		TotalPages: totalPages,
		Summary:    summary,
	}, nil
}

// AssembleLedger merges schedule entries and payments into one
// chronologically ordered ledger with a running balance. Rows sharing
// a date order installments before payments, so a same-day payment is
// shown satisfying that day's installment.
func AssembleLedger(entries []*domain.ScheduleEntry, payments []*domain.Payment, now time.Time) []*domain.LedgerRow {
	rows := make([]*domain.LedgerRow, 0, len(entries)+len(payments))

	var nextDueID *uuid.UUID
	for _, entry := range entries {
		if entry.Status != domain.ScheduleStatusPaid && nextDueID == nil {
			id := entry.ID
			nextDueID = &id
		}
	}

	for _, entry := range entries {
		entry := entry
		overdue := entry.Status != domain.ScheduleStatusPaid && utils.IsDateOverdue(entry.DueDate, now)

		row := &domain.LedgerRow{
			Type:        domain.LedgerRowInstallment,
			Date:        entry.DueDate,
			Amount:      entry.AmountDue,
			ScheduleID:  &entry.ID,
			Status:      entry.Status,
			IsOverdue:   overdue,
			DaysOverdue: 0,
			IsNextDue:   nextDueID != nil && *nextDueID == entry.ID,
		}
		if overdue {
			row.DaysOverdue = utils.DaysOverdue(entry.DueDate, now)
		}
		rows = append(rows, row)
	}

	for _, payment := range payments {
		payment := payment
		rows = append(rows, &domain.LedgerRow{
			Type:      domain.LedgerRowPayment,
			Date:      payment.PaymentDate,
			Amount:    payment.Amount,
			PaymentID: &payment.ID,
			Status:    domain.ScheduleStatusPaid,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date.Equal(rows[j].Date) {
			return ledgerRank(rows[i].Type) < ledgerRank(rows[j].Type)
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	// Fold the running balance over the full, ordered history.
	// Installments increase the balance owed, payments decrease it.
	balance := decimal.Zero
	for _, row := range rows {
		if row.Type == domain.LedgerRowInstallment {
			balance = balance.Add(row.Amount)
		} else {
			balance = balance.Sub(row.Amount)
		}
		row.RunningBalance = balance
	}

	return rows
}

func ledgerRank(rowType string) int {
	if rowType == domain.LedgerRowInstallment {
		return 0
	}
	return 1
}

// SummarizeLedger derives the aggregates shown above the ledger.
func SummarizeLedger(rows []*domain.LedgerRow, now time.Time) domain.LedgerSummary {
	summary := domain.LedgerSummary{
		OutstandingBalance: decimal.Zero,
		TotalPaid:          decimal.Zero,
		PaidThisMonth:      decimal.Zero,
	}

	if len(rows) == 0 {
		return summary
	}

	summary.OutstandingBalance = rows[len(rows)-1].RunningBalance

	for _, row := range rows {
		if row.Type != domain.LedgerRowPayment {
			continue
		}
		summary.TotalPaid = summary.TotalPaid.Add(row.Amount)
		summary.PaymentCount++
		if row.Date.Year() == now.Year() && row.Date.Month() == now.Month() {
			summary.PaidThisMonth = summary.PaidThisMonth.Add(row.Amount)
		}
	}

	summary.IsFullyPaid = summary.OutstandingBalance.LessThanOrEqual(decimal.Zero)
	return summary
}

// PaginateLedger slices the assembled ledger into the requested window.
// The page count is computed against the total row count; out-of-range
// pages return an empty window with the totals intact.
func PaginateLedger(rows []*domain.LedgerRow, page, pageSize int) ([]*domain.LedgerRow, int, int, int) {
	if pageSize < 1 {
		pageSize = DefaultLedgerPageSize
	}
	if pageSize > MaxLedgerPageSize {
		pageSize = MaxLedgerPageSize
	}
	if page < 1 {
		page = 1
	}

	totalPages := (len(rows) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []*domain.LedgerRow{}, page, pageSize, totalPages
	}

	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}

	return rows[start:end], page, pageSize, totalPages
}
