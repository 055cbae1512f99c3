package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cashewph/lending-platform/internal/domain"
)

func makeSchedule(loanID uuid.UUID, start time.Time, count int, amount int64) []*domain.ScheduleEntry {
	entries := make([]*domain.ScheduleEntry, 0, count)
	for n := 1; n <= count; n++ {
		entries = append(entries, &domain.ScheduleEntry{
			ID:            uuid.New(),
			LoanID:        loanID,
			PaymentNumber: n,
			DueDate:       start.AddDate(0, n, 0),
			AmountDue:     decimal.NewFromInt(amount),
			Status:        domain.ScheduleStatusPending,
		})
	}
	return entries
}

func TestAssembleLedger_ChronologicalOrder(t *testing.T) {
	loanID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := makeSchedule(loanID, start, 3, 1000)

	payments := []*domain.Payment{
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(1000), PaymentDate: start.AddDate(0, 1, 5)},
	}

	rows := AssembleLedger(entries, payments, start.AddDate(0, 0, 15))

	assert.Len(t, rows, 4)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].Date.Before(rows[i-1].Date), "row %d out of order", i)
	}
}

func TestAssembleLedger_SameDateInstallmentFirst(t *testing.T) {
	loanID := uuid.New()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	entries := []*domain.ScheduleEntry{
		{ID: uuid.New(), LoanID: loanID, PaymentNumber: 1, DueDate: date, AmountDue: decimal.NewFromInt(500), Status: domain.ScheduleStatusPaid},
	}
	payments := []*domain.Payment{
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(500), PaymentDate: date},
	}

	rows := AssembleLedger(entries, payments, date)

	assert.Len(t, rows, 2)
	assert.Equal(t, domain.LedgerRowInstallment, rows[0].Type)
	assert.Equal(t, domain.LedgerRowPayment, rows[1].Type)

	// The same-day payment clears the installment it follows.
	assert.True(t, rows[0].RunningBalance.Equal(decimal.NewFromInt(500)))
	assert.True(t, rows[1].RunningBalance.Equal(decimal.Zero))
}

func TestAssembleLedger_RunningBalanceFold(t *testing.T) {
	loanID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := makeSchedule(loanID, start, 3, 1100)

	payments := []*domain.Payment{
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(1100), PaymentDate: start.AddDate(0, 1, 3)},
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(1100), PaymentDate: start.AddDate(0, 2, 3)},
	}

	rows := AssembleLedger(entries, payments, start.AddDate(0, 2, 10))

	// 1100, 0, 1100, 0, 1100
	expected := []int64{1100, 0, 1100, 0, 1100}
	assert.Len(t, rows, len(expected))
	for i, want := range expected {
		assert.True(t, rows[i].RunningBalance.Equal(decimal.NewFromInt(want)),
			"row %d: got %s want %d", i, rows[i].RunningBalance, want)
	}
}

func TestAssembleLedger_OverdueAndNextDueFlags(t *testing.T) {
	loanID := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := makeSchedule(loanID, start, 3, 1000)
	entries[0].Status = domain.ScheduleStatusPaid

	// Between the second and third due dates; entry 2 is overdue.
	now := start.AddDate(0, 2, 10)
	rows := AssembleLedger(entries, nil, now)

	assert.False(t, rows[0].IsOverdue)
	assert.True(t, rows[1].IsOverdue)
	assert.Equal(t, 10, rows[1].DaysOverdue)
	assert.False(t, rows[2].IsOverdue)

	// Next due marks the earliest unpaid installment only.
	assert.False(t, rows[0].IsNextDue)
	assert.True(t, rows[1].IsNextDue)
	assert.False(t, rows[2].IsNextDue)
}

func TestSummarizeLedger(t *testing.T) {
	loanID := uuid.New()
	now := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := makeSchedule(loanID, start, 2, 1000)
	payments := []*domain.Payment{
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(1000), PaymentDate: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(500), PaymentDate: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)},
	}

	rows := AssembleLedger(entries, payments, now)
	summary := SummarizeLedger(rows, now)

	assert.True(t, summary.OutstandingBalance.Equal(decimal.NewFromInt(500)))
	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 2, summary.PaymentCount)
	assert.True(t, summary.PaidThisMonth.Equal(decimal.NewFromInt(500)))
	assert.False(t, summary.IsFullyPaid)
}

func TestSummarizeLedger_FullyPaid(t *testing.T) {
	loanID := uuid.New()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	entries := makeSchedule(loanID, start, 1, 1000)
	entries[0].Status = domain.ScheduleStatusPaid
	payments := []*domain.Payment{
		{ID: uuid.New(), LoanID: loanID, Amount: decimal.NewFromInt(1000), PaymentDate: start.AddDate(0, 1, 1)},
	}

	rows := AssembleLedger(entries, payments, now)
	summary := SummarizeLedger(rows, now)

	assert.True(t, summary.IsFullyPaid)
	assert.True(t, summary.OutstandingBalance.Equal(decimal.Zero))
}

func TestPaginateLedger(t *testing.T) {
	rows := make([]*domain.LedgerRow, 13)
	for i := range rows {
		rows[i] = &domain.LedgerRow{Amount: decimal.NewFromInt(int64(i + 1))}
	}

	page1, page, size, totalPages := PaginateLedger(rows, 1, 6)
	assert.Equal(t, 1, page)
	assert.Equal(t, 6, size)
	assert.Equal(t, 3, totalPages)
	assert.Len(t, page1, 6)
	assert.True(t, page1[0].Amount.Equal(decimal.NewFromInt(1)))
	assert.True(t, page1[5].Amount.Equal(decimal.NewFromInt(6)))

	page3, _, _, _ := PaginateLedger(rows, 3, 6)
	assert.Len(t, page3, 1)
	assert.True(t, page3[0].Amount.Equal(decimal.NewFromInt(13)))
}

func TestPaginateLedger_OutOfRange(t *testing.T) {
	rows := make([]*domain.LedgerRow, 5)
	for i := range rows {
		rows[i] = &domain.LedgerRow{Amount: decimal.NewFromInt(int64(i))}
	}

	window, page, size, totalPages := PaginateLedger(rows, 9, 20)
	assert.Empty(t, window)
	assert.Equal(t, 9, page)
	assert.Equal(t, 20, size)
	assert.Equal(t, 1, totalPages)
}

func TestPaginateLedger_Defaults(t *testing.T) {
	rows := make([]*domain.LedgerRow, 25)
	for i := range rows {
		rows[i] = &domain.LedgerRow{Amount: decimal.NewFromInt(int64(i))}
	}

	window, page, size, totalPages := PaginateLedger(rows, 0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultLedgerPageSize, size)
	assert.Equal(t, 2, totalPages)
	assert.Len(t, window, DefaultLedgerPageSize)

	_, _, capped, _ := PaginateLedger(rows, 1, 5000)
	assert.Equal(t, MaxLedgerPageSize, capped)
}
