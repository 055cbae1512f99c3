package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/tests/mocks"
)

func TestMarkOverdue(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	service := NewJobsService(loanRepo, &mocks.MockUserRepository{}, &mocks.MockMailer{}, testConfig(), quietLogger())

	loanRepo.On("MarkOverdueBefore", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	err := service.MarkOverdue(context.Background())

	assert.NoError(t, err)
	loanRepo.AssertExpectations(t)
}

func TestSendReminders_SkipsFailedSends(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	userRepo := &mocks.MockUserRepository{}
	m := &mocks.MockMailer{}
	service := NewJobsService(loanRepo, userRepo, m, testConfig(), quietLogger())

	loanA := uuid.New()
	loanB := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	due := time.Now().AddDate(0, 0, 2)
	entries := []*domain.ScheduleEntry{
		{LoanID: loanA, DueDate: due, AmountDue: decimal.NewFromInt(1000)},
		{LoanID: loanB, DueDate: due, AmountDue: decimal.NewFromInt(2000)},
	}

	loanRepo.On("GetDueBetween", mock.Anything, mock.Anything, mock.Anything).Return(entries, nil)
	loanRepo.On("GetByID", mock.Anything, loanA).Return(&domain.Loan{ID: loanA, UserID: userA}, nil)
	loanRepo.On("GetByID", mock.Anything, loanB).Return(&domain.Loan{ID: loanB, UserID: userB}, nil)
	userRepo.On("GetByID", mock.Anything, userA).Return(&domain.User{ID: userA, Email: "a@example.com", FirstName: "Ana"}, nil)
	userRepo.On("GetByID", mock.Anything, userB).Return(&domain.User{ID: userB, Email: "b@example.com", FirstName: "Ben"}, nil)

	// The first send blows up; the run still reaches the second.
	m.On("SendPaymentReminder", "a@example.com", "Ana", due, mock.Anything, false).Return(assert.AnError)
	m.On("SendPaymentReminder", "b@example.com", "Ben", due, mock.Anything, false).Return(nil)

	err := service.SendReminders(context.Background())

	assert.NoError(t, err)
	m.AssertExpectations(t)
}

func TestSendReminders_OverdueFlag(t *testing.T) {
	loanRepo := &mocks.MockLoanRepository{}
	userRepo := &mocks.MockUserRepository{}
	m := &mocks.MockMailer{}
	service := NewJobsService(loanRepo, userRepo, m, testConfig(), quietLogger())

	loanID := uuid.New()
	userID := uuid.New()
	pastDue := time.Now().AddDate(0, 0, -1)

	entries := []*domain.ScheduleEntry{
		{LoanID: loanID, DueDate: pastDue, AmountDue: decimal.NewFromInt(1000)},
	}

	loanRepo.On("GetDueBetween", mock.Anything, mock.Anything, mock.Anything).Return(entries, nil)
	loanRepo.On("GetByID", mock.Anything, loanID).Return(&domain.Loan{ID: loanID, UserID: userID}, nil)
	userRepo.On("GetByID", mock.Anything, userID).Return(&domain.User{ID: userID, Email: "late@example.com", FirstName: "Leo"}, nil)
	m.On("SendPaymentReminder", "late@example.com", "Leo", pastDue, mock.Anything, true).Return(nil)

	err := service.SendReminders(context.Background())

	assert.NoError(t, err)
	m.AssertExpectations(t)
}
