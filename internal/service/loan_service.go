package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/repository"
	customError "github.com/cashewph/lending-platform/pkg/errors"
	"github.com/cashewph/lending-platform/pkg/utils"
)

// LoanService owns loan origination and servicing: schedule
// generation, summaries, payment posting and delinquency checks.
type LoanService struct {
	loanRepo    repository.LoanRepository
	paymentRepo repository.PaymentRepository
	redis       *redis.Client
	config      *config.Config
	log         *logrus.Logger
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	log *logrus.Logger,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		redis:       redisClient,
		config:      cfg,
		log:         log,
	}
}

// Originate creates an active loan with its amortization schedule from
// an approved application. The monthly payment uses the flat-rate
// formula (principal + principal*rate*years) / term; the last schedule
// entry absorbs the rounding remainder so the schedule sums exactly to
// the total repayable.
func (s *LoanService) Originate(ctx context.Context, app *domain.Application) (*domain.Loan, []*domain.ScheduleEntry, error) {
	rate := s.config.GetDefaultInterestRate()
	monthly := utils.CalculateMonthlyPayment(app.LoanAmount, rate, app.LoanTermMonths)
	total := utils.TotalRepayable(app.LoanAmount, rate, app.LoanTermMonths)

	now := time.Now()
	origination := now.Truncate(24 * time.Hour)
	maturity := utils.CalculateDueDate(origination, app.LoanTermMonths)

	loan := &domain.Loan{
		ID:              uuid.New(),
		UserID:          app.UserID,
		ApplicationID:   app.ID,
		LoanType:        domain.LoanTypePersonal,
		PrincipalAmount: app.LoanAmount,
		InterestRate:    rate,
		TermMonths:      app.LoanTermMonths,
		MonthlyPayment:  monthly,
		CurrentBalance:  total,
		Status:          domain.LoanStatusActive,
		OriginationDate: &origination,
		MaturityDate:    &maturity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	totalInterest := total.Sub(app.LoanAmount)
	monthlyInterest := totalInterest.Div(decimal.NewFromInt(int64(app.LoanTermMonths))).Round(2)
	monthlyPrincipal := monthly.Sub(monthlyInterest)

	entries := make([]*domain.ScheduleEntry, 0, app.LoanTermMonths)
	remaining := total
	for n := 1; n <= app.LoanTermMonths; n++ {
		amountDue := monthly
		interestDue := monthlyInterest
		principalDue := monthlyPrincipal
		if n == app.LoanTermMonths {
			// Final installment clears whatever rounding left behind.
			amountDue = remaining
			interestDue = totalInterest.Sub(monthlyInterest.Mul(decimal.NewFromInt(int64(n - 1))))
			principalDue = amountDue.Sub(interestDue)
		}
		remaining = remaining.Sub(amountDue)

		entries = append(entries, &domain.ScheduleEntry{
			ID:              uuid.New(),
			LoanID:          loan.ID,
			PaymentNumber:   n,
			DueDate:         utils.CalculateDueDate(origination, n),
			AmountDue:       amountDue,
			PrincipalAmount: principalDue,
			InterestAmount:  interestDue,
			PaidAmount:      decimal.Zero,
			Status:          domain.ScheduleStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if err := s.loanRepo.CreateSchedule(ctx, entries); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{
		"loan_id":        loan.ID,
		"application_id": app.ID,
		"principal":      app.LoanAmount,
		"term_months":    app.LoanTermMonths,
	}).Info("loan originated")

	return loan, entries, nil
}

// ListSummaries returns the dashboard projection of a user's loans,
// each annotated with its next unpaid due date.
func (s *LoanService) ListSummaries(ctx context.Context, userID uuid.UUID) ([]*domain.LoanSummary, error) {
	loans, err := s.loanRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summaries := make([]*domain.LoanSummary, 0, len(loans))
	for _, loan := range loans {
		summary := &domain.LoanSummary{
			ID:             loan.ID,
			LoanType:       loan.LoanType,
			CurrentBalance: loan.CurrentBalance,
			MonthlyPayment: loan.MonthlyPayment,
			Status:         loan.Status,
		}

		next, err := s.loanRepo.GetNextUnpaid(ctx, loan.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapDatabaseError(err)
		}
		if next != nil {
			due := next.DueDate
			summary.NextDueDate = &due
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// GetDetail returns one loan with its next unpaid installment and the
// five most recent payments, the shape the loan details screen renders.
func (s *LoanService) GetDetail(ctx context.Context, userID, loanID uuid.UUID) (*domain.LoanDetailResponse, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if loan.UserID != userID {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}

	next, err := s.loanRepo.GetNextUnpaid(ctx, loanID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	recent, err := s.paymentRepo.GetRecentByLoanID(ctx, loanID, 5)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LoanDetailResponse{
		Loan:           loan,
		NextPayment:    next,
		RecentPayments: recent,
	}, nil
}

// GetSchedule returns the full payment schedule for a loan.
func (s *LoanService) GetSchedule(ctx context.Context, userID, loanID uuid.UUID) (*domain.ScheduleResponse, error) {
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

	return &domain.ScheduleResponse{LoanID: loanID, Schedule: entries}, nil
}

// MakePayment posts a payment against the earliest unpaid installment.
// The amount must match that installment exactly; the loan balance only
// ever decreases and the loan flips to paid_off when it reaches zero.
func (s *LoanService) MakePayment(ctx context.Context, userID, loanID uuid.UUID, req *domain.MakePaymentRequest) (*domain.Payment, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if loan.UserID != userID {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanNotActive(loanID.String())
	}

	if !req.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}

	entry, err := s.loanRepo.GetNextUnpaid(ctx, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.NewBusinessError(customError.ErrCodeNoOutstandingBalance,
			fmt.Sprintf("Loan %s has no outstanding installments", loanID), customError.ErrNoOutstandingBalance)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if !req.Amount.Equal(entry.AmountDue) {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidPaymentAmount,
			fmt.Sprintf("Payment of %s does not match the installment due of %s",
				req.Amount.StringFixed(2), entry.AmountDue.StringFixed(2)),
			customError.ErrInvalidPaymentAmount)
	}

	method := req.Method
	if method == "" {
		method = "bank_transfer"
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:          uuid.New(),
		LoanID:      loanID,
		ScheduleID:  &entry.ID,
		Amount:      req.Amount,
		PaymentDate: now,
		Method:      method,
		CreatedAt:   now,
	}

	loan.CurrentBalance = loan.CurrentBalance.Sub(req.Amount)
	if loan.CurrentBalance.LessThanOrEqual(decimal.Zero) {
		loan.CurrentBalance = decimal.Zero
		loan.Status = domain.LoanStatusPaidOff
	}

	// One transaction: payment row, installment settled, balance moved.
	if err := s.loanRepo.PostPayment(ctx, payment, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateOutstanding(ctx, loanID)

	s.log.WithFields(logrus.Fields{
		"loan_id":    loanID,
		"payment_id": payment.ID,
		"amount":     req.Amount,
		"balance":    loan.CurrentBalance,
	}).Info("payment posted")

	return payment, nil
}

// GetOutstanding returns the remaining balance for a loan, cached
// briefly in Redis to keep the dashboard cheap.
func (s *LoanService) GetOutstanding(ctx context.Context, userID, loanID uuid.UUID) (decimal.Decimal, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, outstandingKey(loanID)).Result(); err == nil {
			if value, err := decimal.NewFromString(cached); err == nil {
				return value, nil
			}
		}
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return decimal.Zero, customError.WrapLoanNotFound(loanID.String())
	}
	if loan.UserID != userID {
		return decimal.Zero, customError.WrapLoanNotFound(loanID.String())
	}

	if s.redis != nil {
		s.redis.Set(ctx, outstandingKey(loanID), loan.CurrentBalance.String(), 5*time.Minute)
	}

	return loan.CurrentBalance, nil
}

// IsDelinquent reports whether a loan has missed consecutive
// installments at or past the configured threshold.
func (s *LoanService) IsDelinquent(ctx context.Context, userID, loanID uuid.UUID) (*domain.DelinquencyResponse, error) {
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

	now := time.Now()
	threshold := s.config.Business.DelinquencyThreshold

	consecutive := 0
	worst := 0
	for _, entry := range entries {
		if !utils.IsDateOverdue(entry.DueDate, now) {
			break
		}

		if entry.Status == domain.ScheduleStatusPaid {
			consecutive = 0
			continue
		}

		consecutive++
		if consecutive > worst {
			worst = consecutive
		}
	}

	return &domain.DelinquencyResponse{
		LoanID:       loanID,
		IsDelinquent: worst >= threshold,
		MissedCount:  worst,
	}, nil
}

func (s *LoanService) invalidateOutstanding(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, outstandingKey(loanID)).Err(); err != nil {
		s.log.Warnf("failed to invalidate outstanding cache for %s: %v", loanID, err)
	}
}

func outstandingKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:outstanding:%s", loanID)
}
