package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cashewph/lending-platform/internal/domain"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByPhone retrieves a user by phone number
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// Update updates mutable user fields
	Update(ctx context.Context, user *domain.User) error

	// MarkPhoneVerified flips the phone verification flags
	MarkPhoneVerified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ApplicationRepository defines the interface for loan application data operations
type ApplicationRepository interface {
	// Create creates a new application
	Create(ctx context.Context, app *domain.Application) error

	// GetByID retrieves an application by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)

	// GetByUserID retrieves all applications for a user, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Application, error)

	// GetLatestByUserID retrieves the most recent application for a user
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Application, error)

	// UpdateStatus updates an application's status
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewedAt *time.Time) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetByUserID retrieves all loans for a user, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error)

	// Update updates a loan
	Update(ctx context.Context, loan *domain.Loan) error

	// CreateSchedule creates schedule entries
	CreateSchedule(ctx context.Context, entries []*domain.ScheduleEntry) error

	// GetScheduleByLoanID retrieves schedule entries ordered by payment number
	GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduleEntry, error)

	// GetNextUnpaid retrieves the earliest unpaid schedule entry for a loan
	GetNextUnpaid(ctx context.Context, loanID uuid.UUID) (*domain.ScheduleEntry, error)

	// PostPayment records a payment, settles its installment and updates the
	// loan balance atomically
	PostPayment(ctx context.Context, payment *domain.Payment, loan *domain.Loan) error

	// MarkOverdueBefore flips pending entries past the cutoff to overdue,
	// returning how many rows changed
	MarkOverdueBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// GetDueBetween retrieves pending entries due inside a window, across loans
	GetDueBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduleEntry, error)
}

// PaymentRepository defines the read side of the payments ledger.
// Writes go through LoanRepository.PostPayment so a payment never
// lands without its installment and loan balance moving with it.
type PaymentRepository interface {
	// GetByLoanID retrieves all payments for a loan in chronological order
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// GetRecentByLoanID retrieves the most recent payments for a loan
	GetRecentByLoanID(ctx context.Context, loanID uuid.UUID, limit int) ([]*domain.Payment, error)
}
