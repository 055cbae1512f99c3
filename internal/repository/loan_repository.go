package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cashewph/lending-platform/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `
	id, user_id, application_id, loan_type, principal_amount, interest_rate,
	term_months, monthly_payment, current_balance, status, origination_date,
	maturity_date, created_at, updated_at
`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.ApplicationID,
		loan.LoanType,
		loan.PrincipalAmount,
		loan.InterestRate,
		loan.TermMonths,
		loan.MonthlyPayment,
		loan.CurrentBalance,
		loan.Status,
		loan.OriginationDate,
		loan.MaturityDate,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, userID)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET current_balance = $2, status = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.CurrentBalance,
		loan.Status,
		time.Now(),
	)

	return err
}

func (r *loanRepository) CreateSchedule(ctx context.Context, entries []*domain.ScheduleEntry) error {
	query := `
		INSERT INTO payment_schedules (id, loan_id, payment_number, due_date, amount_due,
			principal_amount, interest_amount, paid_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, entry := range entries {
		_, err = tx.ExecContext(ctx, query,
			entry.ID,
			entry.LoanID,
			entry.PaymentNumber,
			entry.DueDate,
			entry.AmountDue,
			entry.PrincipalAmount,
			entry.InterestAmount,
			entry.PaidAmount,
			entry.Status,
			entry.CreatedAt,
			entry.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, payment_number, due_date, amount_due, principal_amount,
			interest_amount, paid_amount, paid_date, status, created_at, updated_at
		FROM payment_schedules
		WHERE loan_id = $1
		ORDER BY payment_number
	`

	var entries []*domain.ScheduleEntry
	err := r.db.SelectContext(ctx, &entries, query, loanID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *loanRepository) GetNextUnpaid(ctx context.Context, loanID uuid.UUID) (*domain.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, payment_number, due_date, amount_due, principal_amount,
			interest_amount, paid_amount, paid_date, status, created_at, updated_at
		FROM payment_schedules
		WHERE loan_id = $1 AND status <> 'paid'
		ORDER BY due_date
		LIMIT 1
	`

	var entry domain.ScheduleEntry
	err := r.db.GetContext(ctx, &entry, query, loanID)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// PostPayment writes the payment row, settles the installment it covers
// and rolls the loan balance forward in a single transaction, so a
// mid-flight failure cannot leave a payment without its schedule entry
// or balance update.
func (r *loanRepository) PostPayment(ctx context.Context, payment *domain.Payment, loan *domain.Loan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, loan_id, schedule_id, amount, payment_date, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		payment.ID,
		payment.LoanID,
		payment.ScheduleID,
		payment.Amount,
		payment.PaymentDate,
		payment.Method,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	if payment.ScheduleID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE payment_schedules
			SET status = 'paid', paid_amount = $2, paid_date = $3, updated_at = $3
			WHERE id = $1
		`, *payment.ScheduleID, payment.Amount, payment.PaymentDate)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE loans
		SET current_balance = $2, status = $3, updated_at = $4
		WHERE id = $1
	`, loan.ID, loan.CurrentBalance, loan.Status, time.Now())
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) MarkOverdueBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE payment_schedules
		SET status = 'overdue', updated_at = $1
		WHERE status = 'pending' AND due_date < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *loanRepository) GetDueBetween(ctx context.Context, from, to time.Time) ([]*domain.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, payment_number, due_date, amount_due, principal_amount,
			interest_amount, paid_amount, paid_date, status, created_at, updated_at
		FROM payment_schedules
		WHERE status IN ('pending', 'overdue') AND due_date BETWEEN $1 AND $2
		ORDER BY due_date
	`

	var entries []*domain.ScheduleEntry
	err := r.db.SelectContext(ctx, &entries, query, from, to)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
