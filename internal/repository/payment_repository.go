package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cashewph/lending-platform/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, schedule_id, amount, payment_date, method, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY payment_date, created_at
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, loanID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetRecentByLoanID(ctx context.Context, loanID uuid.UUID, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, schedule_id, amount, payment_date, method, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY payment_date DESC
		LIMIT $2
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, loanID, limit)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
