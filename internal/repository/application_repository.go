package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cashewph/lending-platform/internal/domain"
)

type applicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `
	id, user_id, first_name, middle_name, last_name, email, phone, date_of_birth,
	address, city, employment_status, employer_name, job_title, monthly_income,
	years_employed, loan_amount, loan_purpose, loan_term_months, promo_code,
	status, submitted_at, reviewed_at, created_at, updated_at
`

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO loan_applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	_, err := r.db.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.FirstName,
		app.MiddleName,
		app.LastName,
		app.Email,
		app.Phone,
		app.DateOfBirth,
		app.Address,
		app.City,
		app.EmploymentStatus,
		app.EmployerName,
		app.JobTitle,
		app.MonthlyIncome,
		app.YearsEmployed,
		app.LoanAmount,
		app.LoanPurpose,
		app.LoanTermMonths,
		app.PromoCode,
		app.Status,
		app.SubmittedAt,
		app.ReviewedAt,
		app.CreatedAt,
		app.UpdatedAt,
	)

	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`

	var app domain.Application
	err := r.db.GetContext(ctx, &app, query, id)
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var apps []*domain.Application
	err := r.db.SelectContext(ctx, &apps, query, userID)
	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *applicationRepository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM loan_applications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var app domain.Application
	err := r.db.GetContext(ctx, &app, query, userID)
	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewedAt *time.Time) error {
	query := `
		UPDATE loan_applications
		SET status = $2, reviewed_at = COALESCE($3, reviewed_at), updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, status, reviewedAt, time.Now())
	return err
}
