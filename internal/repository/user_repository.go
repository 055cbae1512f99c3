package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cashewph/lending-platform/internal/domain"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	id, email, phone, password_hash, first_name, last_name, address, city, state,
	zip_code, email_verified, phone_verified, phone_verified_at, must_change_password,
	is_admin, referral_code, created_at, updated_at
`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, phone, password_hash, first_name, last_name,
			address, city, state, zip_code, email_verified, phone_verified,
			must_change_password, is_admin, referral_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Address,
		user.City,
		user.State,
		user.ZipCode,
		user.EmailVerified,
		user.PhoneVerified,
		user.MustChangePassword,
		user.IsAdmin,
		user.ReferralCode,
		user.CreatedAt,
		user.UpdatedAt,
	)

	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, phone)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, phone = $3, password_hash = $4, first_name = $5, last_name = $6,
			address = $7, city = $8, state = $9, zip_code = $10, email_verified = $11,
			phone_verified = $12, phone_verified_at = $13, must_change_password = $14,
			referral_code = $15, updated_at = $16
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Address,
		user.City,
		user.State,
		user.ZipCode,
		user.EmailVerified,
		user.PhoneVerified,
		user.PhoneVerifiedAt,
		user.MustChangePassword,
		user.ReferralCode,
		time.Now(),
	)

	return err
}

func (r *userRepository) MarkPhoneVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE users
		SET phone_verified = TRUE, phone_verified_at = $2, updated_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, at)
	return err
}
