package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a borrower account
type User struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	Email              string     `json:"email" db:"email"`
	Phone              string     `json:"phone" db:"phone"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	FirstName          string     `json:"first_name" db:"first_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	Address            string     `json:"address" db:"address"`
	City               string     `json:"city" db:"city"`
	State              string     `json:"state" db:"state"`
	ZipCode            string     `json:"zip_code" db:"zip_code"`
	EmailVerified      bool       `json:"email_verified" db:"email_verified"`
	PhoneVerified      bool       `json:"phone_verified" db:"phone_verified"`
	PhoneVerifiedAt    *time.Time `json:"phone_verified_at,omitempty" db:"phone_verified_at"`
	MustChangePassword bool       `json:"must_change_password" db:"must_change_password"`
	IsAdmin            bool       `json:"is_admin" db:"is_admin"`
	ReferralCode       string     `json:"referral_code" db:"referral_code"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// Profile is the borrower profile projection joined with the most
// recent application (previously the borrower_profile_view database view).
type Profile struct {
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Email         string    `json:"email" db:"email"`
	Phone         string    `json:"phone" db:"phone"`
	Address       string    `json:"address" db:"address"`
	City          string    `json:"city" db:"city"`
	State         string    `json:"state" db:"state"`
	ZipCode       string    `json:"zip_code" db:"zip_code"`
	PhoneVerified bool      `json:"phone_verified" db:"phone_verified"`
}

// DTOs for requests and responses

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UpdateProfileRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

type AuthResponse struct {
	Token              string    `json:"token"`
	UserID             uuid.UUID `json:"user_id"`
	Email              string    `json:"email"`
	MustChangePassword bool      `json:"must_change_password"`
}
