package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ApplicationStatusDraft       = "draft"
	ApplicationStatusSubmitted   = "submitted"
	ApplicationStatusUnderReview = "under_review"
	ApplicationStatusApproved    = "approved"
	ApplicationStatusRejected    = "rejected"
)

// Application represents a loan application record
type Application struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	FirstName        string          `json:"first_name" db:"first_name"`
	MiddleName       string          `json:"middle_name" db:"middle_name"`
	LastName         string          `json:"last_name" db:"last_name"`
	Email            string          `json:"email" db:"email"`
	Phone            string          `json:"phone" db:"phone"`
	DateOfBirth      time.Time       `json:"date_of_birth" db:"date_of_birth"`
	Address          string          `json:"address" db:"address"`
	City             string          `json:"city" db:"city"`
	EmploymentStatus string          `json:"employment_status" db:"employment_status"`
	EmployerName     string          `json:"employer_name" db:"employer_name"`
	JobTitle         string          `json:"job_title" db:"job_title"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income" db:"monthly_income"`
	YearsEmployed    decimal.Decimal `json:"years_employed" db:"years_employed"`
	LoanAmount       decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	LoanPurpose      string          `json:"loan_purpose" db:"loan_purpose"`
	LoanTermMonths   int             `json:"loan_term_months" db:"loan_term_months"`
	PromoCode        string          `json:"promo_code" db:"promo_code"`
	Status           string          `json:"status" db:"status"`
	SubmittedAt      *time.Time      `json:"submitted_at,omitempty" db:"submitted_at"`
	ReviewedAt       *time.Time      `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// Wire shape of the submission endpoint: three nested sections assembled
// by the multi-step form.

type PersonalInfo struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`
	City        string `json:"city"`
}

type EmploymentInfo struct {
	EmploymentStatus string `json:"employmentStatus"`
	Company          string `json:"company"`
	Position         string `json:"position"`
	MonthlyIncome    string `json:"monthlyIncome"`
	EmploymentLength string `json:"employmentLength"`
}

type LoanInfo struct {
	LoanAmount  string `json:"loanAmount"`
	LoanPurpose string `json:"loanPurpose"`
	LoanTerm    string `json:"loanTerm"`
	PromoCode   string `json:"promoCode"`
}

type SubmitApplicationRequest struct {
	PersonalInfo   PersonalInfo   `json:"personalInfo"`
	EmploymentInfo EmploymentInfo `json:"employmentInfo"`
	LoanInfo       LoanInfo       `json:"loanInfo"`
}

type SubmitApplicationResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"applicationId"`
	Message       string `json:"message"`
}

type ValidateStepRequest struct {
	Step     int                      `json:"step" validate:"required,gte=1,lte=3"`
	Snapshot SubmitApplicationRequest `json:"snapshot"`
}

type ValidateStepResponse struct {
	Step  int  `json:"step"`
	Valid bool `json:"valid"`
}

type ReviewApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=under_review approved rejected"`
}
