package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/mailer"
	"github.com/cashewph/lending-platform/internal/repository"
	customError "github.com/cashewph/lending-platform/pkg/errors"
	"github.com/cashewph/lending-platform/pkg/utils"
)

// statusRank orders application statuses along the review pipeline.
// Transitions only ever move to a higher rank; rejected and approved
// are both terminal.
var statusRank = map[string]int{
	domain.ApplicationStatusDraft:       0,
	domain.ApplicationStatusSubmitted:   1,
	domain.ApplicationStatusUnderReview: 2,
	domain.ApplicationStatusApproved:    3,
	domain.ApplicationStatusRejected:    3,
}

// ApplicationService handles the multi-step intake form: per-step
// validation, final submission with input cleanup, and the back-office
// review transitions that hand approved applications to origination.
type ApplicationService struct {
	appRepo   repository.ApplicationRepository
	userRepo  repository.UserRepository
	loanSvc   *LoanService
	validator *FormValidator
	mailer    mailer.Mailer
	config    *config.Config
	log       *logrus.Logger
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	userRepo repository.UserRepository,
	loanSvc *LoanService,
	m mailer.Mailer,
	cfg *config.Config,
	log *logrus.Logger,
) *ApplicationService {
	return &ApplicationService{
		appRepo:   appRepo,
		userRepo:  userRepo,
		loanSvc:   loanSvc,
		validator: NewFormValidator(cfg.GetMinLoanAmount()),
		mailer:    m,
		config:    cfg,
		log:       log,
	}
}

// ValidateStep evaluates one form step against the submitted snapshot.
func (s *ApplicationService) ValidateStep(req *domain.ValidateStepRequest) *domain.ValidateStepResponse {
	return &domain.ValidateStepResponse{
		Step:  req.Step,
		Valid: s.validator.ValidateStep(req.Step, &req.Snapshot, time.Now()),
	}
}

// Submit validates the full form, cleans the free-text money and
// contact fields, resolves or provisions the applicant's account, and
// files the application as submitted. The confirmation email is best
// effort; a delivery failure does not fail the submission.
func (s *ApplicationService) Submit(ctx context.Context, req *domain.SubmitApplicationRequest) (*domain.SubmitApplicationResponse, error) {
	now := time.Now()

	if step := s.validator.ValidateAll(req, now); step != 0 {
		return nil, customError.WrapValidationFailed(step)
	}

	email := NormalizeEmail(req.PersonalInfo.Email)
	if !IsValidEmail(email) {
		return nil, customError.WrapValidationFailed(1)
	}
	phone := NormalizePhone(req.PersonalInfo.Phone)

	amount, err := utils.ParseMoney(req.LoanInfo.LoanAmount)
	if err != nil {
		return nil, customError.WrapValidationFailed(3)
	}
	if amount.LessThan(s.config.GetMinLoanAmount()) {
		return nil, customError.WrapMinimumLoanAmount(s.config.GetMinLoanAmount().StringFixed(0))
	}

	income, err := utils.ParseMoney(req.EmploymentInfo.MonthlyIncome)
	if err != nil {
		return nil, customError.WrapValidationFailed(2)
	}

	termMonths, ok := ParseLoanTerm(req.LoanInfo.LoanTerm)
	if !ok {
		return nil, customError.WrapValidationFailed(3)
	}

	dob, err := time.Parse("2006-01-02", req.PersonalInfo.DateOfBirth)
	if err != nil {
		return nil, customError.WrapValidationFailed(1)
	}

	user, err := s.resolveApplicant(ctx, email, phone, req.PersonalInfo)
	if err != nil {
		return nil, err
	}

	app := &domain.Application{
		ID:               uuid.New(),
		UserID:           user.ID,
		FirstName:        req.PersonalInfo.FirstName,
		MiddleName:       req.PersonalInfo.MiddleName,
		LastName:         req.PersonalInfo.LastName,
		Email:            email,
		Phone:            phone,
		DateOfBirth:      dob,
		Address:          req.PersonalInfo.Address,
		City:             req.PersonalInfo.City,
		EmploymentStatus: req.EmploymentInfo.EmploymentStatus,
		EmployerName:     req.EmploymentInfo.Company,
		JobTitle:         req.EmploymentInfo.Position,
		MonthlyIncome:    income,
		YearsEmployed:    YearsFromEmploymentLength(req.EmploymentInfo.EmploymentLength),
		LoanAmount:       amount,
		LoanPurpose:      req.LoanInfo.LoanPurpose,
		LoanTermMonths:   termMonths,
		PromoCode:        req.LoanInfo.PromoCode,
		Status:           domain.ApplicationStatusSubmitted,
		SubmittedAt:      &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.mailer.SendApplicationConfirmation(email, app.FirstName, app.ID.String()); err != nil {
		s.log.Warnf("confirmation email to %s failed: %v", email, err)
	}

	s.log.WithFields(logrus.Fields{
		"application_id": app.ID,
		"user_id":        user.ID,
		"loan_amount":    amount,
		"term_months":    termMonths,
	}).Info("application submitted")

	return &domain.SubmitApplicationResponse{
		Success:       true,
		ApplicationID: app.ID.String(),
		Message:       "Application submitted! Check your email to complete registration.",
	}, nil
}

// GetByID returns an application owned by the user.
func (s *ApplicationService) GetByID(ctx context.Context, userID, appID uuid.UUID) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, appID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapApplicationNotFound(appID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if app.UserID != userID {
		return nil, customError.WrapApplicationNotFound(appID.String())
	}
	return app, nil
}

// ListByUser returns the user's applications, newest first.
func (s *ApplicationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Application, error) {
	apps, err := s.appRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return apps, nil
}

// Review moves an application along the pipeline. Status only moves
// forward; approval originates the loan before the status flips, so a
// failed origination leaves the application reviewable.
func (s *ApplicationService) Review(ctx context.Context, appID uuid.UUID, req *domain.ReviewApplicationRequest) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, appID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapApplicationNotFound(appID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	fromRank, ok := statusRank[app.Status]
	if !ok {
		return nil, customError.WrapInvalidStatusChange(app.Status, req.Status)
	}
	toRank, ok := statusRank[req.Status]
	if !ok || toRank <= fromRank {
		return nil, customError.WrapInvalidStatusChange(app.Status, req.Status)
	}

	if req.Status == domain.ApplicationStatusApproved {
		if _, _, err := s.loanSvc.Originate(ctx, app); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.appRepo.UpdateStatus(ctx, appID, req.Status, &now); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	app.Status = req.Status
	app.ReviewedAt = &now
	app.UpdatedAt = now

	s.log.WithFields(logrus.Fields{
		"application_id": appID,
		"status":         req.Status,
	}).Info("application reviewed")

	return app, nil
}

// resolveApplicant finds the account for the submission's email, or
// provisions one with a temporary password so the applicant can finish
// registration through the code sign-in flow.
func (s *ApplicationService) resolveApplicant(ctx context.Context, email, phone string, info domain.PersonalInfo) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	password, err := RandomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user = &domain.User{
		ID:                 uuid.New(),
		Email:              email,
		Phone:              phone,
		PasswordHash:       hash,
		FirstName:          info.FirstName,
		LastName:           info.LastName,
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	user.ReferralCode = ReferralCodeFor(user.ID)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": email}).Info("applicant account provisioned")
	return user, nil
}
