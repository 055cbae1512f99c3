package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/repository"
	customError "github.com/cashewph/lending-platform/pkg/errors"
)

// ProfileService builds the borrower profile shown on the dashboard:
// the account joined with address details from the most recent
// application. Identity fields come from the application of record and
// are not editable here; contact fields are.
type ProfileService struct {
	userRepo repository.UserRepository
	appRepo  repository.ApplicationRepository
	log      *logrus.Logger
}

func NewProfileService(userRepo repository.UserRepository, appRepo repository.ApplicationRepository, log *logrus.Logger) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		appRepo:  appRepo,
		log:      log,
	}
}

// Get assembles the profile projection for a user.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapUserNotFound(userID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	profile := &domain.Profile{
		UserID:        user.ID,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Email:         user.Email,
		Phone:         user.Phone,
		Address:       user.Address,
		City:          user.City,
		State:         user.State,
		ZipCode:       user.ZipCode,
		PhoneVerified: user.PhoneVerified,
	}

	app, err := s.appRepo.GetLatestByUserID(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}
	if app != nil {
		// The application of record fills in what the account lacks.
		if profile.FirstName == "" {
			profile.FirstName = app.FirstName
		}
		if profile.LastName == "" {
			profile.LastName = app.LastName
		}
		if profile.Phone == "" {
			profile.Phone = app.Phone
		}
		if profile.Address == "" {
			profile.Address = app.Address
		}
		if profile.City == "" {
			profile.City = app.City
		}
	}

	return profile, nil
}

// Update changes the contact fields on the account. Name and email are
// identity fields and stay as registered.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapUserNotFound(userID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if req.Phone != "" {
		normalized := NormalizePhone(req.Phone)
		if normalized != user.Phone {
			user.Phone = normalized
			// A new number has to be verified again.
			user.PhoneVerified = false
			user.PhoneVerifiedAt = nil
		}
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.City != "" {
		user.City = req.City
	}
	if req.State != "" {
		user.State = req.State
	}
	if req.ZipCode != "" {
		user.ZipCode = req.ZipCode
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithField("user_id", userID).Info("profile updated")

	return s.Get(ctx, userID)
}

// VerifyPhone flips the verification flags for the number that texted
// the inbound SMS keyword.
func (s *ProfileService) VerifyPhone(ctx context.Context, phone string) (*domain.User, error) {
	normalized := NormalizePhone(phone)

	user, err := s.userRepo.GetByPhone(ctx, normalized)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapUserNotFound(normalized)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if user.PhoneVerified {
		return user, nil
	}

	now := time.Now()
	if err := s.userRepo.MarkPhoneVerified(ctx, user.ID, now); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	user.PhoneVerified = true
	user.PhoneVerifiedAt = &now

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "phone": normalized}).Info("phone verified")
	return user, nil
}
