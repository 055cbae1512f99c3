package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/mailer"
	"github.com/cashewph/lending-platform/internal/repository"
	customError "github.com/cashewph/lending-platform/pkg/errors"
)

// ReferralService serves the dashboard invite card: each user has a
// stable referral code and a shareable link, and can email invites.
type ReferralService struct {
	userRepo  repository.UserRepository
	mailer    mailer.Mailer
	publicURL string
	log       *logrus.Logger
}

func NewReferralService(userRepo repository.UserRepository, m mailer.Mailer, publicURL string, log *logrus.Logger) *ReferralService {
	return &ReferralService{
		userRepo:  userRepo,
		mailer:    m,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log,
	}
}

// Get returns the user's referral code and link. Accounts created
// before codes were assigned get one backfilled here.
func (s *ReferralService) Get(ctx context.Context, userID uuid.UUID) (*domain.ReferralResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapUserNotFound(userID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if user.ReferralCode == "" {
		user.ReferralCode = ReferralCodeFor(user.ID)
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	return &domain.ReferralResponse{
		ReferralCode: user.ReferralCode,
		ReferralLink: s.linkFor(user.ReferralCode),
	}, nil
}

// SendInvite emails a referral invitation carrying the user's link.
func (s *ReferralService) SendInvite(ctx context.Context, userID uuid.UUID, req *domain.SendInviteRequest) error {
	referral, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	to := NormalizeEmail(req.Email)
	if !IsValidEmail(to) {
		return customError.NewBusinessError(customError.ErrCodeMailError, "invalid invite address", nil)
	}

	if err := s.mailer.SendInvite(to, referral.ReferralLink); err != nil {
		return customError.WrapMailError(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "invitee": to}).Info("referral invite sent")
	return nil
}

func (s *ReferralService) linkFor(code string) string {
	return fmt.Sprintf("%s/apply?ref=%s", s.publicURL, code)
}

// ReferralCodeFor derives a stable, shareable code from the user ID.
func ReferralCodeFor(userID uuid.UUID) string {
	sum := sha256.Sum256(userID[:])
	return strings.ToUpper(hex.EncodeToString(sum[:4]))
}
