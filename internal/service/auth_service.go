package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/mailer"
	"github.com/cashewph/lending-platform/internal/repository"
	customError "github.com/cashewph/lending-platform/pkg/errors"
)

// AuthService handles account registration and both sign-in paths:
// email+password and emailed one-time codes. Verifying a code for an
// unknown address provisions an account on the spot with a temporary
// password the user is forced to change.
type AuthService struct {
	userRepo repository.UserRepository
	otpStore repository.OTPStore
	mailer   mailer.Mailer
	config   *config.Config
	log      *logrus.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	otpStore repository.OTPStore,
	m mailer.Mailer,
	cfg *config.Config,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpStore: otpStore,
		mailer:   m,
		config:   cfg,
		log:      log,
	}
}

// Register creates a password-backed account.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	if !IsValidEmail(email) {
		return nil, customError.WrapInvalidCredentials()
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, customError.WrapUserAlreadyExists(email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Phone:        NormalizePhone(req.Phone),
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.ReferralCode = ReferralCodeFor(user.ID)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": email}).Info("user registered")

	return s.issueToken(user)
}

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	email := NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapInvalidCredentials()
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, customError.WrapInvalidCredentials()
	}

	return s.issueToken(user)
}

// SendOTP emails a six-digit code to the address. Only the bcrypt hash
// of the code is stored, and resends inside the cooldown window are
// rejected with the remaining wait.
func (s *AuthService) SendOTP(ctx context.Context, req *domain.SendOTPRequest) error {
	email := NormalizeEmail(req.Email)
	if !IsValidEmail(email) {
		return customError.WrapOTPInvalid()
	}

	remaining, err := s.otpStore.CooldownRemaining(ctx, email)
	if err != nil {
		return customError.WrapCacheError(err)
	}
	if remaining > 0 {
		seconds := int(remaining.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		return customError.WrapOTPCooldown(seconds)
	}

	code, err := GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}

	if err := s.otpStore.SaveCode(ctx, email, string(hash), s.config.Auth.OTPTTL); err != nil {
		return customError.WrapCacheError(err)
	}
	if err := s.otpStore.SetCooldown(ctx, email, s.config.Auth.OTPResendAfter); err != nil {
		return customError.WrapCacheError(err)
	}

	if err := s.mailer.SendOTP(email, code, s.config.Auth.OTPTTL); err != nil {
		return customError.WrapMailError(err)
	}

	s.log.WithField("email", email).Info("one-time code sent")
	return nil
}

// VerifyOTP checks a submitted code against the stored hash. Success
// consumes the code, marks the email verified, and signs the caller in.
// An unknown address gets a fresh account with a random temporary
// password and must_change_password set.
func (s *AuthService) VerifyOTP(ctx context.Context, req *domain.VerifyOTPRequest) (*domain.AuthResponse, error) {
	email := NormalizeEmail(req.Email)

	hash, err := s.otpStore.GetCode(ctx, email)
	if errors.Is(err, repository.ErrOTPNotFound) {
		return nil, customError.WrapOTPInvalid()
	}
	if err != nil {
		return nil, customError.WrapCacheError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Code)) != nil {
		attempts, err := s.otpStore.IncrAttempts(ctx, email)
		if err != nil {
			return nil, customError.WrapCacheError(err)
		}
		if attempts >= int64(s.config.Auth.OTPMaxAttempts) {
			if err := s.otpStore.DeleteCode(ctx, email); err != nil {
				s.log.Warnf("failed to revoke code for %s: %v", email, err)
			}
		}
		return nil, customError.WrapOTPInvalid()
	}

	if err := s.otpStore.DeleteCode(ctx, email); err != nil {
		return nil, customError.WrapCacheError(err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		user, err = s.provisionUser(ctx, email)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if !user.EmailVerified {
		user.EmailVerified = true
		user.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": email}).Info("one-time code verified")

	return s.issueToken(user)
}

// ChangePassword sets a new password and clears the forced-change flag.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *domain.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapUserNotFound(userID.String())
	}
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.log.WithField("user_id", userID).Info("password changed")
	return nil
}

// GetUser fetches the authenticated account.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapUserNotFound(userID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return user, nil
}

// ParseToken validates a bearer token and returns the user ID it was
// issued for.
func (s *AuthService) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, customError.WrapInvalidCredentials()
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, customError.WrapInvalidCredentials()
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, customError.WrapInvalidCredentials()
	}

	return userID, nil
}

func (s *AuthService) issueToken(user *domain.User) (*domain.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Auth.TokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.AuthResponse{
		Token:              signed,
		UserID:             user.ID,
		Email:              user.Email,
		MustChangePassword: user.MustChangePassword,
	}, nil
}

func (s *AuthService) provisionUser(ctx context.Context, email string) (*domain.User, error) {
	password, err := RandomPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:                 uuid.New(),
		Email:              email,
		PasswordHash:       string(hash),
		EmailVerified:      true,
		MustChangePassword: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	user.ReferralCode = ReferralCodeFor(user.ID)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": email}).Info("account provisioned from code verification")
	return user, nil
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits and a leading plus sign.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HashPassword bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// GenerateOTPCode returns a random six-digit code, zero-padded.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RandomPassword returns a random hex string for provisioned accounts.
// It is never shown to the user; the forced password change replaces it.
func RandomPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
