package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/domain"
	customError "github.com/cashewph/lending-platform/pkg/errors"
	"github.com/cashewph/lending-platform/tests/mocks"
)

func authTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			TokenTTL:       24 * time.Hour,
			OTPTTL:         5 * time.Minute,
			OTPResendAfter: 30 * time.Second,
			OTPMaxAttempts: 5,
		},
	}
}

func newAuthService(userRepo *mocks.MockUserRepository, otpStore *mocks.MockOTPStore, m *mocks.MockMailer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		otpStore: otpStore,
		mailer:   m,
		config:   authTestConfig(),
		log:      quietLogger(),
	}
}

func TestLogin_Success(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	service := newAuthService(userRepo, &mocks.MockOTPStore{}, &mocks.MockMailer{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.DefaultCost)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "juan@example.com",
		PasswordHash: string(hash),
	}

	userRepo.On("GetByEmail", mock.Anything, "juan@example.com").Return(user, nil)

	auth, err := service.Login(context.Background(), &domain.LoginRequest{
		Email:    "Juan@Example.com",
		Password: "hunter2hunter2",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, user.ID, auth.UserID)

	// The token round-trips back to the same user.
	parsed, err := service.ParseToken(auth.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, parsed)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	service := newAuthService(userRepo, &mocks.MockOTPStore{}, &mocks.MockMailer{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	user := &domain.User{ID: uuid.New(), Email: "juan@example.com", PasswordHash: string(hash)}

	userRepo.On("GetByEmail", mock.Anything, "juan@example.com").Return(user, nil)

	_, err := service.Login(context.Background(), &domain.LoginRequest{
		Email:    "juan@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, customError.ErrInvalidCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	service := newAuthService(userRepo, &mocks.MockOTPStore{}, &mocks.MockMailer{})

	existing := &domain.User{ID: uuid.New(), Email: "juan@example.com"}
	userRepo.On("GetByEmail", mock.Anything, "juan@example.com").Return(existing, nil)

	_, err := service.Register(context.Background(), &domain.RegisterRequest{
		Email:     "juan@example.com",
		Password:  "hunter2hunter2",
		FirstName: "Juan",
		LastName:  "Dela Cruz",
	})

	assert.ErrorIs(t, err, customError.ErrUserAlreadyExists)
	userRepo.AssertNotCalled(t, "Create")
}

func TestSendOTP_CooldownRejected(t *testing.T) {
	otpStore := &mocks.MockOTPStore{}
	m := &mocks.MockMailer{}
	service := newAuthService(&mocks.MockUserRepository{}, otpStore, m)

	otpStore.On("CooldownRemaining", mock.Anything, "juan@example.com").Return(20*time.Second, nil)

	err := service.SendOTP(context.Background(), &domain.SendOTPRequest{Email: "juan@example.com"})

	assert.ErrorIs(t, err, customError.ErrOTPCooldown)
	m.AssertNotCalled(t, "SendOTP")
}

func TestSendOTP_StoresHashNotCode(t *testing.T) {
	otpStore := &mocks.MockOTPStore{}
	m := &mocks.MockMailer{}
	service := newAuthService(&mocks.MockUserRepository{}, otpStore, m)

	var storedHash, sentCode string

	otpStore.On("CooldownRemaining", mock.Anything, "juan@example.com").Return(time.Duration(0), nil)
	otpStore.On("SaveCode", mock.Anything, "juan@example.com", mock.AnythingOfType("string"), 5*time.Minute).
		Run(func(args mock.Arguments) { storedHash = args.String(2) }).Return(nil)
	otpStore.On("SetCooldown", mock.Anything, "juan@example.com", 30*time.Second).Return(nil)
	m.On("SendOTP", "juan@example.com", mock.AnythingOfType("string"), 5*time.Minute).
		Run(func(args mock.Arguments) { sentCode = args.String(1) }).Return(nil)

	err := service.SendOTP(context.Background(), &domain.SendOTPRequest{Email: "juan@example.com"})

	assert.NoError(t, err)
	assert.Len(t, sentCode, 6)
	assert.NotEqual(t, sentCode, storedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(sentCode)))
}

func TestVerifyOTP_SuccessSignsInExistingUser(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	otpStore := &mocks.MockOTPStore{}
	service := newAuthService(userRepo, otpStore, &mocks.MockMailer{})

	code := "123456"
	hash, _ := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	user := &domain.User{ID: uuid.New(), Email: "juan@example.com", EmailVerified: true}

	otpStore.On("GetCode", mock.Anything, "juan@example.com").Return(string(hash), nil)
	otpStore.On("DeleteCode", mock.Anything, "juan@example.com").Return(nil)
	userRepo.On("GetByEmail", mock.Anything, "juan@example.com").Return(user, nil)

	auth, err := service.VerifyOTP(context.Background(), &domain.VerifyOTPRequest{
		Email: "juan@example.com",
		Code:  code,
	})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, auth.UserID)
	assert.False(t, auth.MustChangePassword)
}

func TestVerifyOTP_WrongCodeCountsAttempt(t *testing.T) {
	otpStore := &mocks.MockOTPStore{}
	service := newAuthService(&mocks.MockUserRepository{}, otpStore, &mocks.MockMailer{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)

	otpStore.On("GetCode", mock.Anything, "juan@example.com").Return(string(hash), nil)
	otpStore.On("IncrAttempts", mock.Anything, "juan@example.com").Return(int64(1), nil)

	_, err := service.VerifyOTP(context.Background(), &domain.VerifyOTPRequest{
		Email: "juan@example.com",
		Code:  "654321",
	})

	assert.ErrorIs(t, err, customError.ErrOTPInvalid)
	otpStore.AssertNotCalled(t, "DeleteCode")
}

func TestVerifyOTP_MaxAttemptsRevokesCode(t *testing.T) {
	otpStore := &mocks.MockOTPStore{}
	service := newAuthService(&mocks.MockUserRepository{}, otpStore, &mocks.MockMailer{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)

	otpStore.On("GetCode", mock.Anything, "juan@example.com").Return(string(hash), nil)
	otpStore.On("IncrAttempts", mock.Anything, "juan@example.com").Return(int64(5), nil)
	otpStore.On("DeleteCode", mock.Anything, "juan@example.com").Return(nil)

	_, err := service.VerifyOTP(context.Background(), &domain.VerifyOTPRequest{
		Email: "juan@example.com",
		Code:  "654321",
	})

	assert.ErrorIs(t, err, customError.ErrOTPInvalid)
	otpStore.AssertCalled(t, "DeleteCode", mock.Anything, "juan@example.com")
}

func TestVerifyOTP_ProvisionsUnknownUser(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	otpStore := &mocks.MockOTPStore{}
	service := newAuthService(userRepo, otpStore, &mocks.MockMailer{})

	code := "123456"
	hash, _ := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)

	otpStore.On("GetCode", mock.Anything, "new@example.com").Return(string(hash), nil)
	otpStore.On("DeleteCode", mock.Anything, "new@example.com").Return(nil)
	userRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, sql.ErrNoRows)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "new@example.com" && u.MustChangePassword && u.EmailVerified && u.PasswordHash != ""
	})).Return(nil)

	auth, err := service.VerifyOTP(context.Background(), &domain.VerifyOTPRequest{
		Email: "new@example.com",
		Code:  code,
	})

	assert.NoError(t, err)
	assert.True(t, auth.MustChangePassword)
	userRepo.AssertExpectations(t)
}

func TestChangePassword_ClearsForcedChangeFlag(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	service := newAuthService(userRepo, &mocks.MockOTPStore{}, &mocks.MockMailer{})

	user := &domain.User{ID: uuid.New(), Email: "juan@example.com", MustChangePassword: true}

	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return !u.MustChangePassword &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-password-123")) == nil
	})).Return(nil)

	err := service.ChangePassword(context.Background(), user.ID, &domain.ChangePasswordRequest{
		NewPassword: "new-password-123",
	})

	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+639171234567", NormalizePhone("+63 917 123 4567"))
	assert.Equal(t, "09171234567", NormalizePhone("(0917) 123-4567"))
	assert.Equal(t, "639171234567", NormalizePhone("63-917+1234567"))
}

func TestReferralCodeFor_Stable(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, ReferralCodeFor(id), ReferralCodeFor(id))
	assert.Len(t, ReferralCodeFor(id), 8)
	assert.NotEqual(t, ReferralCodeFor(id), ReferralCodeFor(uuid.New()))
}
