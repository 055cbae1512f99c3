package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/tests/mocks"
)

func newTestAuthService(userRepo *mocks.MockUserRepository) *service.AuthService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
		},
	}
	return service.NewAuthService(userRepo, &mocks.MockOTPStore{}, &mocks.MockMailer{}, cfg, logger)
}

func loginAs(t *testing.T, authSvc *service.AuthService, userRepo *mocks.MockUserRepository, user *domain.User) string {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password-123"), bcrypt.DefaultCost)
	user.PasswordHash = string(hash)
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	auth, err := authSvc.Login(context.Background(), &domain.LoginRequest{
		Email:    user.Email,
		Password: "password-123",
	})
	assert.NoError(t, err)
	return auth.Token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_RejectsMissingAndBadTokens(t *testing.T) {
	authSvc := newTestAuthService(&mocks.MockUserRepository{})
	chain := Authenticate(authSvc)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_SetsUserID(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	authSvc := newTestAuthService(userRepo)

	user := &domain.User{ID: uuid.New(), Email: "juan@example.com"}
	token := loginAs(t, authSvc, userRepo, user)

	var got uuid.UUID
	chain := Authenticate(authSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, got)
}

func TestRequireAdmin_RejectsBorrowerToken(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	authSvc := newTestAuthService(userRepo)

	borrower := &domain.User{ID: uuid.New(), Email: "juan@example.com"}
	token := loginAs(t, authSvc, userRepo, borrower)
	userRepo.On("GetByID", mock.Anything, borrower.ID).Return(borrower, nil)

	chain := Authenticate(authSvc)(RequireAdmin(authSvc)(okHandler()))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/applications/x/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_AllowsStaff(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	authSvc := newTestAuthService(userRepo)

	staff := &domain.User{ID: uuid.New(), Email: "ops@example.com", IsAdmin: true}
	token := loginAs(t, authSvc, userRepo, staff)
	userRepo.On("GetByID", mock.Anything, staff.ID).Return(staff, nil)

	chain := Authenticate(authSvc)(RequireAdmin(authSvc)(okHandler()))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/applications/x/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
