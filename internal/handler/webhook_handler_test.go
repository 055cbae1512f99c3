package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/tests/mocks"
)

func newWebhookHandler(userRepo *mocks.MockUserRepository) *WebhookHandler {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	profileSvc := service.NewProfileService(userRepo, &mocks.MockApplicationRepository{}, logger)
	return NewWebhookHandler(profileSvc, logger)
}

func postSMS(h *WebhookHandler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.InboundSMS(rec, req)
	return rec
}

func TestInboundSMS_VerifyKeywordMarksPhone(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	h := newWebhookHandler(userRepo)

	user := &domain.User{ID: uuid.New(), Phone: "+639171234567"}
	userRepo.On("GetByPhone", mock.Anything, "+639171234567").Return(user, nil)
	userRepo.On("MarkPhoneVerified", mock.Anything, user.ID, mock.AnythingOfType("time.Time")).Return(nil)

	rec := postSMS(h, url.Values{"From": {"+63 917 123 4567"}, "Body": {"verify"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<Response>")
	assert.Contains(t, rec.Body.String(), "verified")
	userRepo.AssertExpectations(t)
}

func TestInboundSMS_UnknownNumberStillReplies200(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	h := newWebhookHandler(userRepo)

	userRepo.On("GetByPhone", mock.Anything, "+15550001111").Return(nil, sql.ErrNoRows)

	rec := postSMS(h, url.Values{"From": {"+15550001111"}, "Body": {"VERIFY"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "couldn't find an account")
}

func TestInboundSMS_OtherKeywordGetsHelpReply(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	h := newWebhookHandler(userRepo)

	rec := postSMS(h, url.Values{"From": {"+639171234567"}, "Body": {"HELLO"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reply VERIFY")
	userRepo.AssertNotCalled(t, "GetByPhone")
}

func TestInboundSMS_MissingFromIsBadRequest(t *testing.T) {
	h := newWebhookHandler(&mocks.MockUserRepository{})

	rec := postSMS(h, url.Values{"Body": {"VERIFY"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInboundSMS_AlreadyVerifiedIsIdempotent(t *testing.T) {
	userRepo := &mocks.MockUserRepository{}
	h := newWebhookHandler(userRepo)

	at := time.Now()
	user := &domain.User{ID: uuid.New(), Phone: "+639171234567", PhoneVerified: true, PhoneVerifiedAt: &at}
	userRepo.On("GetByPhone", mock.Anything, "+639171234567").Return(user, nil)

	rec := postSMS(h, url.Values{"From": {"+639171234567"}, "Body": {"VERIFY"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertNotCalled(t, "MarkPhoneVerified")
}
