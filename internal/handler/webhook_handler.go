package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/service"
	customError "github.com/cashewph/lending-platform/pkg/errors"
	"github.com/cashewph/lending-platform/pkg/response"
)

// verifyKeyword is what a borrower texts to confirm their number.
const verifyKeyword = "VERIFY"

// WebhookHandler receives inbound SMS callbacks from the messaging
// provider and answers with a TwiML auto-reply.
type WebhookHandler struct {
	profileSvc *service.ProfileService
	log        *logrus.Logger
}

func NewWebhookHandler(profileSvc *service.ProfileService, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{profileSvc: profileSvc, log: log}
}

// InboundSMS handles POST /webhooks/sms. The provider posts a form
// with From and Body; the reply body rides back as XML. Everything but
// a malformed request answers 200 so the provider does not retry.
func (h *WebhookHandler) InboundSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "malformed webhook payload", err)
		return
	}

	from := strings.TrimSpace(r.PostFormValue("From"))
	body := strings.TrimSpace(r.PostFormValue("Body"))
	if from == "" {
		response.BadRequest(w, "missing From field", nil)
		return
	}

	reply := h.handleMessage(r, from, body)
	response.XML(w, http.StatusOK, twimlMessage(reply))
}

func (h *WebhookHandler) handleMessage(r *http.Request, from, body string) string {
	if !strings.EqualFold(body, verifyKeyword) {
		return "Reply VERIFY to confirm your phone number."
	}

	user, err := h.profileSvc.VerifyPhone(r.Context(), from)
	if err != nil {
		var bizErr *customError.BusinessError
		if errors.As(err, &bizErr) && bizErr.Code == customError.ErrCodeUserNotFound {
			return "We couldn't find an account for this number. Please use the number from your application."
		}
		h.log.Errorf("phone verification for %s failed: %v", from, err)
		return "Something went wrong. Please try again later."
	}

	h.log.WithField("user_id", user.ID).Info("phone verified via SMS")
	return "Your phone number is verified. Thank you!"
}

// twimlMessage renders the provider's auto-reply document:
// <Response><Message>text</Message></Response>
func twimlMessage(text string) []byte {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("Response")
	root.CreateElement("Message").SetText(text)

	out, err := doc.WriteToBytes()
	if err != nil {
		return []byte("<Response></Response>")
	}
	return out
}
