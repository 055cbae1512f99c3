package mailer

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/config"
)

// Mailer sends transactional email. Delivery failures are reported to
// the caller, which decides whether they are fatal for the operation.
type Mailer interface {
	SendOTP(to, code string, ttl time.Duration) error
	SendApplicationConfirmation(to, firstName, applicationID string) error
	SendPaymentReminder(to, firstName string, dueDate time.Time, amount decimal.Decimal, isOverdue bool) error
	SendInvite(to, referralLink string) error
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTP.Host, s.cfg.SMTP.Port)
	auth := smtp.PlainAuth("", s.cfg.SMTP.Username, s.cfg.SMTP.Password, s.cfg.SMTP.Host)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}

// SendOTP delivers a one-time sign-in code.
func (s *Sender) SendOTP(to, code string, ttl time.Duration) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTP.Sender
	e.To = []string{to}
	e.Subject = "Your Cashew verification code"

	body := fmt.Sprintf(
		"Your one-time verification code is: %s\n\n"+
			"The code expires in %d minutes. If you did not request it, you can ignore this email.\n"+
			"\nBest regards,\nThe Cashew Team",
		code, int(ttl.Minutes()),
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendApplicationConfirmation acknowledges a submitted loan application.
func (s *Sender) SendApplicationConfirmation(to, firstName, applicationID string) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTP.Sender
	e.To = []string{to}
	e.Subject = "Complete Your Loan Application Registration"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for submitting your loan application. To complete your registration, "+
			"please check your email for a verification link.\n\n"+
			"Application Reference: %s\n\n"+
			"Once verified, we'll review your application within 24 hours.\n"+
			"\nBest regards,\nThe Cashew Team",
		firstName, applicationID,
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendPaymentReminder sends a payment reminder email
func (s *Sender) SendPaymentReminder(to, firstName string, dueDate time.Time, amount decimal.Decimal, isOverdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTP.Sender
	e.To = []string{to}
	if isOverdue {
		e.Subject = "Overdue Loan Payment Notification"
	} else {
		e.Subject = "Upcoming Loan Payment Reminder"
	}

	body := fmt.Sprintf("Dear %s,\n\n", firstName)
	if isOverdue {
		body += fmt.Sprintf(
			"Your loan payment of PHP %s was due on %s and is now overdue.\n"+
				"Please make the payment as soon as possible to keep your account in good standing.\n",
			amount.StringFixed(2), dueDate.Format("2006-01-02"),
		)
	} else {
		body += fmt.Sprintf(
			"This is a reminder that your loan payment of PHP %s is due on %s.\n"+
				"Please ensure your payment is made on or before the due date.\n",
			amount.StringFixed(2), dueDate.Format("2006-01-02"),
		)
	}
	body += "\nBest regards,\nThe Cashew Team"
	e.Text = []byte(body)

	return s.send(e)
}

// SendInvite sends a referral invitation.
func (s *Sender) SendInvite(to, referralLink string) error {
	e := email.NewEmail()
	e.From = s.cfg.SMTP.Sender
	e.To = []string{to}
	e.Subject = "Join Cashew - Fast and Simple Loans"

	body := fmt.Sprintf(
		"Hi there!\n\n"+
			"Your friend invited you to Cashew, a platform for fast and simple loans.\n\n"+
			"Use their referral link to get special benefits: %s\n"+
			"\nBest regards,\nThe Cashew Team",
		referralLink,
	)
	e.Text = []byte(body)

	return s.send(e)
}
