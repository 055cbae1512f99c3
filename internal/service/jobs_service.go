package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/mailer"
	"github.com/cashewph/lending-platform/internal/repository"
)

// JobsService holds the scheduled maintenance work: flipping missed
// installments to overdue and mailing payment reminders.
type JobsService struct {
	loanRepo repository.LoanRepository
	userRepo repository.UserRepository
	mailer   mailer.Mailer
	config   *config.Config
	log      *logrus.Logger
}

func NewJobsService(
	loanRepo repository.LoanRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
	cfg *config.Config,
	log *logrus.Logger,
) *JobsService {
	return &JobsService{
		loanRepo: loanRepo,
		userRepo: userRepo,
		mailer:   m,
		config:   cfg,
		log:      log,
	}
}

// MarkOverdue flips pending installments whose due date has passed.
func (s *JobsService) MarkOverdue(ctx context.Context) error {
	changed, err := s.loanRepo.MarkOverdueBefore(ctx, time.Now())
	if err != nil {
		s.log.Errorf("overdue sweep failed: %v", err)
		return err
	}

	s.log.WithField("count", changed).Info("overdue sweep complete")
	return nil
}

// SendReminders emails borrowers whose next installment falls inside
// the reminder window, plus anyone already overdue. Each failed send is
// logged and skipped so one bad address cannot stall the run.
func (s *JobsService) SendReminders(ctx context.Context) error {
	now := time.Now()
	window := time.Duration(s.config.Business.ReminderWindowDays) * 24 * time.Hour

	entries, err := s.loanRepo.GetDueBetween(ctx, now.Add(-window), now.Add(window))
	if err != nil {
		s.log.Errorf("reminder query failed: %v", err)
		return err
	}

	sent := 0
	for _, entry := range entries {
		loan, err := s.loanRepo.GetByID(ctx, entry.LoanID)
		if err != nil {
			s.log.Warnf("reminder skipped, loan %s: %v", entry.LoanID, err)
			continue
		}

		user, err := s.userRepo.GetByID(ctx, loan.UserID)
		if err != nil {
			s.log.Warnf("reminder skipped, user %s: %v", loan.UserID, err)
			continue
		}

		isOverdue := now.After(entry.DueDate)
		if err := s.mailer.SendPaymentReminder(user.Email, user.FirstName, entry.DueDate, entry.AmountDue, isOverdue); err != nil {
			s.log.Warnf("reminder to %s failed: %v", user.Email, err)
			continue
		}
		sent++
	}

	s.log.WithFields(logrus.Fields{"due": len(entries), "sent": sent}).Info("payment reminders dispatched")
	return nil
}
