package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/mailer"
	"github.com/cashewph/lending-platform/internal/repository"
	"github.com/cashewph/lending-platform/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	logger.Info("Starting loan servicing scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	loanRepo := repository.NewLoanRepository(db)
	userRepo := repository.NewUserRepository(db)
	sender := mailer.NewSender(cfg, logger)
	jobs := service.NewJobsService(loanRepo, userRepo, sender, cfg, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, jobs, logger)

	c.Start()
	logger.Info("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	c.Stop()
	logger.Info("Scheduler stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

func setupCronJobs(c *cron.Cron, jobs *service.JobsService, logger *logrus.Logger) {
	// Nightly sweep flips missed installments to overdue (midnight)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := jobs.MarkOverdue(ctx); err != nil {
			logger.Errorf("Overdue sweep failed: %v", err)
		}
	})
	if err != nil {
		logger.Errorf("Error scheduling overdue sweep: %v", err)
	}

	// Payment reminders go out each morning at 9 AM
	_, err = c.AddFunc("0 0 9 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		if err := jobs.SendReminders(ctx); err != nil {
			logger.Errorf("Reminder run failed: %v", err)
		}
	})
	if err != nil {
		logger.Errorf("Error scheduling payment reminders: %v", err)
	}

	logger.Info("Cron jobs scheduled successfully")
}
