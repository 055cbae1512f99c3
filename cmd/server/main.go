package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cashewph/lending-platform/internal/config"
	"github.com/cashewph/lending-platform/internal/handler"
	"github.com/cashewph/lending-platform/internal/mailer"
	"github.com/cashewph/lending-platform/internal/middleware"
	"github.com/cashewph/lending-platform/internal/repository"
	"github.com/cashewph/lending-platform/internal/service"
	"github.com/cashewph/lending-platform/internal/storage"
	"github.com/cashewph/lending-platform/pkg/response"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories and supporting infrastructure
	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	otpStore := repository.NewOTPStore(redisClient)

	sender := mailer.NewSender(cfg, logger)
	docStore := storage.NewDiskStore(cfg.Storage.Dir, cfg.Storage.SigningSecret, cfg.Server.PublicURL, cfg.Storage.SignedURLTTL, logger)

	// Services
	authSvc := service.NewAuthService(userRepo, otpStore, sender, cfg, logger)
	loanSvc := service.NewLoanService(loanRepo, paymentRepo, redisClient, cfg, logger)
	ledgerSvc := service.NewLedgerService(loanRepo, paymentRepo, logger)
	appSvc := service.NewApplicationService(appRepo, userRepo, loanSvc, sender, cfg, logger)
	profileSvc := service.NewProfileService(userRepo, appRepo, logger)
	referralSvc := service.NewReferralService(userRepo, sender, cfg.Server.PublicURL, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, logger)
	appHandler := handler.NewApplicationHandler(appSvc, logger)
	loanHandler := handler.NewLoanHandler(loanSvc, ledgerSvc, logger)
	docHandler := handler.NewDocumentHandler(docStore, logger)
	profileHandler := handler.NewProfileHandler(profileSvc, referralSvc, logger)
	webhookHandler := handler.NewWebhookHandler(profileSvc, logger)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(authSvc, authHandler, appHandler, loanHandler, docHandler, profileHandler, webhookHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
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

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	authSvc *service.AuthService,
	authHandler *handler.AuthHandler,
	appHandler *handler.ApplicationHandler,
	loanHandler *handler.LoanHandler,
	docHandler *handler.DocumentHandler,
	profileHandler *handler.ProfileHandler,
	webhookHandler *handler.WebhookHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware)
	router.Use(response.LoggingMiddleware)
	router.Use(middleware.Metrics)

	// Health and metrics
	router.HandleFunc("/health", healthHandler.Live).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Signed document retrieval carries its credential in the query
	router.HandleFunc("/documents/signed", docHandler.Serve).Methods("GET")

	// Provider callbacks
	router.HandleFunc("/webhooks/sms", webhookHandler.InboundSMS).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public: auth and the application form
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/otp/send", authHandler.SendOTP).Methods("POST")
	api.HandleFunc("/auth/otp/verify", authHandler.VerifyOTP).Methods("POST")
	api.HandleFunc("/applications", appHandler.Submit).Methods("POST")
	api.HandleFunc("/applications/validate-step", appHandler.ValidateStep).Methods("POST")

	// Authenticated borrower endpoints
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Authenticate(authSvc))

	authed.HandleFunc("/auth/password", authHandler.ChangePassword).Methods("POST")
	authed.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	authed.HandleFunc("/applications", appHandler.List).Methods("GET")
	authed.HandleFunc("/applications/{id}", appHandler.Get).Methods("GET")

	authed.HandleFunc("/loans", loanHandler.List).Methods("GET")
	authed.HandleFunc("/loans/{id}", loanHandler.Get).Methods("GET")
	authed.HandleFunc("/loans/{id}/schedule", loanHandler.Schedule).Methods("GET")
	authed.HandleFunc("/loans/{id}/transactions", loanHandler.Transactions).Methods("GET")
	authed.HandleFunc("/loans/{id}/payments", loanHandler.MakePayment).Methods("POST")
	authed.HandleFunc("/loans/{id}/outstanding", loanHandler.Outstanding).Methods("GET")
	authed.HandleFunc("/loans/{id}/delinquency", loanHandler.Delinquency).Methods("GET")

	authed.HandleFunc("/documents", docHandler.Upload).Methods("POST")
	authed.HandleFunc("/documents", docHandler.List).Methods("GET")
	authed.HandleFunc("/documents/sign-url", docHandler.SignURL).Methods("POST")

	authed.HandleFunc("/profile", profileHandler.Get).Methods("GET")
	authed.HandleFunc("/profile", profileHandler.Update).Methods("PUT")
	authed.HandleFunc("/referrals", profileHandler.Referral).Methods("GET")
	authed.HandleFunc("/referrals/invite", profileHandler.SendInvite).Methods("POST")

	// Back-office review surface
	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.Authenticate(authSvc))
	admin.Use(middleware.RequireAdmin(authSvc))

	admin.HandleFunc("/applications/{id}/status", appHandler.Review).Methods("PUT")

	return router
}
