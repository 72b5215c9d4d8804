package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/harborview/hms/internal/admin"
	"github.com/harborview/hms/internal/api/router"
	"github.com/harborview/hms/internal/appointments"
	"github.com/harborview/hms/internal/availability"
	appconfig "github.com/harborview/hms/internal/config"
	"github.com/harborview/hms/internal/departments"
	"github.com/harborview/hms/internal/doctors"
	"github.com/harborview/hms/internal/notify"
	"github.com/harborview/hms/internal/observability/metrics"
	"github.com/harborview/hms/internal/patients"
	"github.com/harborview/hms/internal/session"
	"github.com/harborview/hms/internal/treatments"
	"github.com/harborview/hms/internal/users"
	"github.com/harborview/hms/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital management API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Session revocation: Redis when configured, in-process fallback for dev.
	var revocations session.RevocationStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		revocations = session.NewRedisRevocationStore(client)
	} else {
		logger.Warn("REDIS_ADDR not set, session revocation is process-local")
		revocations = session.NewInMemoryRevocationStore()
	}
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, revocations)

	usersStore := users.NewPostgresStore(pool)
	availStore := availability.NewPostgresStore(pool)
	apptStore := appointments.NewPostgresStore(pool)
	treatmentStore := treatments.NewPostgresStore(pool)
	doctorsStore := doctors.NewPostgresStore(pool)
	patientsStore := patients.NewPostgresStore(pool)
	departmentsStore := departments.NewPostgresStore(pool)
	counts := admin.NewPostgresCounts(pool)

	notifier := notify.NewService(
		buildEmailSender(ctx, cfg, logger),
		func(ctx context.Context, patientID string) (string, string, error) {
			p, err := patientsStore.Get(ctx, patientID)
			if err != nil {
				return "", "", err
			}
			return p.Name, p.ContactInfo, nil
		},
		func(ctx context.Context, doctorID string) (string, error) {
			d, err := doctorsStore.Get(ctx, doctorID)
			if err != nil {
				return "", err
			}
			return d.Name, nil
		},
		logger,
	)

	schedMetrics := metrics.NewSchedulingMetrics(nil)
	scheduler := appointments.NewScheduler(apptStore, availStore, notifier, schedMetrics, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		Sessions:            sessions,
		UsersHandler:        users.NewHandler(usersStore, sessions, cfg.SessionTTL, logger),
		AvailabilityHandler: availability.NewHandler(availStore, doctorsStore.IDForUser, logger),
		AppointmentsHandler: appointments.NewHandler(scheduler, apptStore, patientsStore.IDForUser, doctorsStore.IDForUser, logger),
		TreatmentsHandler:   treatments.NewHandler(treatmentStore, apptStore, doctorsStore.IDForUser, logger),
		DoctorsHandler:      doctors.NewHandler(doctorsStore, cfg.AvailabilityHorizonDays, logger),
		PatientsHandler:     patients.NewHandler(patientsStore, logger),
		DepartmentsHandler:  departments.NewHandler(departmentsStore, logger),
		AdminDashboard:      admin.NewHandler(counts, logger),
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender returns the SES sender when email is configured, a
// logging stub otherwise.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.EmailFromAddress == "" {
		logger.Info("EMAIL_FROM_ADDRESS not set, booking emails disabled")
		return notify.NewStubEmailSender(logger)
	}

	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		logger.Error("failed to load AWS config, falling back to stub email sender", "error", err)
		return notify.NewStubEmailSender(logger)
	}

	return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.EmailFromAddress,
		FromName:  cfg.EmailFromName,
	}, logger)
}
