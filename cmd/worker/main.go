package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jwalitptl/dental-admin/internal/config"
	"github.com/jwalitptl/dental-admin/internal/email"
	"github.com/jwalitptl/dental-admin/internal/handler/health"
	promHandler "github.com/jwalitptl/dental-admin/internal/handler/prometheus"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/repository/memory"
	"github.com/jwalitptl/dental-admin/internal/repository/postgres"
	"github.com/jwalitptl/dental-admin/internal/worker"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/messaging/redis"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/security"
)

const healthPort = 8081

func setupHealthCheck(checks map[string]health.Check, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks).RegisterRoutes(engine)
	promHandler.New(reg).RegisterRoutes(engine)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", healthPort), Handler: engine}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("health check server failed", zap.Error(err))
		}
	}()
	return srv
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewZap(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		patients     repository.PatientRepository
		appointments repository.AppointmentRepository
		users        repository.UserRepository
		check        health.Check
	)
	if strings.EqualFold(cfg.Store.Driver, "postgres") {
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		patients = postgres.NewPatientRepository(db)
		appointments = postgres.NewAppointmentRepository(db)
		users = postgres.NewUserRepository(db)
		check = db.PingContext
	} else {
		log.Warn("memory store does not share data with the API; reminders cover the demo data only")
		store := memory.NewStore()
		patients, appointments, users = store.Patients(), store.Appointments(), store.Users()
		if err := repository.Seed(ctx, patients, appointments, users, security.NewHasher(cfg.JWT.BcryptCost).Hash); err != nil {
			log.Fatal("failed to seed store", zap.Error(err))
		}
		check = func(context.Context) error { return nil }
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(cfg.Server.MetricsPrefix, reg)

	reminders := worker.NewReminderWorker(
		appointments,
		patients,
		users,
		email.NewSMTPService(cfg.SMTP),
		worker.ReminderConfig{
			Interval: cfg.Reminder.Interval,
			LeadDays: cfg.Reminder.LeadDays,
			Location: time.Local,
		},
		log,
		m,
	)

	checks := map[string]health.Check{"store": check}

	if cfg.Redis.Enabled {
		zl := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: "json"})
		broker, err := redis.NewRedisBroker(ctx, redis.Config{URL: cfg.Redis.URL}, zl)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer broker.Close()
		checks["redis"] = broker.Ping

		activity := worker.NewActivityWorker(broker, cfg.Redis.Channel, log, m)
		go activity.Start(ctx)
	}

	srv := setupHealthCheck(checks, reg, log)

	reminders.Start(ctx)

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server forced to shutdown", zap.Error(err))
	}
}
