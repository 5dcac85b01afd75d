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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-admin/internal/config"
	appointmentHandler "github.com/jwalitptl/dental-admin/internal/handler/appointment"
	authHandler "github.com/jwalitptl/dental-admin/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/dental-admin/internal/handler/dashboard"
	"github.com/jwalitptl/dental-admin/internal/handler/health"
	patientHandler "github.com/jwalitptl/dental-admin/internal/handler/patient"
	promHandler "github.com/jwalitptl/dental-admin/internal/handler/prometheus"
	"github.com/jwalitptl/dental-admin/internal/middleware"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/repository/memory"
	"github.com/jwalitptl/dental-admin/internal/repository/postgres"
	"github.com/jwalitptl/dental-admin/internal/router"
	appointmentService "github.com/jwalitptl/dental-admin/internal/service/appointment"
	"github.com/jwalitptl/dental-admin/internal/service/attachment"
	authService "github.com/jwalitptl/dental-admin/internal/service/auth"
	dashboardService "github.com/jwalitptl/dental-admin/internal/service/dashboard"
	eventService "github.com/jwalitptl/dental-admin/internal/service/event"
	patientService "github.com/jwalitptl/dental-admin/internal/service/patient"
	pkgauth "github.com/jwalitptl/dental-admin/pkg/auth"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/messaging/redis"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/security"
)

type stores struct {
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	check        health.Check
	close        func() error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if strings.EqualFold(cfg.Store.Driver, "postgres") {
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			patients:     postgres.NewPatientRepository(db),
			appointments: postgres.NewAppointmentRepository(db),
			users:        postgres.NewUserRepository(db),
			check:        db.PingContext,
			close:        db.Close,
		}, nil
	}

	store := memory.NewStore()
	return &stores{
		patients:     store.Patients(),
		appointments: store.Appointments(),
		users:        store.Users(),
		check:        func(context.Context) error { return nil },
		close:        func() error { return nil },
	}, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zl := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Server.MetricsPrefix, reg)

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer st.close()

	hasher := security.NewHasher(cfg.JWT.BcryptCost)
	if cfg.Store.Seed {
		if err := repository.Seed(ctx, st.patients, st.appointments, st.users, hasher.Hash); err != nil {
			log.Fatal().Err(err).Msg("failed to seed store")
		}
		log.Info().Msg("demo data seeded")
	}

	checks := map[string]health.Check{"store": st.check}

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		rb, err := redis.NewRedisBroker(ctx, redis.Config{URL: cfg.Redis.URL}, zl)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		checks["redis"] = rb.Ping
		broker = rb
	} else {
		broker = messaging.NewLocalBroker(zl)
	}
	defer broker.Close()
	events := eventService.NewService(broker, cfg.Redis.Channel, zl, m)

	var files attachment.Store = attachment.InlineStore{}
	if cfg.Minio.Enabled {
		ms, err := attachment.NewMinioStore(ctx, cfg.Minio, zl, m)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to object storage")
		}
		files = ms
	}

	tokens := pkgauth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL())
	authSvc := authService.NewService(st.users, hasher, tokens, m)
	patientSvc := patientService.NewService(st.patients, st.appointments, events)
	appointmentSvc := appointmentService.NewService(st.appointments, st.patients, files, events)
	dashboardSvc := dashboardService.NewService(st.patients, st.appointments, time.Local)

	r := router.NewRouter(middleware.NewAuthMiddleware(authSvc), router.Handlers{
		Auth:        authHandler.NewHandler(authSvc, dashboardSvc),
		Patient:     patientHandler.NewHandler(patientSvc),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Dashboard:   dashboardHandler.NewHandler(dashboardSvc),
		Health:      health.NewHandler(checks),
		Metrics:     promHandler.New(reg),
	}, router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RateLimit:      cfg.RateLimit.RPS,
		RateBurst:      cfg.RateLimit.Burst,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodySize:    cfg.Server.MaxBodySize,
		MetricsPrefix:  cfg.Server.MetricsPrefix,
		Registerer:     reg,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
