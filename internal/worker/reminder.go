package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jwalitptl/dental-admin/internal/email"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

const sentTTL = 48 * time.Hour

// ReminderWorker emails patients about their pending appointments a fixed
// number of days ahead.
type ReminderWorker struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	users        repository.UserRepository
	mailer       email.Service
	logger       *zap.Logger
	metrics      *metrics.Metrics

	interval time.Duration
	leadDays int
	loc      *time.Location
	now      func() time.Time
	sent     *cache.Cache
}

type ReminderConfig struct {
	Interval time.Duration
	LeadDays int
	Location *time.Location
}

func NewReminderWorker(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	mailer email.Service,
	cfg ReminderConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ReminderWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ReminderWorker{
		appointments: appointments,
		patients:     patients,
		users:        users,
		mailer:       mailer,
		logger:       logger,
		metrics:      m,
		interval:     cfg.Interval,
		leadDays:     cfg.LeadDays,
		loc:          cfg.Location,
		now:          time.Now,
		sent:         cache.New(sentTTL, time.Hour),
	}
}

// Start sweeps once immediately and then on every tick until ctx is done.
func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("reminder worker started",
		zap.Duration("interval", w.interval),
		zap.Int("lead_days", w.leadDays))

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker shutting down")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	sent, err := w.RunOnce(ctx)
	if err != nil {
		w.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}
	w.logger.Debug("reminder sweep finished", zap.Int("sent", sent))
}

// RunOnce sends reminders for pending appointments due leadDays from today
// and returns how many went out. An appointment is reminded at most once.
func (w *ReminderWorker) RunOnce(ctx context.Context) (int, error) {
	if w.metrics != nil {
		timer := prometheus.NewTimer(w.metrics.ReminderRunDelay)
		defer timer.ObserveDuration()
	}

	target := model.DateOf(w.now().In(w.loc)).AddDays(w.leadDays)

	appts, err := w.appointments.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	patients, err := w.patients.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list patients: %w", err)
	}
	dir := model.NewPatientDirectory(patients)

	sent := 0
	for _, a := range appts {
		if a.Status != model.AppointmentStatusPending || a.AppointmentDate != target {
			continue
		}
		key := a.ID + "@" + a.AppointmentDate.String()
		if _, done := w.sent.Get(key); done {
			continue
		}

		user, err := w.users.GetByPatientID(ctx, a.PatientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				w.logger.Debug("no account for patient, skipping reminder",
					zap.String("appointment_id", a.ID),
					zap.String("patient_id", a.PatientID))
				continue
			}
			return sent, fmt.Errorf("failed to look up account for patient %s: %w", a.PatientID, err)
		}

		subject, body := email.ReminderMessage(dir.Name(a.PatientID), a)
		if err := w.mailer.Send(ctx, user.Email, subject, body); err != nil {
			w.logger.Warn("failed to send reminder",
				zap.String("appointment_id", a.ID),
				zap.String("to", user.Email),
				zap.Error(err))
			if w.metrics != nil {
				w.metrics.RemindersFailed.Inc()
			}
			continue
		}

		w.sent.SetDefault(key, struct{}{})
		sent++
		if w.metrics != nil {
			w.metrics.RemindersSent.Inc()
		}
		w.logger.Info("reminder sent",
			zap.String("appointment_id", a.ID),
			zap.String("to", user.Email),
			zap.String("date", a.AppointmentDate.String()))
	}
	return sent, nil
}
