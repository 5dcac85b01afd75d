package event

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

const (
	PatientCreated     = "patient.created"
	PatientUpdated     = "patient.updated"
	PatientDeleted     = "patient.deleted"
	AppointmentCreated = "appointment.created"
	AppointmentUpdated = "appointment.updated"
	AppointmentDeleted = "appointment.deleted"
)

// Emitter announces that a record changed. Emitting never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{})
}

type Service struct {
	broker  messaging.Broker
	channel string
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(broker messaging.Broker, channel string, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		broker:  broker,
		channel: channel,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

func (s *Service) Emit(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		s.count(eventType, "failed")
		return
	}

	msg := messaging.Message{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: s.now().UTC(),
		Payload:    body,
	}

	if err := s.broker.Publish(ctx, s.channel, msg); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Str("event_id", msg.ID).Msg("failed to publish event")
		s.count(eventType, "failed")
		return
	}
	s.count(eventType, "published")
}

func (s *Service) count(eventType, status string) {
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(eventType, status).Inc()
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Emit(context.Context, string, interface{}) {}
