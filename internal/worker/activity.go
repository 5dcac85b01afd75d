package worker

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

// ActivityWorker reads the domain events the API publishes and writes them
// to the worker log, giving a record of every patient and appointment change.
type ActivityWorker struct {
	broker     messaging.Broker
	channel    string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	retryDelay time.Duration
}

func NewActivityWorker(broker messaging.Broker, channel string, logger *zap.Logger, m *metrics.Metrics) *ActivityWorker {
	return &ActivityWorker{
		broker:     broker,
		channel:    channel,
		logger:     logger,
		metrics:    m,
		retryDelay: 5 * time.Second,
	}
}

// Start consumes until ctx is done, subscribing again whenever the
// subscription drops.
func (w *ActivityWorker) Start(ctx context.Context) {
	w.logger.Info("activity worker started", zap.String("channel", w.channel))
	for {
		msgs, err := w.broker.Subscribe(ctx, w.channel)
		if err != nil {
			w.logger.Warn("failed to subscribe to events", zap.String("channel", w.channel), zap.Error(err))
		} else {
			w.consume(ctx, msgs)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("activity worker shutting down")
			return
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *ActivityWorker) consume(ctx context.Context, msgs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-msgs:
			if !ok {
				return
			}
			w.handle(raw)
		}
	}
}

func (w *ActivityWorker) handle(raw []byte) {
	var msg messaging.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		w.logger.Warn("dropping malformed event", zap.Error(err), zap.ByteString("raw", raw))
		return
	}

	var subject struct {
		ID        string `json:"id"`
		PatientID string `json:"patient_id"`
	}
	if err := json.Unmarshal(msg.Payload, &subject); err != nil {
		w.logger.Debug("event payload has no record ids",
			zap.String("event_id", msg.ID),
			zap.String("event_type", msg.Type),
			zap.Error(err))
	}

	w.logger.Info("record changed",
		zap.String("event_id", msg.ID),
		zap.String("event_type", msg.Type),
		zap.Time("occurred_at", msg.OccurredAt),
		zap.String("record_id", subject.ID),
		zap.String("patient_id", subject.PatientID))

	if w.metrics != nil {
		w.metrics.EventsConsumed.WithLabelValues(msg.Type).Inc()
	}
}
