package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/event"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

func TestActivityWorkerLogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	broker := messaging.NewLocalBroker(zerolog.Nop())
	m := metrics.New("test", prometheus.NewRegistry())
	w := NewActivityWorker(broker, "events", zap.New(core), m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	emitter := event.NewService(broker, "events", zerolog.Nop(), nil)
	// Publishing before the subscription exists is lost, so keep emitting
	// until one arrives.
	assert.Eventually(t, func() bool {
		emitter.Emit(ctx, event.AppointmentCreated, model.Appointment{ID: "a1", PatientID: "p1"})
		return logs.FilterMessage("record changed").Len() > 0
	}, 2*time.Second, 20*time.Millisecond)

	assert.NoError(t, broker.Publish(ctx, "events", "not an envelope"))
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("dropping malformed event").Len() == 1
	}, time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("record changed").All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, event.AppointmentCreated, fields["event_type"])
	assert.Equal(t, "a1", fields["record_id"])
	assert.Equal(t, "p1", fields["patient_id"])
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.EventsConsumed.WithLabelValues(event.AppointmentCreated)), 1.0)
}

func TestActivityWorkerLogsUndecodablePayload(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	w := NewActivityWorker(messaging.NewLocalBroker(zerolog.Nop()), "events", zap.New(core), nil)

	w.handle([]byte(`{"id":"e1","type":"patient.deleted","payload":"p9"}`))

	debug := logs.FilterMessage("event payload has no record ids").All()
	if assert.Len(t, debug, 1) {
		assert.Equal(t, "e1", debug[0].ContextMap()["event_id"])
	}
	recorded := logs.FilterMessage("record changed").All()
	if assert.Len(t, recorded, 1) {
		assert.Equal(t, "", recorded[0].ContextMap()["record_id"])
	}
}
