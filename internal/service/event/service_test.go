package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *MockBroker) Close() error {
	return m.Called().Error(0)
}

func TestEmitPublishesEnvelope(t *testing.T) {
	broker := new(MockBroker)
	m := metrics.New("test", prometheus.NewRegistry())
	svc := NewService(broker, "dental.events", zerolog.Nop(), m)
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC) }

	broker.On("Publish", mock.Anything, "dental.events", mock.MatchedBy(func(msg messaging.Message) bool {
		var payload map[string]string
		_ = json.Unmarshal(msg.Payload, &payload)
		return msg.Type == PatientCreated && payload["id"] == "p9" && msg.ID != "" && msg.OccurredAt.Day() == 20
	})).Return(nil)

	svc.Emit(context.Background(), PatientCreated, map[string]string{"id": "p9"})

	broker.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(PatientCreated, "published")))
}

func TestEmitSwallowsBrokerErrors(t *testing.T) {
	broker := new(MockBroker)
	m := metrics.New("test", prometheus.NewRegistry())
	svc := NewService(broker, "dental.events", zerolog.Nop(), m)

	broker.On("Publish", mock.Anything, "dental.events", mock.Anything).Return(errors.New("redis down"))

	require.NotPanics(t, func() {
		svc.Emit(context.Background(), AppointmentDeleted, map[string]string{"id": "i1"})
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(AppointmentDeleted, "failed")))
}

func TestEmitWithLocalBroker(t *testing.T) {
	broker := messaging.NewLocalBroker(zerolog.Nop())
	defer broker.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := broker.Subscribe(ctx, "dental.events")
	require.NoError(t, err)

	NewService(broker, "dental.events", zerolog.Nop(), nil).Emit(ctx, AppointmentCreated, map[string]string{"id": "i9"})

	select {
	case raw := <-ch:
		var msg messaging.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, AppointmentCreated, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
