package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/repository/memory"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func newWorker(t *testing.T, mailer *MockMailer, now time.Time) (*ReminderWorker, *memory.Store, *metrics.Metrics) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, repository.Seed(context.Background(), store.Patients(), store.Appointments(), store.Users(),
		func(p string) (string, error) { return p, nil }))

	m := metrics.New("test", prometheus.NewRegistry())
	w := NewReminderWorker(store.Appointments(), store.Patients(), store.Users(), mailer,
		ReminderConfig{Interval: time.Minute, LeadDays: 1, Location: time.UTC}, zap.NewNop(), m)
	w.now = func() time.Time { return now }
	return w, store, m
}

func TestRunOnceSendsReminder(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, "john@entnt.in", "Reminder: Root Canal on 2024-01-25", mock.AnythingOfType("string")).Return(nil).Once()

	w, _, m := newWorker(t, mailer, time.Date(2024, 1, 24, 8, 0, 0, 0, time.UTC))

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	mailer.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersSent))
}

func TestRunOnceSkipsPatientsWithoutAccount(t *testing.T) {
	mailer := new(MockMailer)
	w, store, _ := newWorker(t, mailer, time.Date(2024, 2, 9, 8, 0, 0, 0, time.UTC))
	require.NoError(t, store.Appointments().Create(context.Background(), &model.Appointment{
		ID:              "x1",
		PatientID:       "p2",
		Title:           "Checkup",
		AppointmentDate: model.NewDate(2024, time.February, 10),
		Status:          model.AppointmentStatusPending,
	}))

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnceIgnoresNonPending(t *testing.T) {
	mailer := new(MockMailer)
	w, _, _ := newWorker(t, mailer, time.Date(2024, 1, 19, 8, 0, 0, 0, time.UTC))

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnceRetriesAfterFailure(t *testing.T) {
	mailer := new(MockMailer)
	mailer.On("Send", mock.Anything, "john@entnt.in", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	mailer.On("Send", mock.Anything, "john@entnt.in", mock.Anything, mock.Anything).Return(nil).Once()

	w, _, m := newWorker(t, mailer, time.Date(2024, 1, 24, 8, 0, 0, 0, time.UTC))

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemindersFailed))

	sent, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	mailer.AssertExpectations(t)
}

func TestStartStopsOnCancel(t *testing.T) {
	mailer := new(MockMailer)
	w, _, _ := newWorker(t, mailer, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
