package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/repository/memory"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
)

func newService(t *testing.T, now time.Time) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, repository.Seed(context.Background(), store.Patients(), store.Appointments(), store.Users(),
		func(p string) (string, error) { return p, nil }))

	svc := NewService(store.Patients(), store.Appointments(), time.UTC)
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestOverviewSeeded(t *testing.T) {
	svc, _ := newService(t, time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))

	o, err := svc.Overview(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, Stats{TotalPatients: 3, TotalAppointments: 3, PendingAppointments: 1, TotalRevenue: 420}, o.Stats)
	require.Len(t, o.Upcoming, 1)
	assert.Equal(t, "i3", o.Upcoming[0].ID)
	assert.Equal(t, "John Doe", o.Upcoming[0].PatientName)
}

func TestOverviewUpcomingLimit(t *testing.T) {
	svc, store := newService(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		require.NoError(t, store.Appointments().Create(ctx, &model.Appointment{
			ID:              fmt.Sprintf("x%d", i),
			PatientID:       "p2",
			AppointmentDate: model.NewDate(2024, time.February, 10-i),
			Status:          model.AppointmentStatusPending,
		}))
	}

	o, err := svc.Overview(ctx, 0)
	require.NoError(t, err)
	require.Len(t, o.Upcoming, DefaultUpcomingLimit)
	assert.Equal(t, "i3", o.Upcoming[0].ID)
	assert.Equal(t, "x6", o.Upcoming[1].ID)
}

func TestOverviewOrphanedAppointment(t *testing.T) {
	svc, store := newService(t, time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, store.Patients().Delete(context.Background(), "p1"))

	o, err := svc.Overview(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Stats.TotalPatients)
	assert.Equal(t, 3, o.Stats.TotalAppointments)
	assert.Equal(t, model.UnknownPatientName, o.Upcoming[0].PatientName)
}

func TestCalendarDefaultsToCurrentMonth(t *testing.T) {
	svc, _ := newService(t, time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))

	v, err := svc.Calendar(context.Background(), 0, 0, 0, model.Date{})
	require.NoError(t, err)

	assert.Equal(t, 2024, v.Month.Year)
	assert.Equal(t, time.January, v.Month.Month)
	assert.Equal(t, MonthRef{2023, time.December}, v.Previous)
	assert.Equal(t, MonthRef{2024, time.February}, v.Next)
	assert.Equal(t, model.NewDate(2024, time.January, 20), v.Selected)
	require.Len(t, v.OnDate, 1)
	assert.Equal(t, "i2", v.OnDate[0].ID)
	require.Len(t, v.Upcoming, 1)
	assert.Equal(t, "i3", v.Upcoming[0].ID)
}

func TestCalendarNavigation(t *testing.T) {
	svc, _ := newService(t, time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))

	v, err := svc.Calendar(context.Background(), 2024, time.December, 1, model.Date{})
	require.NoError(t, err)
	assert.Equal(t, 2025, v.Month.Year)
	assert.Equal(t, time.January, v.Month.Month)

	v, err = svc.Calendar(context.Background(), 2024, time.March, -1, model.Date{})
	require.NoError(t, err)
	assert.Equal(t, time.February, v.Month.Month)
	assert.Len(t, v.Month.DayCells(), 29)
}

func TestCalendarRejectsBadMonth(t *testing.T) {
	svc, _ := newService(t, time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))

	_, err := svc.Calendar(context.Background(), 2024, 13, 0, model.Date{})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestPatientOverview(t *testing.T) {
	svc, _ := newService(t, time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC))
	session := model.Session{UserID: "u2", Role: model.RolePatient, PatientID: "p1"}

	o, err := svc.PatientOverview(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, "John Doe", o.Patient.Name)
	require.Len(t, o.Appointments, 2)
	assert.Equal(t, "i3", o.Appointments[0].ID)
	assert.Equal(t, "i1", o.Appointments[1].ID)
	require.Len(t, o.Upcoming, 1)
	assert.Equal(t, "i3", o.Upcoming[0].ID)
	assert.Equal(t, 1, o.CompletedCount)
	assert.Equal(t, 120.0, o.TotalSpent)
}

func TestPatientOverviewIncludesToday(t *testing.T) {
	svc, _ := newService(t, time.Date(2024, 1, 25, 18, 0, 0, 0, time.UTC))

	o, err := svc.PatientOverview(context.Background(), model.Session{Role: model.RolePatient, PatientID: "p1"})
	require.NoError(t, err)
	assert.Len(t, o.Upcoming, 1)
}

func TestPatientOverviewRequiresPatientRole(t *testing.T) {
	svc, _ := newService(t, time.Now())

	_, err := svc.PatientOverview(context.Background(), model.Session{Role: model.RoleAdmin})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	_, err = svc.PatientOverview(context.Background(), model.Session{Role: model.RolePatient, PatientID: "p404"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
