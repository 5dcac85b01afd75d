package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

func plainHash(p string) (string, error) { return "hash:" + p, nil }

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, repository.Seed(context.Background(), s.Patients(), s.Appointments(), s.Users(), plainHash))
	return s
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	patients, err := s.Patients().List(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{patients[0].ID, patients[1].ID, patients[2].ID})

	appts, err := s.Appointments().List(ctx)
	require.NoError(t, err)
	assert.Len(t, appts, 3)

	admin, err := s.Users().GetByEmail(ctx, "ADMIN@entnt.in")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.Equal(t, "hash:admin123", admin.PasswordHash)

	john, err := s.Users().GetByPatientID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "john@entnt.in", john.Email)

	// seeding twice is a no-op
	require.NoError(t, repository.Seed(ctx, s.Patients(), s.Appointments(), s.Users(), plainHash))
	patients, _ = s.Patients().List(ctx)
	assert.Len(t, patients, 3)
}

func TestSeedDoesNotRestoreDeletedRecords(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	require.NoError(t, s.Patients().Delete(ctx, "p2"))
	require.NoError(t, s.Appointments().Delete(ctx, "i2"))

	require.NoError(t, repository.Seed(ctx, s.Patients(), s.Appointments(), s.Users(), plainHash))

	_, err := s.Patients().Get(ctx, "p2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Appointments().Get(ctx, "i2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPatientCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Patients()

	p := &model.Patient{ID: "x", Name: "Ann"}
	require.NoError(t, repo.Create(ctx, p))
	assert.Error(t, repo.Create(ctx, p))

	got, err := repo.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	got.Name = "Anne"
	require.NoError(t, repo.Update(ctx, got))
	got, _ = repo.Get(ctx, "x")
	assert.Equal(t, "Anne", got.Name)

	require.NoError(t, repo.Delete(ctx, "x"))
	_, err = repo.Get(ctx, "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "x"), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &model.Patient{ID: "nope"}), repository.ErrNotFound)
}

func TestDeletePatientLeavesAppointments(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	require.NoError(t, s.Patients().Delete(ctx, "p1"))

	appts, err := s.Appointments().ListByPatient(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, appts, 2)
	_, err = s.Patients().Get(ctx, "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListByPatientInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	appts, err := s.Appointments().ListByPatient(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, "i1", appts[0].ID)
	assert.Equal(t, "i3", appts[1].ID)

	none, err := s.Appointments().ListByPatient(ctx, "p9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAppointmentFilesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	a, err := s.Appointments().Get(ctx, "i2")
	require.NoError(t, err)
	a.Files[0].Name = "changed"

	again, _ := s.Appointments().Get(ctx, "i2")
	assert.Equal(t, "xray.jpg", again.Files[0].Name)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := seededStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Appointments().Create(ctx, &model.Appointment{ID: string(rune('a' + i)), PatientID: "p2"})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Appointments().List(ctx)
		}()
	}
	wg.Wait()

	appts, _ := s.Appointments().List(ctx)
	assert.Len(t, appts, 23)
}
