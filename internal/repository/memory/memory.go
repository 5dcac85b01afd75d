// Package memory keeps records in process memory. Collections are slices so
// listing returns records in insertion order.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

// Store backs all three repositories with one lock.
type Store struct {
	mu           sync.RWMutex
	patients     []model.Patient
	appointments []model.Appointment
	users        []model.User
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Patients() repository.PatientRepository {
	return &patientRepository{s: s}
}

func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{s: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{s: s}
}

type patientRepository struct {
	s *Store
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.patients {
		if p.ID == patient.ID {
			return fmt.Errorf("patient %s already exists", patient.ID)
		}
	}
	r.s.patients = append(r.s.patients, *patient)
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.patients {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, p := range r.s.patients {
		if p.ID == patient.ID {
			r.s.patients[i] = *patient
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *patientRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, p := range r.s.patients {
		if p.ID == id {
			r.s.patients = append(r.s.patients[:i:i], r.s.patients[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *patientRepository) List(ctx context.Context) ([]model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Patient, len(r.s.patients))
	copy(out, r.s.patients)
	return out, nil
}

type appointmentRepository struct {
	s *Store
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.appointments {
		if a.ID == appointment.ID {
			return fmt.Errorf("appointment %s already exists", appointment.ID)
		}
	}
	r.s.appointments = append(r.s.appointments, cloneAppointment(*appointment))
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.appointments {
		if a.ID == id {
			a := cloneAppointment(a)
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, a := range r.s.appointments {
		if a.ID == appointment.ID {
			r.s.appointments[i] = cloneAppointment(*appointment)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, a := range r.s.appointments {
		if a.ID == id {
			r.s.appointments = append(r.s.appointments[:i:i], r.s.appointments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *appointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Appointment, 0, len(r.s.appointments))
	for _, a := range r.s.appointments {
		out = append(out, cloneAppointment(a))
	}
	return out, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Appointment, 0)
	for _, a := range r.s.appointments {
		if a.PatientID == patientID {
			out = append(out, cloneAppointment(a))
		}
	}
	return out, nil
}

// cloneAppointment copies the files slice so callers cannot mutate stored state.
func cloneAppointment(a model.Appointment) model.Appointment {
	files := make(model.Attachments, len(a.Files))
	copy(files, a.Files)
	a.Files = files
	return a
}

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ID == user.ID || strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user %s already exists", user.Email)
		}
	}
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepository) GetByPatientID(ctx context.Context, patientID string) (*model.User, error) {
	if patientID == "" {
		return nil, repository.ErrNotFound
	}
	return r.find(func(u model.User) bool { return u.PatientID == patientID })
}

func (r *userRepository) find(match func(model.User) bool) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
