package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/dental-admin/internal/model"
)

var ErrNotFound = errors.New("record not found")

type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id string) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id string) error
		List(ctx context.Context) ([]model.Patient, error)
	}

	// AppointmentRepository lists in insertion order.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id string) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id string) error
		List(ctx context.Context) ([]model.Appointment, error)
		ListByPatient(ctx context.Context, patientID string) ([]model.Appointment, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id string) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByPatientID(ctx context.Context, patientID string) (*model.User, error)
	}
)
