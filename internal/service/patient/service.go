package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/event"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

type Service struct {
	repo         repository.PatientRepository
	appointments repository.AppointmentRepository
	events       event.Emitter
	validator    validator.Validator
	now          func() time.Time
}

func NewService(repo repository.PatientRepository, appointments repository.AppointmentRepository, events event.Emitter) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		events:       events,
		validator:    validator.New(),
		now:          time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.PatientRequest) (*model.Patient, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	patient := &model.Patient{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		DateOfBirth: req.DateOfBirth,
		Contact:     strings.TrimSpace(req.Contact),
		HealthInfo:  strings.TrimSpace(req.HealthInfo),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.events.Emit(ctx, event.PatientCreated, patient)
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, id string, req *model.PatientRequest) (*model.Patient, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patient.Name = strings.TrimSpace(req.Name)
	patient.DateOfBirth = req.DateOfBirth
	patient.Contact = strings.TrimSpace(req.Contact)
	patient.HealthInfo = strings.TrimSpace(req.HealthInfo)
	patient.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.events.Emit(ctx, event.PatientUpdated, patient)
	return patient, nil
}

// Delete removes the patient only. Their appointments stay and show up
// under UnknownPatientName.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("patient", err)
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.events.Emit(ctx, event.PatientDeleted, map[string]string{"id": id})
	return nil
}

// List returns patients in insertion order with their appointment counts.
// Search matches the name case-insensitively or any part of the contact.
func (s *Service) List(ctx context.Context, filter model.PatientFilter) ([]model.PatientSummary, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	appts, err := s.appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	counts := make(map[string]int, len(patients))
	for _, a := range appts {
		counts[a.PatientID]++
	}

	term := strings.TrimSpace(filter.Search)
	out := make([]model.PatientSummary, 0, len(patients))
	for _, p := range patients {
		if term != "" && !matches(p, term) {
			continue
		}
		out = append(out, model.PatientSummary{Patient: p, AppointmentCount: counts[p.ID]})
	}
	return out, nil
}

// Appointments lists a patient's appointments in insertion order. The
// patient must exist.
func (s *Service) Appointments(ctx context.Context, id string) ([]model.Appointment, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	appts, err := s.appointments.ListByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for patient: %w", err)
	}
	return appts, nil
}

func matches(p model.Patient, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) ||
		strings.Contains(p.Contact, term)
}

func (s *Service) validate(req *model.PatientRequest) error {
	fields := s.validator.Validate(req)
	if strings.TrimSpace(req.Name) == "" && fields["name"] == "" {
		fields = setField(fields, "name", "name is required")
	}
	if strings.TrimSpace(req.Contact) == "" && fields["contact"] == "" {
		fields = setField(fields, "contact", "contact is required")
	}
	if req.DateOfBirth.IsZero() {
		fields = setField(fields, "date_of_birth", "date_of_birth is required")
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields)
	}
	return nil
}

func setField(fields map[string]string, key, msg string) map[string]string {
	if fields == nil {
		fields = make(map[string]string)
	}
	fields[key] = msg
	return fields
}
