package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/attachment"
	"github.com/jwalitptl/dental-admin/internal/service/event"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

type Service struct {
	repo      repository.AppointmentRepository
	patients  repository.PatientRepository
	files     attachment.Store
	events    event.Emitter
	validator validator.Validator
	now       func() time.Time
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, files attachment.Store, events event.Emitter) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		files:     files,
		events:    events,
		validator: validator.New(),
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.AppointmentRequest) (*model.AppointmentView, error) {
	uploads, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	appt := &model.Appointment{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}
	apply(appt, req, now)

	appt.Files, err = s.files.Normalize(ctx, appt.ID, uploads)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachments: %w", err)
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		s.files.Discard(ctx, appt.ID, appt.Files)
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.events.Emit(ctx, event.AppointmentCreated, appt)
	return s.view(ctx, *appt)
}

func (s *Service) Get(ctx context.Context, id string) (*model.AppointmentView, error) {
	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *appt)
}

// Update replaces the editable fields. Files are replaced only when the
// request carries a files list.
func (s *Service) Update(ctx context.Context, id string, req *model.AppointmentRequest) (*model.AppointmentView, error) {
	uploads, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(appt, req, s.now().UTC())

	if req.Files != nil {
		appt.Files, err = s.files.Normalize(ctx, appt.ID, uploads)
		if err != nil {
			return nil, fmt.Errorf("failed to store attachments: %w", err)
		}
	}

	if err := s.repo.Update(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.events.Emit(ctx, event.AppointmentUpdated, appt)
	return s.view(ctx, *appt)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("appointment", err)
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.events.Emit(ctx, event.AppointmentDeleted, map[string]string{"id": id})
	return nil
}

// List returns appointments in insertion order. Search matches the title or
// the patient's name, case-insensitively.
func (s *Service) List(ctx context.Context, filter model.AppointmentFilter) ([]model.AppointmentView, error) {
	var (
		appts []model.Appointment
		err   error
	)
	if filter.PatientID != "" {
		appts, err = s.repo.ListByPatient(ctx, filter.PatientID)
	} else {
		appts, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]model.AppointmentView, 0, len(appts))
	for _, a := range appts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		v := dir.View(a)
		if term != "" &&
			!strings.Contains(strings.ToLower(v.Title), term) &&
			!strings.Contains(strings.ToLower(v.PatientName), term) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) get(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) directory(ctx context.Context) (model.PatientDirectory, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return model.NewPatientDirectory(patients), nil
}

func (s *Service) view(ctx context.Context, a model.Appointment) (*model.AppointmentView, error) {
	dir, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}
	v := dir.View(a)
	return &v, nil
}

func apply(a *model.Appointment, req *model.AppointmentRequest, now time.Time) {
	a.PatientID = strings.TrimSpace(req.PatientID)
	a.Title = strings.TrimSpace(req.Title)
	a.Description = req.Description
	a.Comments = req.Comments
	a.AppointmentDate = req.AppointmentDate
	a.Cost = 0
	if req.Cost != nil {
		a.Cost = *req.Cost
	}
	a.Status = req.Status
	if a.Status == "" {
		a.Status = model.AppointmentStatusPending
	}
	a.UpdatedAt = now
}

// validate checks the request and converts its uploads. Nothing is written
// when it fails.
func (s *Service) validate(req *model.AppointmentRequest) (model.Attachments, error) {
	fields := s.validator.Validate(req)
	if fields == nil {
		fields = make(map[string]string)
	}
	if strings.TrimSpace(req.PatientID) == "" {
		fields["patient_id"] = "patient_id is required"
	}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if req.AppointmentDate.IsZero() {
		fields["appointment_date"] = "appointment_date is required"
	}

	uploads, fileErrs := attachment.ParseUploads(req.Files)
	for k, v := range fileErrs {
		fields[k] = v
	}

	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}
	return uploads, nil
}
