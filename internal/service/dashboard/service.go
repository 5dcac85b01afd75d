package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/dental-admin/internal/calendar"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
)

const (
	DefaultUpcomingLimit  = 5
	CalendarUpcomingLimit = 5
)

type Stats struct {
	TotalPatients       int     `json:"total_patients"`
	TotalAppointments   int     `json:"total_appointments"`
	PendingAppointments int     `json:"pending_appointments"`
	TotalRevenue        float64 `json:"total_revenue"`
}

type Overview struct {
	Today    model.Date              `json:"today"`
	Stats    Stats                   `json:"stats"`
	Upcoming []model.AppointmentView `json:"upcoming"`
}

type MonthRef struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

type CalendarView struct {
	Today    model.Date              `json:"today"`
	Month    calendar.Month          `json:"month"`
	Previous MonthRef                `json:"previous"`
	Next     MonthRef                `json:"next"`
	Selected model.Date              `json:"selected"`
	OnDate   []model.AppointmentView `json:"on_date"`
	Upcoming []model.AppointmentView `json:"upcoming"`
}

type PatientOverview struct {
	Patient        model.Patient       `json:"patient"`
	Appointments   []model.Appointment `json:"appointments"`
	Upcoming       []model.Appointment `json:"upcoming"`
	Completed      []model.Appointment `json:"completed"`
	CompletedCount int                 `json:"completed_count"`
	TotalSpent     float64             `json:"total_spent"`
}

type Service struct {
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	now          func() time.Time
	loc          *time.Location
}

func NewService(patients repository.PatientRepository, appointments repository.AppointmentRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		patients:     patients,
		appointments: appointments,
		now:          time.Now,
		loc:          loc,
	}
}

// WithClock replaces the time source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today is the current calendar date in the clinic's location.
func (s *Service) Today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

func (s *Service) load(ctx context.Context) ([]model.Patient, []model.Appointment, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list patients: %w", err)
	}
	appts, err := s.appointments.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return patients, appts, nil
}

// Overview is the admin landing page: headline numbers and the next
// pending appointments.
func (s *Service) Overview(ctx context.Context, limit int) (*Overview, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	patients, appts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	totals := calendar.ComputeTotals(appts)
	dir := model.NewPatientDirectory(patients)

	return &Overview{
		Today: today,
		Stats: Stats{
			TotalPatients:       len(patients),
			TotalAppointments:   totals.Appointments,
			PendingAppointments: totals.Pending,
			TotalRevenue:        totals.CompletedRevenue,
		},
		Upcoming: dir.Views(head(calendar.Upcoming(appts, today), limit)),
	}, nil
}

// Calendar renders one month. A zero year or month means the current one;
// delta moves from there. Selected defaults to today.
func (s *Service) Calendar(ctx context.Context, year int, month time.Month, delta int, selected model.Date) (*CalendarView, error) {
	today := s.Today()
	if year == 0 {
		year = today.Year
	}
	if month == 0 {
		month = today.Month
	}
	if month < time.January || month > time.December {
		return nil, apperrors.Validation(map[string]string{"month": "month must be between 1 and 12"})
	}
	year, month = calendar.Navigate(year, month, delta)
	if selected.IsZero() {
		selected = today
	}

	patients, appts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	dir := model.NewPatientDirectory(patients)

	py, pm := calendar.Navigate(year, month, -1)
	ny, nm := calendar.Navigate(year, month, 1)

	return &CalendarView{
		Today:    today,
		Month:    calendar.MonthGrid(year, month, appts),
		Previous: MonthRef{Year: py, Month: pm},
		Next:     MonthRef{Year: ny, Month: nm},
		Selected: selected,
		OnDate:   dir.Views(calendar.ForDate(appts, selected)),
		Upcoming: dir.Views(head(calendar.Upcoming(appts, today), CalendarUpcomingLimit)),
	}, nil
}

// PatientOverview is what a patient sees about themselves.
func (s *Service) PatientOverview(ctx context.Context, session model.Session) (*PatientOverview, error) {
	if session.Role != model.RolePatient || session.PatientID == "" {
		return nil, apperrors.Forbidden("only patient accounts have a personal overview")
	}

	patient, err := s.patients.Get(ctx, session.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	appts, err := s.appointments.ListByPatient(ctx, session.PatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	completed := calendar.Completed(appts)
	totals := calendar.ComputeTotals(appts)

	return &PatientOverview{
		Patient:        *patient,
		Appointments:   calendar.History(appts),
		Upcoming:       calendar.Upcoming(appts, s.Today()),
		Completed:      completed,
		CompletedCount: len(completed),
		TotalSpent:     totals.CompletedRevenue,
	}, nil
}

func head(appts []model.Appointment, n int) []model.Appointment {
	if len(appts) > n {
		return appts[:n]
	}
	return appts
}
