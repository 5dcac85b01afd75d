package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/dental-admin/internal/model"
)

type DemoAccount struct {
	Email     string
	Password  string
	Role      model.Role
	PatientID string
}

// DemoAccounts are the two logins the clinic ships with.
var DemoAccounts = []DemoAccount{
	{Email: "admin@entnt.in", Password: "admin123", Role: model.RoleAdmin},
	{Email: "john@entnt.in", Password: "patient123", Role: model.RolePatient, PatientID: "p1"},
}

func SeedPatients() []model.Patient {
	return []model.Patient{
		{ID: "p1", Name: "John Doe", DateOfBirth: model.NewDate(1990, time.May, 10), Contact: "1234567890", HealthInfo: "No allergies"},
		{ID: "p2", Name: "Jane Smith", DateOfBirth: model.NewDate(1985, time.December, 15), Contact: "9876543210", HealthInfo: "Allergic to penicillin"},
		{ID: "p3", Name: "Mike Johnson", DateOfBirth: model.NewDate(1992, time.March, 22), Contact: "5551234567", HealthInfo: "Diabetes, High blood pressure"},
	}
}

func SeedAppointments() []model.Appointment {
	return []model.Appointment{
		{
			ID:              "i1",
			PatientID:       "p1",
			Title:           "Dental Cleaning",
			Description:     "Regular dental cleaning and checkup",
			Comments:        "Patient has good oral hygiene",
			AppointmentDate: model.NewDate(2024, time.January, 15),
			Cost:            120,
			Status:          model.AppointmentStatusCompleted,
			Files:           model.Attachments{},
		},
		{
			ID:              "i2",
			PatientID:       "p2",
			Title:           "Tooth Extraction",
			Description:     "Wisdom tooth extraction procedure",
			Comments:        "Patient needs follow-up in 1 week",
			AppointmentDate: model.NewDate(2024, time.January, 20),
			Cost:            300,
			Status:          model.AppointmentStatusCompleted,
			Files:           model.Attachments{model.Reference("xray.jpg", "/placeholder-xray.jpg")},
		},
		{
			ID:              "i3",
			PatientID:       "p1",
			Title:           "Root Canal",
			Description:     "Root canal treatment for tooth #18",
			Comments:        "Treatment in progress",
			AppointmentDate: model.NewDate(2024, time.January, 25),
			Cost:            800,
			Status:          model.AppointmentStatusPending,
			Files:           model.Attachments{},
		},
	}
}

// Seed inserts the demo dataset. Patients and appointments are only written
// into an empty store, so records deleted after the first boot stay deleted.
// Missing demo accounts are always created.
func Seed(ctx context.Context, patients PatientRepository, appointments AppointmentRepository, users UserRepository, hash func(string) (string, error)) error {
	base := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	empty, err := isEmpty(ctx, patients, appointments)
	if err != nil {
		return err
	}
	if empty {
		for i, p := range SeedPatients() {
			p := p
			p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			p.UpdatedAt = p.CreatedAt
			if err := patients.Create(ctx, &p); err != nil {
				return fmt.Errorf("failed to seed patient %s: %w", p.ID, err)
			}
		}
		for i, a := range SeedAppointments() {
			a := a
			a.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			a.UpdatedAt = a.CreatedAt
			if err := appointments.Create(ctx, &a); err != nil {
				return fmt.Errorf("failed to seed appointment %s: %w", a.ID, err)
			}
		}
	}

	for i, acc := range DemoAccounts {
		if _, err := users.GetByEmail(ctx, acc.Email); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("failed to check user %s: %w", acc.Email, err)
		}
		h, err := hash(acc.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", acc.Email, err)
		}
		u := &model.User{
			ID:           fmt.Sprintf("u%d", i+1),
			Email:        acc.Email,
			PasswordHash: h,
			Role:         acc.Role,
			PatientID:    acc.PatientID,
			CreatedAt:    base,
		}
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", acc.Email, err)
		}
	}

	return nil
}

func isEmpty(ctx context.Context, patients PatientRepository, appointments AppointmentRepository) (bool, error) {
	ps, err := patients.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list patients: %w", err)
	}
	as, err := appointments.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list appointments: %w", err)
	}
	return len(ps) == 0 && len(as) == 0, nil
}
