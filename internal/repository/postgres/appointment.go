package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

const appointmentColumns = `id, patient_id, title, description, comments, appointment_date, cost, status, files, created_at, updated_at`

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, patient_id, title, description, comments, appointment_date, cost, status, files, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.PatientID,
		a.Title,
		a.Description,
		a.Comments,
		a.AppointmentDate,
		a.Cost,
		a.Status,
		a.Files,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	var a model.Appointment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, title = $2, description = $3, comments = $4, appointment_date = $5,
			cost = $6, status = $7, files = $8, updated_at = $9
		WHERE id = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		a.PatientID,
		a.Title,
		a.Description,
		a.Comments,
		a.AppointmentDate,
		a.Cost,
		a.Status,
		a.Files,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return expectOne(res)
}

func (r *appointmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return expectOne(res)
}

func (r *appointmentRepository) List(ctx context.Context) ([]model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY seq`
	appts := []model.Appointment{}
	if err := r.db.SelectContext(ctx, &appts, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE patient_id = $1 ORDER BY seq`
	appts := []model.Appointment{}
	if err := r.db.SelectContext(ctx, &appts, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments for patient: %w", err)
	}
	return appts, nil
}
