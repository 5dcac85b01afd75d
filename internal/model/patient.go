package model

import (
	"time"
)

// UnknownPatientName is shown for appointments whose patient no longer exists.
const UnknownPatientName = "Unknown Patient"

type Patient struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DateOfBirth Date      `db:"date_of_birth" json:"date_of_birth"`
	Contact     string    `db:"contact" json:"contact"`
	HealthInfo  string    `db:"health_info" json:"health_info,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type PatientRequest struct {
	Name        string `json:"name" validate:"required"`
	DateOfBirth Date   `json:"date_of_birth"`
	Contact     string `json:"contact" validate:"required"`
	HealthInfo  string `json:"health_info"`
}

type PatientFilter struct {
	Search string
}

// PatientSummary is a list row: the patient plus how many appointments
// reference them.
type PatientSummary struct {
	Patient
	AppointmentCount int `json:"appointment_count"`
}

// PatientDirectory maps patient ids to display names.
type PatientDirectory map[string]string

func NewPatientDirectory(patients []Patient) PatientDirectory {
	d := make(PatientDirectory, len(patients))
	for _, p := range patients {
		d[p.ID] = p.Name
	}
	return d
}

// Name falls back to UnknownPatientName for ids with no patient.
func (d PatientDirectory) Name(id string) string {
	if name, ok := d[id]; ok {
		return name
	}
	return UnknownPatientName
}

// View joins an appointment with its patient's name.
func (d PatientDirectory) View(a Appointment) AppointmentView {
	return AppointmentView{Appointment: a, PatientName: d.Name(a.PatientID)}
}

func (d PatientDirectory) Views(appts []Appointment) []AppointmentView {
	out := make([]AppointmentView, 0, len(appts))
	for _, a := range appts {
		out = append(out, d.View(a))
	}
	return out
}
