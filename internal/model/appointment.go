package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is a single treatment record ("incident") for a patient.
// PatientID is not checked against the patient collection.
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	PatientID       string            `db:"patient_id" json:"patient_id"`
	Title           string            `db:"title" json:"title"`
	Description     string            `db:"description" json:"description"`
	Comments        string            `db:"comments" json:"comments"`
	AppointmentDate Date              `db:"appointment_date" json:"appointment_date"`
	Cost            float64           `db:"cost" json:"cost"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Files           Attachments       `db:"files" json:"files"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// FileUpload is how clients send attachments: URL is either a data URL
// carrying the content or a link to where the file already lives.
type FileUpload struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

type AppointmentRequest struct {
	PatientID       string            `json:"patient_id" validate:"required"`
	Title           string            `json:"title" validate:"required"`
	Description     string            `json:"description"`
	Comments        string            `json:"comments"`
	AppointmentDate Date              `json:"appointment_date"`
	Cost            *float64          `json:"cost" validate:"omitempty,gte=0"`
	Status          AppointmentStatus `json:"status" validate:"omitempty,oneof=Pending Completed Cancelled"`
	Files           []FileUpload      `json:"files" validate:"dive"`
}

type AppointmentFilter struct {
	Search    string
	Status    AppointmentStatus
	PatientID string
}

// AppointmentView is an appointment joined with the display name of its patient.
type AppointmentView struct {
	Appointment
	PatientName string `json:"patient_name"`
}
