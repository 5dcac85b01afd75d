// Package calendar holds the pure aggregation rules behind the dashboard and
// the month calendar. Nothing here touches storage or the clock: callers pass
// the appointments and "today" in.
package calendar

import (
	"sort"
	"time"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// Totals summarises a set of appointments.
type Totals struct {
	Appointments     int     `json:"appointments"`
	Pending          int     `json:"pending"`
	Completed        int     `json:"completed"`
	CompletedRevenue float64 `json:"completed_revenue"`
}

func ComputeTotals(appts []model.Appointment) Totals {
	t := Totals{Appointments: len(appts)}
	for _, a := range appts {
		switch a.Status {
		case model.AppointmentStatusPending:
			t.Pending++
		case model.AppointmentStatusCompleted:
			t.Completed++
			t.CompletedRevenue += a.Cost
		}
	}
	return t
}

// Upcoming returns the Pending appointments dated today or later, ordered by
// date. Appointments on the same date keep their input order.
func Upcoming(appts []model.Appointment, today model.Date) []model.Appointment {
	out := make([]model.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Status != model.AppointmentStatusPending {
			continue
		}
		if a.AppointmentDate.Before(today) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out
}

// Completed returns the Completed appointments in input order.
func Completed(appts []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Status == model.AppointmentStatusCompleted {
			out = append(out, a)
		}
	}
	return out
}

// History returns a copy ordered newest first. Appointments on the same date
// keep their input order.
func History(appts []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, len(appts))
	copy(out, appts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].AppointmentDate.Before(out[i].AppointmentDate)
	})
	return out
}

// ForDate returns the appointments scheduled exactly on d, in input order.
func ForDate(appts []model.Appointment, d model.Date) []model.Appointment {
	out := make([]model.Appointment, 0)
	for _, a := range appts {
		if a.AppointmentDate == d {
			out = append(out, a)
		}
	}
	return out
}

// GroupByDate buckets appointments by date, preserving input order per bucket.
func GroupByDate(appts []model.Appointment) map[model.Date][]model.Appointment {
	out := make(map[model.Date][]model.Appointment)
	for _, a := range appts {
		out[a.AppointmentDate] = append(out[a.AppointmentDate], a)
	}
	return out
}

// DaysInMonth handles leap years.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Navigate moves delta months from (year, month), carrying into the year.
func Navigate(year int, month time.Month, delta int) (int, time.Month) {
	idx := year*12 + int(month-1) + delta
	y := idx / 12
	m := idx % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, time.Month(m + 1)
}
