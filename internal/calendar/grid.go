package calendar

import (
	"time"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// Cell is one square of the month grid. Leading padding cells have Day 0
// and no date.
type Cell struct {
	Day          int                 `json:"day"`
	Date         model.Date          `json:"date"`
	Appointments []model.Appointment `json:"appointments"`
}

func (c Cell) Empty() bool {
	return c.Day == 0
}

type Month struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Leading int        `json:"leading"`
	Cells   []Cell     `json:"cells"`
}

// MonthGrid lays out a month Sunday-first: one empty cell per weekday before
// the 1st, then one cell per day carrying that day's appointments.
func MonthGrid(year int, month time.Month, appts []model.Appointment) Month {
	first := model.NewDate(year, month, 1)
	leading := int(first.Weekday())
	days := DaysInMonth(year, month)
	byDate := GroupByDate(appts)

	cells := make([]Cell, 0, leading+days)
	for i := 0; i < leading; i++ {
		cells = append(cells, Cell{Appointments: []model.Appointment{}})
	}
	for day := 1; day <= days; day++ {
		d := model.Date{Year: year, Month: month, Day: day}
		dayAppts := byDate[d]
		if dayAppts == nil {
			dayAppts = []model.Appointment{}
		}
		cells = append(cells, Cell{Day: day, Date: d, Appointments: dayAppts})
	}

	return Month{
		Year:    year,
		Month:   month,
		Leading: leading,
		Cells:   cells,
	}
}

// DayCells returns only the non-padding cells.
func (m Month) DayCells() []Cell {
	return m.Cells[m.Leading:]
}
