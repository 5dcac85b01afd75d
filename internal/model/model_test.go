package model

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2024-01-15", Date{2024, time.January, 15}, false},
		{"2024-01-15T10:00:00", Date{2024, time.January, 15}, false},
		{"2024-02-29T23:59:59Z", Date{2024, time.February, 29}, false},
		{"", Date{}, false},
		{"2023-02-29", Date{}, true},
		{"15/01/2024", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateCompare(t *testing.T) {
	a := NewDate(2024, time.January, 20)
	b := NewDate(2024, time.January, 25)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(NewDate(2024, time.January, 20)))
	assert.True(t, NewDate(2023, time.December, 31).Before(a))
	assert.True(t, NewDate(2024, time.February, 1).After(b))
}

func TestDateHelpers(t *testing.T) {
	assert.Equal(t, time.Thursday, NewDate(2024, time.February, 1).Weekday())
	assert.Equal(t, NewDate(2024, time.March, 1), NewDate(2024, time.February, 29).AddDays(1))
	assert.Equal(t, NewDate(2024, time.March, 1), NewDate(2024, time.February, 30))
	assert.Equal(t, "2024-01-05", NewDate(2024, time.January, 5).String())
	assert.True(t, Date{}.IsZero())
}

func TestDateJSON(t *testing.T) {
	var p Patient
	require.NoError(t, json.Unmarshal([]byte(`{"name":"John","date_of_birth":"1990-05-10"}`), &p))
	assert.Equal(t, NewDate(1990, time.May, 10), p.DateOfBirth)

	out, err := json.Marshal(struct {
		D Date `json:"d"`
		Z Date `json:"z"`
	}{D: NewDate(1990, time.May, 10)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"1990-05-10","z":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date_of_birth":"yesterday"}`), &p))
}

func TestDateScanValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, time.January, 15), d)

	require.NoError(t, d.Scan([]byte("2024-01-20")))
	assert.Equal(t, NewDate(2024, time.January, 20), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, time.January, 25).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-25", v)
}

func TestAttachmentsScanValue(t *testing.T) {
	files := Attachments{
		Reference("xray.jpg", "/placeholder-xray.jpg"),
		Embedded("note.txt", "text/plain", []byte("hello")),
	}

	v, err := files.Value()
	require.NoError(t, err)

	var back Attachments
	require.NoError(t, back.Scan(v))
	assert.Equal(t, files, back)

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
	assert.NotNil(t, back)

	v, err = Attachments(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Valid())
	assert.True(t, AppointmentStatusCompleted.Valid())
	assert.True(t, AppointmentStatusCancelled.Valid())
	assert.False(t, AppointmentStatus("Lost").Valid())
}

func TestPatientDirectory(t *testing.T) {
	d := NewPatientDirectory([]Patient{{ID: "p1", Name: "John Doe"}})

	assert.Equal(t, "John Doe", d.Name("p1"))
	assert.Equal(t, UnknownPatientName, d.Name("p9"))

	views := d.Views([]Appointment{{ID: "i1", PatientID: "p1"}, {ID: "i9", PatientID: "gone"}})
	require.Len(t, views, 2)
	assert.Equal(t, "John Doe", views[0].PatientName)
	assert.Equal(t, "Unknown Patient", views[1].PatientName)
}
