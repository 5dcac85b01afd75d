package appointment

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/repository/memory"
	"github.com/jwalitptl/dental-admin/internal/service/appointment"
	"github.com/jwalitptl/dental-admin/internal/service/attachment"
	"github.com/jwalitptl/dental-admin/internal/service/event"
)

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	require.NoError(t, repository.Seed(context.Background(), store.Patients(), store.Appointments(), store.Users(),
		func(p string) (string, error) { return p, nil }))

	svc := appointment.NewService(store.Appointments(), store.Patients(), attachment.InlineStore{}, event.Nop{})
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestListAppointmentsFilters(t *testing.T) {
	r := setup(t)

	var rows []model.AppointmentView
	w, env := do(t, r, http.MethodGet, "/api/v1/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Jane Smith", rows[1].PatientName)

	_, env = do(t, r, http.MethodGet, "/api/v1/appointments?status=Pending", nil)
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "i3", rows[0].ID)

	_, env = do(t, r, http.MethodGet, "/api/v1/appointments?search=john&patient_id=p1", nil)
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 2)

	w, env = do(t, r, http.MethodGet, "/api/v1/appointments?status=Lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "status")
}

func TestCreateAppointment(t *testing.T) {
	r := setup(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"patient_id":       "p2",
		"title":            "Whitening",
		"appointment_date": "2024-03-01",
		"cost":             150,
		"files": []map[string]string{
			{"name": "note.txt", "url": "data:text/plain;base64,aGVsbG8="},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var v model.AppointmentView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, model.AppointmentStatusPending, v.Status)
	assert.Equal(t, "Jane Smith", v.PatientName)
	assert.Equal(t, 150.0, v.Cost)
	require.Len(t, v.Files, 1)
	assert.Equal(t, model.AttachmentEmbedded, v.Files[0].Kind)

	w, env = do(t, r, http.MethodGet, "/api/v1/appointments/"+v.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAppointmentValidation(t *testing.T) {
	r := setup(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/appointments", map[string]interface{}{
		"title":  "",
		"cost":   -10,
		"status": "Lost",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	for _, field := range []string{"patient_id", "title", "appointment_date", "cost", "status"} {
		assert.Contains(t, env.Errors, field)
	}

	_, env = do(t, r, http.MethodGet, "/api/v1/appointments", nil)
	var rows []model.AppointmentView
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 3)
}

func TestUpdateAndDeleteAppointment(t *testing.T) {
	r := setup(t)

	w, env := do(t, r, http.MethodPut, "/api/v1/appointments/i3", map[string]interface{}{
		"patient_id":       "p1",
		"title":            "Root Canal",
		"appointment_date": "2024-01-25",
		"cost":             800,
		"status":           "Completed",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var v model.AppointmentView
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, model.AppointmentStatusCompleted, v.Status)

	w, _ = do(t, r, http.MethodDelete, "/api/v1/appointments/i3", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/api/v1/appointments/i3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
