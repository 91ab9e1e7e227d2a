package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicore/scheduler/internal/config"
	"github.com/clinicore/scheduler/internal/domain"
	"github.com/clinicore/scheduler/internal/domain/appointment"
	"github.com/clinicore/scheduler/internal/domain/doctor"
	"github.com/clinicore/scheduler/internal/domain/patient"
	"github.com/clinicore/scheduler/internal/service"
	"github.com/clinicore/scheduler/pkg/redislock"
)

type memAppointmentRepo struct {
	appts map[uuid.UUID]*appointment.Appointment
}

func (r *memAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	a.ID = uuid.New()
	cp := *a
	r.appts[a.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAppointmentRepo) Update(_ context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	a, ok := r.appts[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	if cmd.StartTime != nil {
		a.StartTime = *cmd.StartTime
	}
	if cmd.DurationMins != nil {
		a.DurationMins = *cmd.DurationMins
	}
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}
	cp := *a
	return &cp, nil
}

func (r *memAppointmentRepo) List(_ context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	var out []*appointment.Appointment
	for _, a := range r.appts {
		cp := *a
		out = append(out, &cp)
	}
	return &appointment.PagedAppointments{Appointments: out, TotalCount: int64(len(out)), Page: q.Page, PageSize: q.PageSize}, nil
}

func (r *memAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment) error {
	stored, ok := r.appts[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	stored.Status = a.Status
	return nil
}

func (r *memAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.appts[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(r.appts, id)
	return nil
}

func (r *memAppointmentRepo) ListByDoctorAndDate(_ context.Context, doctorID uuid.UUID, date appointment.Date) ([]appointment.Appointment, error) {
	var out []appointment.Appointment
	for _, a := range r.appts {
		if a.DoctorID == doctorID && a.Date.Equal(date) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) ListConfirmedUpTo(_ context.Context, _ appointment.Date) ([]*appointment.Appointment, error) {
	return nil, nil
}

type memPatientRepo struct{ p *patient.Patient }

func (r *memPatientRepo) Create(_ context.Context, _ *patient.Patient) error { return nil }
func (r *memPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	if r.p != nil && r.p.ID == id {
		return r.p, nil
	}
	return nil, patient.ErrPatientNotFound
}
func (r *memPatientRepo) Update(_ context.Context, _ uuid.UUID, _ *patient.UpdatePatientCommand) (*patient.Patient, error) {
	return r.p, nil
}
func (r *memPatientRepo) SoftDelete(_ context.Context, _ uuid.UUID) error { return nil }
func (r *memPatientRepo) List(_ context.Context, _ *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	return &patient.PagedPatients{}, nil
}

type memDoctorRepo struct{ d *doctor.Doctor }

func (r *memDoctorRepo) Create(_ context.Context, _ *doctor.Doctor) error { return nil }
func (r *memDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	if r.d != nil && r.d.ID == id {
		return r.d, nil
	}
	return nil, doctor.ErrDoctorNotFound
}
func (r *memDoctorRepo) List(_ context.Context, _ bool) ([]*doctor.Doctor, error) {
	return []*doctor.Doctor{r.d}, nil
}

type memAuditRepo struct{}

func (memAuditRepo) Create(_ context.Context, _ *domain.AuditLog) error { return nil }

type testEnv struct {
	router    *gin.Engine
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	patientID := uuid.New()
	doctorID := uuid.New()

	log := zap.NewNop()
	auditSvc := service.NewAuditService(memAuditRepo{}, nil, log)
	t.Cleanup(auditSvc.Shutdown)

	repo := &memAppointmentRepo{appts: make(map[uuid.UUID]*appointment.Appointment)}
	patientRepo := &memPatientRepo{p: &patient.Patient{ID: patientID, FirstName: "Mira", LastName: "Novak", Status: patient.StatusActive}}
	doctorRepo := &memDoctorRepo{d: &doctor.Doctor{ID: doctorID, FullName: "Dr. Horvat", Active: true}}

	schedCfg := config.SchedulingConfig{AvailabilityTimeout: time.Second, NoShowGrace: time.Hour}
	bookingSvc := service.NewBookingService(repo, patientRepo, doctorRepo, redislock.NopLocker{}, auditSvc, nil, log, schedCfg)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, nil, log)
	doctorSvc := service.NewDoctorService(doctorRepo, auditSvc, log)

	router := NewRouter(RouterConfig{
		BookingSvc: bookingSvc,
		PatientSvc: patientSvc,
		DoctorSvc:  doctorSvc,
		Log:        log,
		App:        config.AppConfig{Environment: "test", Version: "test"},
	})

	return &testEnv{router: router, patientID: patientID, doctorID: doctorID}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bookingBody(startTime string, duration int) map[string]any {
	return map[string]any{
		"patient_id":       e.patientID.String(),
		"doctor_id":        e.doctorID.String(),
		"date":             "2025-04-01",
		"start_time":       startTime,
		"duration_minutes": duration,
	}
}

func TestCreateAppointment_Endpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", env.bookingBody("09:00", 30))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data appointment.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "09:00", resp.Data.StartTime.String())
	assert.Equal(t, appointment.StatusScheduled, resp.Data.Status)
}

func TestCreateAppointment_ConflictReturns409(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", env.bookingBody("09:00", 30))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/appointments", env.bookingBody("09:15", 30))
	require.Equal(t, http.StatusConflict, w.Code)

	var resp ConflictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SLOT_CONFLICT", resp.Code)
	assert.Equal(t, "09:00", resp.ConflictStart)
	assert.NotEmpty(t, resp.ConflictingID)
}

func TestCreateAppointment_MalformedTimeReturns400(t *testing.T) {
	env := newTestEnv(t)

	body := env.bookingBody("9am", 30)
	w := env.do(t, http.MethodPost, "/api/v1/appointments", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = env.bookingBody("09:00", 30)
	body["date"] = "01/04/2025"
	w = env.do(t, http.MethodPost, "/api/v1/appointments", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAppointment_ZeroDurationRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", env.bookingBody("09:00", 0))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", env.bookingBody("10:00", 20))
	require.Equal(t, http.StatusCreated, w.Code)

	check := func(startTime string, duration int) appointment.ConflictResult {
		t.Helper()
		url := fmt.Sprintf("/api/v1/appointments/availability?doctor_id=%s&date=2025-04-01&start_time=%s&duration_minutes=%d",
			env.doctorID, startTime, duration)
		w := env.do(t, http.MethodGet, url, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Data appointment.ConflictResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Data
	}

	assert.True(t, check("10:10", 15).HasConflict)
	assert.False(t, check("10:20", 30).HasConflict, "slot starting exactly at the other's end is free")
	assert.False(t, check("09:00", 60).HasConflict)
}

func TestAvailabilityEndpoint_ExplicitBadDurationRejected(t *testing.T) {
	env := newTestEnv(t)

	base := fmt.Sprintf("/api/v1/appointments/availability?doctor_id=%s&date=2025-04-01&start_time=10:00", env.doctorID)

	for _, duration := range []string{"0", "-15", "abc"} {
		w := env.do(t, http.MethodGet, base+"&duration_minutes="+duration, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "duration_minutes=%s must not be coerced to the default", duration)
	}

	// Omitting the parameter falls back to the default slot length.
	w := env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateAppointment_ExcludesSelf(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", env.bookingBody("11:00", 30))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data appointment.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPatch, "/api/v1/appointments/"+created.Data.ID.String(), map[string]any{
		"notes": "follow-up visit",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestStatusEndpoint_RejectsIllegalTransition(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", env.bookingBody("12:00", 30))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data appointment.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/api/v1/appointments/" + created.Data.ID.String() + "/status"

	w = env.do(t, http.MethodPut, path, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, path, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetAppointment_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthLiveness(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
