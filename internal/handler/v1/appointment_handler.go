package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduler/internal/domain/appointment"
	"github.com/clinicore/scheduler/internal/service"
)

type AppointmentHandler struct {
	bookingSvc *service.BookingService
}

func NewAppointmentHandler(bookingSvc *service.BookingService) *AppointmentHandler {
	return &AppointmentHandler{bookingSvc: bookingSvc}
}

type createAppointmentRequest struct {
	PatientID    string  `json:"patient_id" binding:"required,uuid"`
	DoctorID     string  `json:"doctor_id" binding:"required,uuid"`
	Date         string  `json:"date" binding:"required"`
	StartTime    string  `json:"start_time" binding:"required"`
	DurationMins *int    `json:"duration_minutes"`
	Notes        string  `json:"notes"`
	CreatedBy    *string `json:"created_by"`
}

type updateAppointmentRequest struct {
	PatientID    *string `json:"patient_id"`
	DoctorID     *string `json:"doctor_id"`
	Date         *string `json:"date"`
	StartTime    *string `json:"start_time"`
	DurationMins *int    `json:"duration_minutes"`
	Notes        *string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type cancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// Create books a new appointment. A 409 carries the blocking slot's details.
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := appointment.ParseDate(req.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	start, err := appointment.ParseTimeOfDay(req.StartTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	cmd := &appointment.CreateAppointmentCommand{
		PatientID:    uuid.MustParse(req.PatientID),
		DoctorID:     uuid.MustParse(req.DoctorID),
		Date:         date,
		StartTime:    start,
		DurationMins: appointment.DefaultDurationMins,
		Notes:        req.Notes,
	}
	if req.DurationMins != nil {
		cmd.DurationMins = *req.DurationMins
	}
	if req.CreatedBy != nil {
		if createdBy, err := uuid.Parse(*req.CreatedBy); err == nil {
			cmd.CreatedBy = createdBy
		}
	}

	actor, ip := actorFrom(c)
	a, err := h.bookingSvc.ScheduleAppointment(c.Request.Context(), cmd, actor, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.bookingSvc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q := &appointment.ListAppointmentsQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}

	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid patient_id")
			return
		}
		q.PatientID = &id
	}
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid doctor_id")
			return
		}
		q.DoctorID = &id
	}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		if !st.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
		q.Status = &st
	}
	if raw := c.Query("date_from"); raw != "" {
		d, err := appointment.ParseDate(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		q.DateFrom = &d
	}
	if raw := c.Query("date_to"); raw != "" {
		d, err := appointment.ParseDate(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		q.DateTo = &d
	}

	page, err := h.bookingSvc.ListAppointments(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, page)
}

// Update reschedules or edits an appointment. The conflict check excludes
// the appointment itself, so saving with an unchanged time always succeeds.
func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.UpdateAppointmentCommand{
		DurationMins: req.DurationMins,
		Notes:        req.Notes,
	}
	if req.PatientID != nil {
		pid, err := uuid.Parse(*req.PatientID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid patient_id")
			return
		}
		cmd.PatientID = &pid
	}
	if req.DoctorID != nil {
		did, err := uuid.Parse(*req.DoctorID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid doctor_id")
			return
		}
		cmd.DoctorID = &did
	}
	if req.Date != nil {
		d, err := appointment.ParseDate(*req.Date)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		cmd.Date = &d
	}
	if req.StartTime != nil {
		t, err := appointment.ParseTimeOfDay(*req.StartTime)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		cmd.StartTime = &t
	}

	actor, ip := actorFrom(c)
	a, err := h.bookingSvc.RescheduleAppointment(c.Request.Context(), id, cmd, actor, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	actor, ip := actorFrom(c)
	a, err := h.bookingSvc.UpdateStatus(c.Request.Context(), id, appointment.Status(req.Status), actor, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req cancelAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	actor, ip := actorFrom(c)
	a, err := h.bookingSvc.CancelAppointment(c.Request.Context(), id, req.Reason, actor, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	actor, ip := actorFrom(c)
	if err := h.bookingSvc.DeleteAppointment(c.Request.Context(), id, actor, ip); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckAvailability answers whether a proposed slot is free without booking
// it. Clients poll this while the user edits the form; the booking endpoints
// re-check under a lock regardless, so a stale "clear" here is harmless.
func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "doctor_id is required and must be a valid UUID")
		return
	}
	date, err := appointment.ParseDate(c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	start, err := appointment.ParseTimeOfDay(c.Query("start_time"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// An absent duration falls back to the default slot length; an explicit
	// non-positive one is a caller bug, never a "no conflict" answer.
	durationMins := appointment.DefaultDurationMins
	if raw := c.Query("duration_minutes"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid duration_minutes: must be an integer")
			return
		}
		durationMins = v
	}

	cand := appointment.Candidate{
		DoctorID:     doctorID,
		Date:         date,
		StartTime:    start,
		DurationMins: durationMins,
	}

	var excludeID *uuid.UUID
	if raw := c.Query("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid exclude_id")
			return
		}
		excludeID = &id
	}

	res, err := h.bookingSvc.CheckAvailability(c.Request.Context(), cand, excludeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, res)
}
