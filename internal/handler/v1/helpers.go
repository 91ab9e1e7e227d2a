package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/scheduler/internal/domain/appointment"
	"github.com/clinicore/scheduler/internal/domain/doctor"
	"github.com/clinicore/scheduler/internal/domain/patient"
	"github.com/clinicore/scheduler/internal/service"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

// ConflictResponse carries the details of the first conflicting appointment
// so the client can show which booking blocks the slot.
type ConflictResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	ConflictingID string `json:"conflicting_id,omitempty"`
	ConflictStart string `json:"conflict_start,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		resp := ConflictResponse{
			Error: conflictErr.Error(),
			Code:  "SLOT_CONFLICT",
		}
		if conflictErr.Result.ConflictingID != nil {
			resp.ConflictingID = conflictErr.Result.ConflictingID.String()
		}
		if conflictErr.Result.ConflictStart != nil {
			resp.ConflictStart = conflictErr.Result.ConflictStart.String()
		}
		c.JSON(http.StatusConflict, resp)
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrAppointmentConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "SLOT_CONFLICT"})

	case errors.Is(err, service.ErrBookingInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "BOOKING_IN_PROGRESS",
		})

	case errors.Is(err, appointment.ErrInvalidDuration),
		errors.Is(err, appointment.ErrInvalidStartTime),
		errors.Is(err, appointment.ErrCrossesMidnight),
		errors.Is(err, appointment.ErrMissingDoctor),
		errors.Is(err, appointment.ErrMissingDate),
		errors.Is(err, appointment.ErrMalformedTime),
		errors.Is(err, appointment.ErrMalformedDate),
		errors.Is(err, appointment.ErrInvalidStatusTransition),
		errors.Is(err, patient.ErrNameRequired),
		errors.Is(err, patient.ErrInvalidDateOfBirth):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, patient.ErrPatientInactive),
		errors.Is(err, doctor.ErrDoctorInactive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "could not verify availability, please retry",
			Code:  "AVAILABILITY_UNKNOWN",
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

func actorFrom(c *gin.Context) (actor, ip string) {
	actor = c.GetHeader("X-Actor")
	if actor == "" {
		actor = "anonymous"
	}
	return actor, c.ClientIP()
}
