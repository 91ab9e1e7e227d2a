package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clinicore/scheduler/internal/domain/appointment"
)

var (
	// ErrStoreUnavailable means the pool of existing appointments could not
	// be fetched (or the write failed). Availability is unknown, which is
	// never the same as clear: the caller must block submission.
	ErrStoreUnavailable = errors.New("could not verify availability")

	// ErrBookingInProgress means another request holds the doctor-day
	// booking lock. The caller should retry shortly.
	ErrBookingInProgress = errors.New("another booking for this doctor is in progress, please retry")
)

// ConflictError carries the conflict details so the caller can tell the user
// which existing time the candidate collides with.
type ConflictError struct {
	Result appointment.ConflictResult
}

func (e *ConflictError) Error() string {
	if e.Result.ConflictStart != nil {
		return fmt.Sprintf("appointment overlaps an existing booking starting at %s", e.Result.ConflictStart)
	}
	return appointment.ErrAppointmentConflict.Error()
}

func (e *ConflictError) Unwrap() error {
	return appointment.ErrAppointmentConflict
}

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type AuditEntry struct {
	Actor        string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	StatusCode   int
	Changes      string
}
