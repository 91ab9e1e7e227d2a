package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentConflict     = errors.New("appointment time slot is already booked")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")

	// Candidate validation. These mean the caller built a bad candidate and
	// must fix it; they are never swallowed into a "no conflict" answer.
	ErrInvalidDuration  = errors.New("appointment duration must be a positive number of minutes")
	ErrInvalidStartTime = errors.New("appointment start time must be between 00:00 and 23:59")
	ErrCrossesMidnight  = errors.New("appointment must end on the same date it starts")
	ErrMissingDoctor    = errors.New("appointment doctor is required")
	ErrMissingDate      = errors.New("appointment date is required")

	// Boundary parse failures for the HH:MM and YYYY-MM-DD formats.
	ErrMalformedTime = errors.New("malformed time, expected HH:MM")
	ErrMalformedDate = errors.New("malformed date, expected YYYY-MM-DD")
)
