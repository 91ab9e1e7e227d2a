package appointment

import (
	"github.com/google/uuid"
)

// BookingState is the state of a booking form between field edits and
// submission.
type BookingState string

const (
	// StateEditing: fields are being adjusted; not all of them are filled in.
	StateEditing BookingState = "editing"
	// StateChecking: all fields are filled in; the candidate must be checked
	// against the doctor's existing appointments before submission.
	StateChecking BookingState = "checking"
	// StateClear: no conflict found; submission is permitted.
	StateClear BookingState = "clear"
	// StateBlocked: a conflict was found, or availability could not be
	// verified; submission is disabled until the form changes.
	StateBlocked BookingState = "blocked"
)

// BookingForm holds the raw field values of a booking form. Date and Time are
// the boundary strings ("YYYY-MM-DD", "HH:MM") exactly as typed or picked.
type BookingForm struct {
	PatientID    string
	DoctorID     string
	Date         string
	Time         string
	DurationMins int
}

func (f BookingForm) complete() bool {
	return f.DoctorID != "" && f.Date != "" && f.Time != "" && f.DurationMins != 0
}

// BookingFlow drives a single booking (or rescheduling) attempt:
//
//	Editing → Checking → {Clear, Blocked} → … → Editing
//
// Every field change re-enters Editing and, once the form is complete, moves
// straight to Checking. The flow itself never does I/O: the caller fetches
// the pool, runs the check, and reports the outcome back.
type BookingFlow struct {
	state     BookingState
	form      BookingForm
	candidate Candidate
	excludeID *uuid.UUID
	result    ConflictResult
}

// NewBookingFlow starts a flow with empty fields.
func NewBookingFlow() *BookingFlow {
	return &BookingFlow{state: StateEditing}
}

// NewReschedulingFlow starts a flow for editing a persisted appointment.
// The appointment's own ID is excluded from conflict checks so it cannot
// conflict with itself.
func NewReschedulingFlow(existing *Appointment) *BookingFlow {
	id := existing.ID
	return &BookingFlow{
		state:     StateEditing,
		excludeID: &id,
		form: BookingForm{
			PatientID:    existing.PatientID.String(),
			DoctorID:     existing.DoctorID.String(),
			Date:         existing.Date.String(),
			Time:         existing.StartTime.String(),
			DurationMins: existing.DurationMins,
		},
	}
}

func (f *BookingFlow) State() BookingState { return f.state }

func (f *BookingFlow) Form() BookingForm { return f.form }

// ExcludeID returns the appointment to leave out of conflict checks, if any.
func (f *BookingFlow) ExcludeID() *uuid.UUID { return f.excludeID }

// Edit applies a field change. While the form is incomplete the flow stays in
// Editing. Once all of doctor, date, time and duration are filled in, the
// form is parsed and the flow moves to Checking; a field that fails to parse
// keeps the flow in Editing and is returned for the caller to surface.
func (f *BookingFlow) Edit(form BookingForm) error {
	f.form = form
	f.state = StateEditing
	f.result = ConflictResult{}

	if !form.complete() {
		return nil
	}

	doctorID, err := uuid.Parse(form.DoctorID)
	if err != nil {
		return ErrMissingDoctor
	}
	date, err := ParseDate(form.Date)
	if err != nil {
		return err
	}
	start, err := ParseTimeOfDay(form.Time)
	if err != nil {
		return err
	}

	cand := Candidate{
		DoctorID:     doctorID,
		Date:         date,
		StartTime:    start,
		DurationMins: form.DurationMins,
	}
	if err := cand.Validate(); err != nil {
		return err
	}

	f.candidate = cand
	f.state = StateChecking
	return nil
}

// Candidate returns the parsed candidate once the flow is past Editing.
func (f *BookingFlow) Candidate() (Candidate, bool) {
	if f.state == StateEditing {
		return Candidate{}, false
	}
	return f.candidate, true
}

// ReportResult records the outcome of the conflict check and moves the flow
// to Clear or Blocked. Only legal from Checking.
func (f *BookingFlow) ReportResult(res ConflictResult) error {
	if f.state != StateChecking {
		return ErrInvalidStatusTransition
	}
	f.result = res
	if res.HasConflict {
		f.state = StateBlocked
	} else {
		f.state = StateClear
	}
	return nil
}

// ReportCheckFailed records that availability could not be verified (store
// error or timeout). Unknown availability blocks submission; it is never
// treated as clear.
func (f *BookingFlow) ReportCheckFailed() error {
	if f.state != StateChecking {
		return ErrInvalidStatusTransition
	}
	f.result = ConflictResult{}
	f.state = StateBlocked
	return nil
}

// Result returns the recorded conflict outcome. Meaningful in Clear and
// Blocked.
func (f *BookingFlow) Result() ConflictResult { return f.result }

// CanSubmit reports whether the candidate may be handed to the store.
func (f *BookingFlow) CanSubmit() bool { return f.state == StateClear }

// Submitted resets the flow after a successful create or update: back to
// Editing with cleared fields.
func (f *BookingFlow) Submitted() error {
	if f.state != StateClear {
		return ErrInvalidStatusTransition
	}
	*f = BookingFlow{state: StateEditing}
	return nil
}
