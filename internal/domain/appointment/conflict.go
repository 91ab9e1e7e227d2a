package appointment

import "github.com/google/uuid"

// Candidate is a slot claim that has not been persisted yet: a doctor, a
// date, a start time and a duration. It carries no ID.
type Candidate struct {
	DoctorID     uuid.UUID
	Date         Date
	StartTime    TimeOfDay
	DurationMins int
}

// Validate rejects candidates the conflict arithmetic cannot give a
// meaningful answer for. A bad candidate is a caller bug, not "no conflict".
func (c Candidate) Validate() error {
	if c.DoctorID == uuid.Nil {
		return ErrMissingDoctor
	}
	if c.Date.IsZero() {
		return ErrMissingDate
	}
	if !c.StartTime.Valid() {
		return ErrInvalidStartTime
	}
	if c.DurationMins <= 0 {
		return ErrInvalidDuration
	}
	if c.StartTime.Minutes()+c.DurationMins > minutesPerDay {
		return ErrCrossesMidnight
	}
	return nil
}

func (c Candidate) startMinutes() int { return c.StartTime.Minutes() }
func (c Candidate) endMinutes() int   { return c.StartTime.Minutes() + c.DurationMins }

// ConflictResult is the outcome of a conflict check. A conflict is a normal,
// recoverable answer ("pick another time"), not an error.
type ConflictResult struct {
	HasConflict   bool       `json:"has_conflict"`
	ConflictingID *uuid.UUID `json:"conflicting_appointment_id,omitempty"`
	ConflictStart *TimeOfDay `json:"conflicting_start_time,omitempty"`
}

// CheckConflict decides whether the candidate's slot overlaps an existing
// active appointment for the same doctor on the same date.
//
// The pool does not need to be pre-filtered: entries for other doctors or
// dates, cancelled entries, and the excluded appointment (the one being
// edited, so it cannot conflict with itself) are skipped here. Intervals are
// half-open [start, end), so back-to-back slots never conflict. The first
// overlapping entry wins; any one conflict is enough to reject.
func CheckConflict(candidate Candidate, existing []Appointment, excludeID *uuid.UUID) (ConflictResult, error) {
	if err := candidate.Validate(); err != nil {
		return ConflictResult{}, err
	}

	candStart := candidate.startMinutes()
	candEnd := candidate.endMinutes()

	for i := range existing {
		e := &existing[i]
		if excludeID != nil && e.ID == *excludeID {
			continue
		}
		if e.DoctorID != candidate.DoctorID || !e.Date.Equal(candidate.Date) {
			continue
		}
		if !e.IsActive() {
			continue
		}

		if candStart < e.EndMinutes() && e.StartMinutes() < candEnd {
			id := e.ID
			start := e.StartTime
			return ConflictResult{
				HasConflict:   true,
				ConflictingID: &id,
				ConflictStart: &start,
			}, nil
		}
	}

	return ConflictResult{}, nil
}
