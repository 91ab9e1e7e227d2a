package appointment

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDurationMins is stamped onto legacy rows that were created before
// the duration column existed. The stamping happens at read time in the
// repository so the conflict arithmetic never sees a zero duration.
const DefaultDurationMins = 30

// State transitions possibilities:
//
//	scheduled → confirmed → in_progress → completed
//	scheduled → cancelled
//	confirmed → cancelled
//	confirmed → no_show (if patient doesn't arrive)
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index" json:"doctor_id"`

	Date         Date      `gorm:"column:appointment_date;type:date;not null;index" json:"appointment_date"`
	StartTime    TimeOfDay `gorm:"column:appointment_time;type:time;not null" json:"appointment_time"`
	DurationMins int       `gorm:"column:duration_minutes;not null;default:30" json:"duration_minutes"`
	Status       Status    `gorm:"column:status;type:varchar(30);not null;default:'scheduled';index" json:"status"`

	Notes string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Cancellation tracking
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason,omitempty"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid" json:"created_by"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// IsActive reports whether the appointment still claims its slot.
// Cancelled appointments keep their row but never conflict.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// StartMinutes returns the slot start as minutes since midnight.
func (a *Appointment) StartMinutes() int {
	return a.StartTime.Minutes()
}

// EndMinutes returns the slot end as minutes since midnight. The slot is the
// half-open interval [StartMinutes, EndMinutes).
func (a *Appointment) EndMinutes() int {
	return a.StartTime.Minutes() + a.DurationMins
}

// EndsAt returns the wall-clock end of the slot on its date.
func (a *Appointment) EndsAt() time.Time {
	return a.Date.Time().Add(time.Duration(a.EndMinutes()) * time.Minute)
}

func (a *Appointment) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusScheduled:  {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusInProgress, StatusNoShow, StatusCancelled},
		StatusInProgress: {StatusCompleted},
		StatusCompleted:  {},
		StatusCancelled:  {},
		StatusNoShow:     {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (a *Appointment) Cancel(reason string) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	return nil
}

type CreateAppointmentCommand struct {
	PatientID    uuid.UUID
	DoctorID     uuid.UUID
	Date         Date
	StartTime    TimeOfDay
	DurationMins int
	Notes        string
	CreatedBy    uuid.UUID
}

// Candidate returns the slot claim this command proposes.
func (c *CreateAppointmentCommand) Candidate() Candidate {
	return Candidate{
		DoctorID:     c.DoctorID,
		Date:         c.Date,
		StartTime:    c.StartTime,
		DurationMins: c.DurationMins,
	}
}

type UpdateAppointmentCommand struct {
	PatientID    *uuid.UUID
	DoctorID     *uuid.UUID
	Date         *Date
	StartTime    *TimeOfDay
	DurationMins *int
	Notes        *string
	UpdatedBy    uuid.UUID
}

type ListAppointmentsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
	DateFrom  *Date
	DateTo    *Date
	Page      int
	PageSize  int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
