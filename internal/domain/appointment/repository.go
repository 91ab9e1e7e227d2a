package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateAppointmentCommand) (*Appointment, error)
	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// UpdateStatus persists a status transition already applied to a.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// Delete removes the row outright. Used by the hard-cancellation flow;
	// soft cancellation goes through UpdateStatus.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByDoctorAndDate returns the doctor's appointments on the date in
	// any status. Rows missing a duration come back stamped with
	// DefaultDurationMins, so conflict checks never see a zero.
	ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date Date) ([]Appointment, error)

	// ListConfirmedUpTo returns confirmed appointments on or before the date.
	// Used by the no-show sweep.
	ListConfirmedUpTo(ctx context.Context, date Date) ([]*Appointment, error)
}
