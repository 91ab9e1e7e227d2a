package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicore/scheduler/internal/domain/appointment"
	"github.com/clinicore/scheduler/pkg/metrics"
)

type AppointmentRepository struct {
	db      *gorm.DB
	metrics *metrics.Collector
}

func NewAppointmentRepository(db *gorm.DB, m *metrics.Collector) *AppointmentRepository {
	return &AppointmentRepository{db: db, metrics: m}
}

const appointmentsTable = "appointments"

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	defer observe(r.metrics, "insert", appointmentsTable, time.Now())

	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	defer observe(r.metrics, "select", appointmentsTable, time.Now())

	var a appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}

	stampDuration(&a)
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	defer observe(r.metrics, "update", appointmentsTable, time.Now())

	updates := map[string]any{}
	if cmd.PatientID != nil {
		updates["patient_id"] = *cmd.PatientID
	}
	if cmd.DoctorID != nil {
		updates["doctor_id"] = *cmd.DoctorID
	}
	if cmd.Date != nil {
		updates["appointment_date"] = *cmd.Date
	}
	if cmd.StartTime != nil {
		updates["appointment_time"] = *cmd.StartTime
	}
	if cmd.DurationMins != nil {
		updates["duration_minutes"] = *cmd.DurationMins
	}
	if cmd.Notes != nil {
		updates["notes"] = *cmd.Notes
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&appointment.Appointment{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("updating appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, appointment.ErrAppointmentNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	defer observe(r.metrics, "update", appointmentsTable, time.Now())

	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ? AND deleted_at IS NULL", a.ID).
		Updates(map[string]any{
			"status":              a.Status,
			"cancelled_at":        a.CancelledAt,
			"cancellation_reason": a.CancellationReason,
		})
	if res.Error != nil {
		return fmt.Errorf("updating appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer observe(r.metrics, "delete", appointmentsTable, time.Now())

	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&appointment.Appointment{})
	if res.Error != nil {
		return fmt.Errorf("deleting appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	defer observe(r.metrics, "select", appointmentsTable, time.Now())

	tx := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("deleted_at IS NULL")

	if q.PatientID != nil {
		tx = tx.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		tx = tx.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.DateFrom != nil {
		tx = tx.Where("appointment_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("appointment_date <= ?", *q.DateTo)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var appts []*appointment.Appointment
	err := tx.
		Order("appointment_date ASC").
		Order("appointment_time ASC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	for _, a := range appts {
		stampDuration(a)
	}

	return &appointment.PagedAppointments{
		Appointments: appts,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   int(math.Ceil(float64(total) / float64(q.PageSize))),
	}, nil
}

func (r *AppointmentRepository) ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date appointment.Date) ([]appointment.Appointment, error) {
	defer observe(r.metrics, "select", appointmentsTable, time.Now())

	var appts []appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND deleted_at IS NULL", doctorID, date).
		Order("appointment_time ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments for doctor/date: %w", err)
	}

	for i := range appts {
		stampDuration(&appts[i])
	}
	return appts, nil
}

func (r *AppointmentRepository) ListConfirmedUpTo(ctx context.Context, date appointment.Date) ([]*appointment.Appointment, error) {
	defer observe(r.metrics, "select", appointmentsTable, time.Now())

	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ? AND appointment_date <= ? AND deleted_at IS NULL", appointment.StatusConfirmed, date).
		Order("appointment_date ASC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("listing confirmed appointments: %w", err)
	}

	for _, a := range appts {
		stampDuration(a)
	}
	return appts, nil
}

// stampDuration backfills the 30-minute default onto legacy rows that
// predate the duration column, so callers never see a zero duration.
func stampDuration(a *appointment.Appointment) {
	if a.DurationMins <= 0 {
		a.DurationMins = appointment.DefaultDurationMins
	}
}
