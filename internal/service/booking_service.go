package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicore/scheduler/internal/config"
	"github.com/clinicore/scheduler/internal/domain/appointment"
	"github.com/clinicore/scheduler/internal/domain/doctor"
	"github.com/clinicore/scheduler/internal/domain/patient"
	"github.com/clinicore/scheduler/pkg/metrics"
	"github.com/clinicore/scheduler/pkg/redislock"
)

// BookingService runs the booking flow server-side: fetch the doctor's
// existing appointments (bounded by a timeout), run the pure conflict check,
// and persist only when clear. The check-then-persist section runs under a
// per doctor-day lock so two concurrent requests cannot both pass a check
// against a pool that misses the other's in-flight booking.
type BookingService struct {
	repo        appointment.Repository
	patientRepo patient.Repository
	doctorRepo  doctor.Repository
	locker      redislock.Locker
	auditSvc    *AuditService
	metrics     *metrics.Collector
	log         *zap.Logger
	cfg         config.SchedulingConfig
}

func NewBookingService(
	repo appointment.Repository,
	patientRepo patient.Repository,
	doctorRepo doctor.Repository,
	locker redislock.Locker,
	auditSvc *AuditService,
	m *metrics.Collector,
	log *zap.Logger,
	cfg config.SchedulingConfig,
) *BookingService {
	return &BookingService{
		repo:        repo,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		locker:      locker,
		auditSvc:    auditSvc,
		metrics:     m,
		log:         log,
		cfg:         cfg,
	}
}

// CheckAvailability fetches the doctor's appointments for the candidate's
// date and runs the conflict check. A fetch failure or timeout comes back as
// ErrStoreUnavailable: availability is unknown, never clear.
func (s *BookingService) CheckAvailability(ctx context.Context, cand appointment.Candidate, excludeID *uuid.UUID) (appointment.ConflictResult, error) {
	if err := cand.Validate(); err != nil {
		return appointment.ConflictResult{}, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.AvailabilityTimeout)
	defer cancel()

	existing, err := s.repo.ListByDoctorAndDate(fetchCtx, cand.DoctorID, cand.Date)
	if err != nil {
		s.countAvailability("error")
		s.log.Error("failed to fetch appointment pool",
			zap.String("doctor_id", cand.DoctorID.String()),
			zap.String("date", cand.Date.String()),
			zap.Error(err),
		)
		return appointment.ConflictResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	res, err := appointment.CheckConflict(cand, existing, excludeID)
	if err != nil {
		return appointment.ConflictResult{}, err
	}

	if res.HasConflict {
		s.countAvailability("conflict")
	} else {
		s.countAvailability("clear")
	}
	return res, nil
}

// ScheduleAppointment books a new slot for a patient.
func (s *BookingService) ScheduleAppointment(ctx context.Context, cmd *appointment.CreateAppointmentCommand, actor, ip string) (*appointment.Appointment, error) {
	cand := cmd.Candidate()
	if err := cand.Validate(); err != nil {
		return nil, err
	}

	if err := s.verifyPatient(ctx, cmd.PatientID); err != nil {
		return nil, err
	}
	if err := s.verifyDoctor(ctx, cmd.DoctorID); err != nil {
		return nil, err
	}

	var created *appointment.Appointment

	err := s.locker.WithDoctorDayLock(ctx, cmd.DoctorID, cmd.Date.String(), func(lockCtx context.Context) error {
		// Re-check inside the critical section: the pool must include any
		// booking that won the lock before us.
		res, err := s.CheckAvailability(lockCtx, cand, nil)
		if err != nil {
			return err
		}
		if res.HasConflict {
			s.countConflict()
			return &ConflictError{Result: res}
		}

		a := &appointment.Appointment{
			PatientID:    cmd.PatientID,
			DoctorID:     cmd.DoctorID,
			Date:         cmd.Date,
			StartTime:    cmd.StartTime,
			DurationMins: cmd.DurationMins,
			Status:       appointment.StatusScheduled,
			Notes:        cmd.Notes,
			CreatedBy:    cmd.CreatedBy,
		}
		if err := s.repo.Create(lockCtx, a); err != nil {
			s.log.Error("failed to create appointment", zap.Error(err))
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		created = a
		return nil
	})
	if err != nil {
		if errors.Is(err, redislock.ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		return nil, err
	}

	s.countBooked(appointment.StatusScheduled)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Actor:        actor,
		Action:       "create",
		ResourceType: "appointment",
		ResourceID:   created.ID.String(),
		IPAddress:    ip,
	})

	return created, nil
}

// RescheduleAppointment moves or edits an existing appointment. The
// appointment's own ID is excluded from the conflict check so an unchanged
// time never conflicts with itself.
func (s *BookingService) RescheduleAppointment(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand, actor, ip string) (*appointment.Appointment, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cand := resultingCandidate(current, cmd)
	if err := cand.Validate(); err != nil {
		return nil, err
	}

	if cmd.PatientID != nil {
		if err := s.verifyPatient(ctx, *cmd.PatientID); err != nil {
			return nil, err
		}
	}
	if cmd.DoctorID != nil {
		if err := s.verifyDoctor(ctx, *cmd.DoctorID); err != nil {
			return nil, err
		}
	}

	var updated *appointment.Appointment

	err = s.locker.WithDoctorDayLock(ctx, cand.DoctorID, cand.Date.String(), func(lockCtx context.Context) error {
		res, err := s.CheckAvailability(lockCtx, cand, &id)
		if err != nil {
			return err
		}
		if res.HasConflict {
			s.countConflict()
			return &ConflictError{Result: res}
		}

		updated, err = s.repo.Update(lockCtx, id, cmd)
		if err != nil {
			if errors.Is(err, appointment.ErrAppointmentNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redislock.ErrLockNotAcquired) {
			return nil, ErrBookingInProgress
		}
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Actor:        actor,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return updated, nil
}

func (s *BookingService) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BookingService) ListAppointments(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

// UpdateStatus applies a status transition, rejecting illegal ones.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus appointment.Status, actor, ip string) (*appointment.Appointment, error) {
	if !newStatus.IsValid() {
		return nil, appointment.ErrInvalidStatusTransition
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanTransitionTo(newStatus) {
		return nil, appointment.ErrInvalidStatusTransition
	}

	a.Status = newStatus
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}

	s.countBooked(newStatus)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Actor:        actor,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, newStatus),
	})

	return a, nil
}

// CancelAppointment soft-cancels: the row stays, but the slot is released
// and never considered in conflict checks again.
func (s *BookingService) CancelAppointment(ctx context.Context, id uuid.UUID, reason, actor, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := a.Cancel(reason); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, err
	}

	s.countBooked(appointment.StatusCancelled)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		Actor:        actor,
		Action:       "update",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":"cancelled","reason":%q}`, reason),
	})

	return a, nil
}

// DeleteAppointment removes the row outright (hard cancellation).
func (s *BookingService) DeleteAppointment(ctx context.Context, id uuid.UUID, actor, ip string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		Actor:        actor,
		Action:       "delete",
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return nil
}

// SweepNoShows marks confirmed appointments whose slot ended more than the
// grace period ago as no_show. Returns how many were flipped.
func (s *BookingService) SweepNoShows(ctx context.Context, now time.Time) (int, error) {
	today := appointment.DateOf(now.UTC())
	candidates, err := s.repo.ListConfirmedUpTo(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("listing confirmed appointments: %w", err)
	}

	swept := 0
	for _, a := range candidates {
		if now.UTC().Before(a.EndsAt().Add(s.cfg.NoShowGrace)) {
			continue
		}
		if !a.CanTransitionTo(appointment.StatusNoShow) {
			continue
		}
		a.Status = appointment.StatusNoShow
		if err := s.repo.UpdateStatus(ctx, a); err != nil {
			s.log.Error("failed to mark appointment no_show",
				zap.String("appointment_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}
		swept++
		if s.metrics != nil {
			s.metrics.NoShowsSwept.Inc()
		}
	}

	return swept, nil
}

func (s *BookingService) verifyPatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive() {
		return patient.ErrPatientInactive
	}
	return nil
}

func (s *BookingService) verifyDoctor(ctx context.Context, id uuid.UUID) error {
	d, err := s.doctorRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !d.IsActive() {
		return doctor.ErrDoctorInactive
	}
	return nil
}

// resultingCandidate merges the update onto the current appointment to get
// the slot claim that would exist after the edit.
func resultingCandidate(current *appointment.Appointment, cmd *appointment.UpdateAppointmentCommand) appointment.Candidate {
	cand := appointment.Candidate{
		DoctorID:     current.DoctorID,
		Date:         current.Date,
		StartTime:    current.StartTime,
		DurationMins: current.DurationMins,
	}
	if cmd.DoctorID != nil {
		cand.DoctorID = *cmd.DoctorID
	}
	if cmd.Date != nil {
		cand.Date = *cmd.Date
	}
	if cmd.StartTime != nil {
		cand.StartTime = *cmd.StartTime
	}
	if cmd.DurationMins != nil {
		cand.DurationMins = *cmd.DurationMins
	}
	return cand
}

func (s *BookingService) countAvailability(outcome string) {
	if s.metrics != nil {
		s.metrics.AvailabilityChecks.WithLabelValues(outcome).Inc()
	}
}

func (s *BookingService) countConflict() {
	if s.metrics != nil {
		s.metrics.ConflictsDetected.Inc()
	}
}

func (s *BookingService) countBooked(status appointment.Status) {
	if s.metrics != nil {
		s.metrics.AppointmentsTotal.WithLabelValues(string(status)).Inc()
	}
}
