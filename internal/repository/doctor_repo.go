package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicore/scheduler/internal/domain/doctor"
	"github.com/clinicore/scheduler/pkg/metrics"
)

type DoctorRepository struct {
	db      *gorm.DB
	metrics *metrics.Collector
}

func NewDoctorRepository(db *gorm.DB, m *metrics.Collector) *DoctorRepository {
	return &DoctorRepository{db: db, metrics: m}
}

const doctorsTable = "doctors"

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	defer observe(r.metrics, "insert", doctorsTable, time.Now())

	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("inserting doctor: %w", err)
	}
	return nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	defer observe(r.metrics, "select", doctorsTable, time.Now())

	var d doctor.Doctor
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("loading doctor: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) List(ctx context.Context, activeOnly bool) ([]*doctor.Doctor, error) {
	defer observe(r.metrics, "select", doctorsTable, time.Now())

	tx := r.db.WithContext(ctx).Where("deleted_at IS NULL")
	if activeOnly {
		tx = tx.Where("active = true")
	}

	var doctors []*doctor.Doctor
	if err := tx.Order("full_name ASC").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	return doctors, nil
}
