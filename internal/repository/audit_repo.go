package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/clinicore/scheduler/internal/domain"
	"github.com/clinicore/scheduler/pkg/metrics"
)

type AuditRepository struct {
	db      *gorm.DB
	metrics *metrics.Collector
}

func NewAuditRepository(db *gorm.DB, m *metrics.Collector) *AuditRepository {
	return &AuditRepository{db: db, metrics: m}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	defer observe(r.metrics, "insert", "audit_logs", time.Now())

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}
