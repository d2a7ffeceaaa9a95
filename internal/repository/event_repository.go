package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicore/booking/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, ev *model.AuditEvent) error
	ListByAppointment(ctx context.Context, appointmentID string) ([]model.AuditEvent, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, ev *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *GormEventRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
