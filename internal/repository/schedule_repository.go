package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicore/booking/internal/model"
)

type ScheduleRepository interface {
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	GetByDoctorAndDate(ctx context.Context, doctorID, date string) (*model.Schedule, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]model.Schedule, error)
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var s model.Schedule
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) GetByDoctorAndDate(ctx context.Context, doctorID, date string) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.WithContext(ctx).
		First(&s, "doctor_id = ? AND date = ?", doctorID, date).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) ListByDoctor(ctx context.Context, doctorID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("date DESC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}
