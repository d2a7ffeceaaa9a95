package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicore/booking/internal/model"
)

type PatientRepository interface {
	GetByID(ctx context.Context, id string) (*model.Patient, error)
}

type GormPatientRepository struct {
	db *gorm.DB
}

func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

func (r *GormPatientRepository) GetByID(ctx context.Context, id string) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
