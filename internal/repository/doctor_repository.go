package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clinicore/booking/internal/model"
)

type DoctorRepository interface {
	GetByID(ctx context.Context, id string) (*model.Doctor, error)
}

type GormDoctorRepository struct {
	db *gorm.DB
}

func NewGormDoctorRepository(db *gorm.DB) *GormDoctorRepository {
	return &GormDoctorRepository{db: db}
}

func (r *GormDoctorRepository) GetByID(ctx context.Context, id string) (*model.Doctor, error) {
	var d model.Doctor
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}
