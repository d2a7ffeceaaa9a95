package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicore/booking/internal/model"
)

type ServiceRepository interface {
	GetByID(ctx context.Context, id string) (*model.Service, error)
	// ListAddons returns the additional services bundled under a primary one.
	ListAddons(ctx context.Context, serviceID uuid.UUID) ([]model.Service, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error)
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]model.Service, int64, error)
}

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) GetByID(ctx context.Context, id string) (*model.Service, error) {
	var s model.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormServiceRepository) ListAddons(ctx context.Context, serviceID uuid.UUID) ([]model.Service, error) {
	var addons []model.Service
	err := r.db.WithContext(ctx).
		Table("services").
		Select("services.*").
		Joins("JOIN service_addons ON service_addons.addon_id = services.id").
		Where("service_addons.service_id = ?", serviceID).
		Order("services.name ASC").
		Scan(&addons).Error
	if err != nil {
		return nil, err
	}
	return addons, nil
}

func (r *GormServiceRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Service, error) {
	if len(ids) == 0 {
		return []model.Service{}, nil
	}
	var services []model.Service
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *GormServiceRepository) List(ctx context.Context, onlyActive bool, limit, offset int) ([]model.Service, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Service{})
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var services []model.Service
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&services).Error; err != nil {
		return nil, 0, err
	}
	return services, total, nil
}
