package model

import (
	"time"

	"github.com/google/uuid"
)

// services
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	// Minutes. Addon durations are summed on top of this for the total
	// appointment duration.
	DurationMin int `gorm:"not null"`

	Price float64 `gorm:"not null;default:0"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Addons []Service `gorm:"many2many:service_addons;joinForeignKey:ServiceID;joinReferences:AddonID"`
}

// service_addons: bundles an additional service under a primary one.
type ServiceAddon struct {
	ServiceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AddonID   uuid.UUID `gorm:"type:uuid;primaryKey"`

	CreatedAt time.Time `gorm:"not null"`
}
