package model

import "gorm.io/gorm"

// AutoMigrate migrates all entities of the booking core.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Doctor{},
		&Patient{},
		&Service{},
		&ServiceAddon{},
		&Schedule{},
		&Slot{},
		&Appointment{},
		&AuditEvent{},
	)
}
