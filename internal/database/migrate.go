package database

import (
	"gorm.io/gorm"

	"tradematch_backend/internal/models"
)

// AutoMigrate brings the schema up to date with the model definitions.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Quote{},
		&models.Notification{},
		&models.Conversation{},
		&models.CRMCustomer{},
		&models.CRMInteraction{},
	)
}
