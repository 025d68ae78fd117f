package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the application owns. Run by
// the seed command and the e2e suite.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&CategoryModel{},
		&ClassModel{},
		&ScheduleModel{},
		&BookingModel{},
		&ReviewModel{},
		&RefreshToken{},
	)
}
