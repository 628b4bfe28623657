package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every PostgreSQL table with its indexes and
// foreign keys.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Profile{},
		&Post{},
		&Comment{},
		&Like{},
		&Reaction{},
		&Friendship{},
		&Notification{},
	)
}
