package models

import "gorm.io/gorm"

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Property{},
		&Booking{},
		&Payment{},
		&Review{},
		&Message{},
		&Notification{},
		&EmailTask{},
	)
}

func CreateIndexes(db *gorm.DB) error {
	// Composite index backing the overlap query on active bookings.
	return db.Exec("CREATE INDEX IF NOT EXISTS idx_booking_property_status_dates ON bookings(property_id, status, start_date, end_date)").Error
}
