package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
)

// IsAvailable reports whether the property is free for the half-open
// [start, end): the availability flag must be set and no pending or
// confirmed booking may overlap the range. excludeBookingID lets a
// booking be re-validated against its own slot during edits (0 means
// no exclusion).
//
// The check is a pure read over the snapshot seen by tx; callers that
// need the result to still hold at insert time must run the check and
// the insert on the same transaction (see CreateBooking).
func IsAvailable(tx *gorm.DB, property *models.Property, start, end time.Time, excludeBookingID int64) (bool, error) {
	if !property.IsAvailable {
		return false, nil
	}
	if !start.Before(end) {
		return false, ErrInvalidRange
	}
	var count int64
	q := tx.Model(&models.Booking{}).
		Where("property_id = ? AND status IN ? AND start_date < ? AND end_date > ?",
			property.ID,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
			end, start)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
