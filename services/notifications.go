package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
)

// CreateNotification writes a durable in-app notification row.
func CreateNotification(db *gorm.DB, userID int64, typ models.NotificationType, title, body string, bookingID, propertyID *int64) (*models.Notification, error) {
	n := models.Notification{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Body:       body,
		BookingID:  bookingID,
		PropertyID: propertyID,
	}
	if err := db.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkNotificationRead flips the read flag; only the owning user may do
// so.
func MarkNotificationRead(db *gorm.DB, notificationID, actorID int64) error {
	var n models.Notification
	if err := db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification %d", ErrNotFound, notificationID)
		}
		return err
	}
	if n.UserID != actorID {
		return fmt.Errorf("%w: not your notification", ErrForbidden)
	}
	return db.Model(&n).Update("is_read", true).Error
}

// DeleteNotification removes a notification row; owner only.
func DeleteNotification(db *gorm.DB, notificationID, actorID int64) error {
	var n models.Notification
	if err := db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification %d", ErrNotFound, notificationID)
		}
		return err
	}
	if n.UserID != actorID {
		return fmt.Errorf("%w: not your notification", ErrForbidden)
	}
	return db.Delete(&n).Error
}

// MarkAllNotificationsRead marks every unread notification of a user.
func MarkAllNotificationsRead(db *gorm.DB, userID int64) error {
	return db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// UnreadNotificationCount returns the user's unread tally.
func UnreadNotificationCount(db *gorm.DB, userID int64) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
