package models

import "time"

type NotificationType string

const (
	NotifyBookingRequest   NotificationType = "booking_request"
	NotifyBookingConfirmed NotificationType = "booking_confirmed"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
	NotifyPaymentReceived  NotificationType = "payment_received"
	NotifyReviewReceived   NotificationType = "review_received"
	NotifyMessageReceived  NotificationType = "message_received"
)

// Notification is the durable in-app record, distinct from email
// delivery. Created synchronously on lifecycle transitions; only the
// owning user may mark it read.
type Notification struct {
	ID         int64            `gorm:"primaryKey" json:"id"`
	UserID     int64            `gorm:"not null;index:idx_notification_user_read,priority:1" json:"user_id"`
	User       *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type       NotificationType `gorm:"size:20;not null" json:"notification_type"`
	Title      string           `gorm:"size:255;not null" json:"title"`
	Body       string           `json:"message"`
	IsRead     bool             `gorm:"default:false;index:idx_notification_user_read,priority:2" json:"is_read"`
	BookingID  *int64           `json:"booking_id,omitempty"`
	PropertyID *int64           `json:"property_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
