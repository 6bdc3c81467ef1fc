package models

import "time"

type Message struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	SenderID    int64     `gorm:"not null;index:idx_message_sender" json:"sender_id"`
	Sender      *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	RecipientID int64     `gorm:"not null;index:idx_message_recipient" json:"recipient_id"`
	Recipient   *User     `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"recipient,omitempty"`
	Body        string    `gorm:"not null" json:"body" validate:"required"`
	BookingID   *int64    `gorm:"index" json:"booking_id,omitempty"`
	IsRead      bool      `gorm:"default:false;index:idx_message_is_read" json:"is_read"`
	SentAt      time.Time `gorm:"index:idx_message_sent_at" json:"sent_at"`
}
