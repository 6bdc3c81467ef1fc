package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log/level"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/utils"
)

type SendMessageInput struct {
	SenderID    int64  `validate:"required,gt=0"`
	RecipientID int64  `validate:"required,gt=0,nefield=SenderID"`
	Body        string `validate:"required,max=5000"`
	BookingID   *int64
}

// SendMessage stores a direct message and records a message_received
// notification for the recipient.
func (s *Server) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if err := utils.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var sender models.User
	if err := s.DB.WithContext(ctx).First(&sender, in.SenderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, in.SenderID)
		}
		return nil, err
	}

	msg := models.Message{
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
		Body:        in.Body,
		BookingID:   in.BookingID,
		SentAt:      time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}

	if _, err := CreateNotification(s.DB.WithContext(ctx), in.RecipientID, models.NotifyMessageReceived,
		"New Message",
		fmt.Sprintf("You have a new message from %s.", sender.FullName()),
		in.BookingID, nil); err != nil {
		_ = level.Error(s.Logger).Log("msg", "failed to record message notification", "err", err)
	}
	return &msg, nil
}

// GetMessage fetches one message; only its sender or recipient may
// read it.
func GetMessage(db *gorm.DB, messageID, actorID int64) (*models.Message, error) {
	var msg models.Message
	if err := db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return nil, err
	}
	if msg.SenderID != actorID && msg.RecipientID != actorID {
		return nil, fmt.Errorf("%w: not your message", ErrForbidden)
	}
	return &msg, nil
}

// MarkMessageRead flips the read flag; recipient only.
func MarkMessageRead(db *gorm.DB, messageID, actorID int64) error {
	var msg models.Message
	if err := db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: message %d", ErrNotFound, messageID)
		}
		return err
	}
	if msg.RecipientID != actorID {
		return fmt.Errorf("%w: you can only mark your own messages as read", ErrForbidden)
	}
	return db.Model(&msg).Update("is_read", true).Error
}
