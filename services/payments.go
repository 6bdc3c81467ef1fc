package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/utils"
)

type CreatePaymentInput struct {
	BookingID   int64                `validate:"required,gt=0"`
	ActorID     int64                `validate:"required,gt=0"`
	AmountCents int64                `validate:"required,gt=0"`
	Method      models.PaymentMethod `validate:"required,oneof=credit_card debit_card paypal bank_transfer cash"`
}

// CreatePayment records a payment against a booking. There is no
// gateway behind it; the row is a status tracker with a generated
// transaction reference.
func (s *Server) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if err := utils.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var payment models.Payment
	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Property").First(&booking, in.BookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %d", ErrNotFound, in.BookingID)
			}
			return err
		}
		if booking.UserID != in.ActorID {
			return fmt.Errorf("%w: only the booking owner can pay", ErrForbidden)
		}
		payment = models.Payment{
			BookingID:     booking.ID,
			AmountCents:   in.AmountCents,
			Method:        in.Method,
			Status:        models.PaymentCompleted,
			TransactionID: uuid.NewString(),
			PaymentDate:   time.Now().UTC(),
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}

	if _, err := CreateNotification(s.DB.WithContext(ctx), booking.Property.HostID, models.NotifyPaymentReceived,
		"Payment Received",
		fmt.Sprintf("Payment of %s received for %s.", FormatCents(in.AmountCents), booking.Property.Name),
		&booking.ID, &booking.PropertyID); err != nil {
		_ = level.Error(s.Logger).Log("msg", "failed to record payment notification", "err", err)
	}
	return &payment, nil
}
