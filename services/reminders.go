package services

import (
	"context"

	"github.com/go-kit/log/level"
	"gorm.io/datatypes"

	"github.com/stayloop/booking-service/mail"
	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/utils"
)

// EnqueueCheckInReminders queues a reminder email for every confirmed
// booking that checks in tomorrow. It is idempotent per day: a second
// sweep skips bookings that already have a reminder task queued for the
// same stay.
func (s *Server) EnqueueCheckInReminders(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "EnqueueCheckInReminders")
	defer span.End()

	tomorrow := utils.Today().AddDate(0, 0, 1)

	var bookings []models.Booking
	err := s.DB.WithContext(ctx).
		Preload("User").Preload("Property").
		Where("status = ? AND start_date = ?", models.BookingConfirmed, tomorrow).
		Find(&bookings).Error
	if err != nil {
		return 0, err
	}

	queued := 0
	for i := range bookings {
		b := &bookings[i]
		if b.User == nil || b.Property == nil {
			continue
		}
		var existing int64
		if err := s.DB.WithContext(ctx).Model(&models.EmailTask{}).
			Where("kind = ?", models.TaskBookingReminder).
			Where(datatypes.JSONQuery("payload").Equals(b.ID, "booking_id")).
			Count(&existing).Error; err != nil {
			return queued, err
		}
		if existing > 0 {
			continue
		}
		s.enqueue(models.TaskBookingReminder, mail.ReminderPayload{
			BookingID:       b.ID,
			UserEmail:       b.User.Email,
			UserName:        b.User.FullName(),
			ListingTitle:    b.Property.Name,
			ListingLocation: b.Property.Location,
			CheckInDate:     b.StartDate.Format(utils.DateLayout),
		})
		queued++
	}
	if queued > 0 {
		_ = level.Info(s.Logger).Log("msg", "check-in reminders queued", "count", queued)
	}
	return queued, nil
}
