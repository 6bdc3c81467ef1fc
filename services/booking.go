package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stayloop/booking-service/mail"
	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/utils"
)

var tracer = otel.Tracer("booking-service/services")

// TaskQueue is the asynchronous dispatch boundary. Implementations must
// provide at-least-once delivery with bounded retry; enqueue failures
// never roll back booking state.
type TaskQueue interface {
	Enqueue(kind models.TaskKind, payload any) (*models.EmailTask, error)
}

// Server carries the booking engine's collaborators. The zero value is
// not usable; construct with the DB handle, queue and logger wired.
type Server struct {
	DB     *gorm.DB
	Queue  TaskQueue
	Logger log.Logger
}

type CreateBookingInput struct {
	PropertyID      int64     `validate:"required,gt=0"`
	UserID          int64     `validate:"required,gt=0"`
	StartDate       time.Time `validate:"required,future-date"`
	EndDate         time.Time `validate:"required,gtfield=StartDate"`
	Guests          int       `validate:"required,gt=0"`
	SpecialRequests string    `validate:"max=2000"`
}

// CreateBooking admits a new booking. The availability check, price
// computation and insert run in one transaction holding a row lock on
// the property, so two concurrent requests for overlapping ranges
// serialize and the loser sees the winner's row. Notifications go out
// only after commit.
func (s *Server) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	ctx, span := tracer.Start(ctx, "CreateBooking")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("property.id", in.PropertyID),
		attribute.Int64("user.id", in.UserID),
	)

	if err := utils.Validate.Struct(in); err != nil {
		admissionFailures.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	in.StartDate = utils.Midnight(in.StartDate)
	in.EndDate = utils.Midnight(in.EndDate)

	var booking models.Booking
	var property models.Property
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&property, in.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				admissionFailures.WithLabelValues("not_found").Inc()
				return fmt.Errorf("%w: property %d", ErrNotFound, in.PropertyID)
			}
			return err
		}
		if in.Guests > property.MaxGuests {
			admissionFailures.WithLabelValues("guest_limit").Inc()
			return fmt.Errorf("%w: maximum %d guests allowed", ErrGuestLimit, property.MaxGuests)
		}
		if !property.IsAvailable {
			admissionFailures.WithLabelValues("unavailable").Inc()
			return fmt.Errorf("%w: property %d is not accepting bookings", ErrUnavailable, property.ID)
		}
		free, err := IsAvailable(tx, &property, in.StartDate, in.EndDate, 0)
		if err != nil {
			return err
		}
		if !free {
			admissionFailures.WithLabelValues("conflict").Inc()
			return fmt.Errorf("%w: property %d for %s to %s", ErrConflict,
				property.ID, in.StartDate.Format(utils.DateLayout), in.EndDate.Format(utils.DateLayout))
		}

		total, err := ComputeTotal(property.PriceCents, in.StartDate, in.EndDate)
		if err != nil {
			admissionFailures.WithLabelValues("invalid_range").Inc()
			return err
		}

		booking = models.Booking{
			PropertyID:      property.ID,
			UserID:          in.UserID,
			StartDate:       in.StartDate,
			EndDate:         in.EndDate,
			Guests:          in.Guests,
			TotalCents:      total,
			Status:          models.BookingPending,
			SpecialRequests: in.SpecialRequests,
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	bookingsAdmitted.Inc()
	booking.Property = &property
	s.notifyRequested(ctx, &booking)
	return &booking, nil
}

// ConfirmBooking moves pending -> confirmed. Only the property host may
// confirm; the status guard re-reads the row inside the transaction.
func (s *Server) ConfirmBooking(ctx context.Context, bookingID, actorID int64) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, models.BookingConfirmed,
		func(b *models.Booking) error {
			if b.Property.HostID != actorID {
				return fmt.Errorf("%w: only the property host can confirm bookings", ErrForbidden)
			}
			if b.Status != models.BookingPending {
				return fmt.Errorf("%w: only pending bookings can be confirmed", ErrPrecondition)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.notifyConfirmed(ctx, booking)
	return booking, nil
}

// CancelBooking moves pending or confirmed -> canceled. Either the
// requester or the host may cancel; the counterparty is notified.
func (s *Server) CancelBooking(ctx context.Context, bookingID, actorID int64) (*models.Booking, error) {
	booking, err := s.transition(ctx, bookingID, models.BookingCanceled,
		func(b *models.Booking) error {
			if actorID != b.UserID && actorID != b.Property.HostID {
				return fmt.Errorf("%w: only the guest or the host can cancel", ErrForbidden)
			}
			if !b.Status.Active() {
				return fmt.Errorf("%w: only pending or confirmed bookings can be cancelled", ErrPrecondition)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.notifyCancelled(ctx, booking, actorID)
	return booking, nil
}

// CompleteBooking moves confirmed -> completed once the stay is over.
// Host only; completion is silent, nobody is notified.
func (s *Server) CompleteBooking(ctx context.Context, bookingID, actorID int64) (*models.Booking, error) {
	return s.transition(ctx, bookingID, models.BookingCompleted,
		func(b *models.Booking) error {
			if b.Property.HostID != actorID {
				return fmt.Errorf("%w: only the property host can complete bookings", ErrForbidden)
			}
			if b.Status != models.BookingConfirmed {
				return fmt.Errorf("%w: only confirmed bookings can be completed", ErrPrecondition)
			}
			if b.EndDate.After(utils.Today()) {
				return fmt.Errorf("%w: cannot complete booking before checkout date", ErrPrecondition)
			}
			return nil
		})
}

// DeleteBooking is the legacy path: the requester hard-deletes an
// active booking and the host receives a compensating cancellation
// notification.
func (s *Server) DeleteBooking(ctx context.Context, bookingID, actorID int64) error {
	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Property").Preload("Property.Host").Preload("User").
			First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
			}
			return err
		}
		if booking.UserID != actorID {
			return fmt.Errorf("%w: only the requester can delete a booking", ErrForbidden)
		}
		if !booking.Status.Active() {
			return fmt.Errorf("%w: only pending or confirmed bookings can be deleted", ErrPrecondition)
		}
		return tx.Delete(&models.Booking{}, bookingID).Error
	})
	if err != nil {
		return err
	}
	s.notifyCancelled(ctx, &booking, actorID)
	return nil
}

// transition loads the booking with its property under a row lock, runs
// the guard and persists the new status, all in one transaction. Guard
// failures abort without mutating.
func (s *Server) transition(ctx context.Context, bookingID int64, to models.BookingStatus, guard func(*models.Booking) error) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Preload("Property").Preload("Property.Host").Preload("User").
			First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
			}
			return err
		}
		if err := guard(&booking); err != nil {
			return err
		}
		booking.Status = to
		return tx.Model(&models.Booking{ID: booking.ID}).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}
	bookingTransitions.WithLabelValues(string(to)).Inc()
	return &booking, nil
}

// lockForUpdate adds a FOR UPDATE clause on dialects that support it.
// SQLite serializes writers on its own, so the lock is only emitted for
// postgres.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// notifyRequested runs after a successful admission: request email to
// the host, confirmation email to the guest, in-app record for the
// host. Failures here are logged and dropped, never surfaced to the
// caller.
func (s *Server) notifyRequested(ctx context.Context, b *models.Booking) {
	guest, host, ok := s.loadParties(ctx, b)
	if !ok {
		return
	}
	s.enqueue(models.TaskBookingRequest, mail.RequestPayload{
		BookingID:       b.ID,
		HostEmail:       host.Email,
		HostName:        host.FullName(),
		GuestName:       guest.FullName(),
		GuestEmail:      guest.Email,
		GuestPhone:      guest.PhoneNumber,
		ListingTitle:    b.Property.Name,
		ListingLocation: b.Property.Location,
		CheckInDate:     b.StartDate.Format(utils.DateLayout),
		CheckOutDate:    b.EndDate.Format(utils.DateLayout),
		Guests:          b.Guests,
		TotalPrice:      FormatCents(b.TotalCents),
		SpecialRequests: b.SpecialRequests,
	})
	s.enqueue(models.TaskBookingConfirmation, mail.ConfirmationPayload{
		BookingID:       b.ID,
		UserEmail:       guest.Email,
		UserName:        guest.FullName(),
		ListingTitle:    b.Property.Name,
		ListingLocation: b.Property.Location,
		HostName:        host.FullName(),
		CheckInDate:     b.StartDate.Format(utils.DateLayout),
		CheckOutDate:    b.EndDate.Format(utils.DateLayout),
		TotalPrice:      FormatCents(b.TotalCents),
	})
	s.recordNotification(ctx, host.ID, models.NotifyBookingRequest,
		"New Booking Request",
		fmt.Sprintf("%s requested %s for %s to %s.", guest.FullName(), b.Property.Name,
			b.StartDate.Format(utils.DateLayout), b.EndDate.Format(utils.DateLayout)),
		b)
}

func (s *Server) notifyConfirmed(ctx context.Context, b *models.Booking) {
	guest, host, ok := s.loadParties(ctx, b)
	if !ok {
		return
	}
	s.enqueue(models.TaskBookingConfirmation, mail.ConfirmationPayload{
		BookingID:       b.ID,
		UserEmail:       guest.Email,
		UserName:        guest.FullName(),
		ListingTitle:    b.Property.Name,
		ListingLocation: b.Property.Location,
		HostName:        host.FullName(),
		CheckInDate:     b.StartDate.Format(utils.DateLayout),
		CheckOutDate:    b.EndDate.Format(utils.DateLayout),
		TotalPrice:      FormatCents(b.TotalCents),
	})
	s.recordNotification(ctx, guest.ID, models.NotifyBookingConfirmed,
		"Booking Confirmed",
		fmt.Sprintf("Your booking for %s has been confirmed.", b.Property.Name),
		b)
}

func (s *Server) notifyCancelled(ctx context.Context, b *models.Booking, actorID int64) {
	guest, host, ok := s.loadParties(ctx, b)
	if !ok {
		return
	}
	// Address the counterparty of whoever acted.
	recipient := guest
	if actorID == guest.ID {
		recipient = host
	}
	s.enqueue(models.TaskBookingCancellation, mail.CancellationPayload{
		BookingID:    b.ID,
		UserEmail:    recipient.Email,
		UserName:     recipient.FullName(),
		ListingTitle: b.Property.Name,
	})
	s.recordNotification(ctx, recipient.ID, models.NotifyBookingCancelled,
		"Booking Cancelled",
		fmt.Sprintf("Booking for %s has been cancelled.", b.Property.Name),
		b)
}

func (s *Server) enqueue(kind models.TaskKind, payload any) {
	if s.Queue == nil {
		return
	}
	if _, err := s.Queue.Enqueue(kind, payload); err != nil {
		_ = level.Error(s.Logger).Log("msg", "failed to enqueue email task", "kind", kind, "err", err)
	}
}

func (s *Server) recordNotification(ctx context.Context, userID int64, typ models.NotificationType, title, body string, b *models.Booking) {
	if _, err := CreateNotification(s.DB.WithContext(ctx), userID, typ, title, body, &b.ID, &b.PropertyID); err != nil {
		_ = level.Error(s.Logger).Log("msg", "failed to record in-app notification", "user_id", userID, "err", err)
	}
}

// loadParties resolves the guest and host users for a booking,
// preferring what is already preloaded.
func (s *Server) loadParties(ctx context.Context, b *models.Booking) (guest, host *models.User, ok bool) {
	if b.Property == nil {
		var property models.Property
		if err := s.DB.WithContext(ctx).First(&property, b.PropertyID).Error; err != nil {
			_ = level.Error(s.Logger).Log("msg", "failed to load property for notification", "booking_id", b.ID, "err", err)
			return nil, nil, false
		}
		b.Property = &property
	}
	guest = b.User
	if guest == nil {
		var u models.User
		if err := s.DB.WithContext(ctx).First(&u, b.UserID).Error; err != nil {
			_ = level.Error(s.Logger).Log("msg", "failed to load guest for notification", "booking_id", b.ID, "err", err)
			return nil, nil, false
		}
		guest = &u
	}
	host = b.Property.Host
	if host == nil {
		var u models.User
		if err := s.DB.WithContext(ctx).First(&u, b.Property.HostID).Error; err != nil {
			_ = level.Error(s.Logger).Log("msg", "failed to load host for notification", "booking_id", b.ID, "err", err)
			return nil, nil, false
		}
		host = &u
	}
	return guest, host, true
}
