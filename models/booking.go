package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
	BookingCompleted BookingStatus = "completed"
)

// ParseBookingStatus normalizes a status string. The British spelling
// "cancelled" is accepted as input and stored as "canceled".
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCanceled, BookingCompleted:
		return BookingStatus(s), nil
	case "cancelled":
		return BookingCanceled, nil
	default:
		return "", fmt.Errorf("unknown booking status %q", s)
	}
}

// Active reports whether the booking still blocks its date range.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking holds a guest's reservation of a property for a half-open
// [StartDate, EndDate) range. TotalCents is set once at admission and
// never recomputed on update.
type Booking struct {
	ID              int64         `gorm:"primaryKey" json:"id"`
	PropertyID      int64         `gorm:"not null;index:idx_booking_property" json:"property_id"`
	Property        *Property     `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"property,omitempty"`
	UserID          int64         `gorm:"not null;index:idx_booking_user" json:"user_id"`
	User            *User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	StartDate       time.Time     `gorm:"not null;index:idx_booking_start_date;check:chk_booking_dates,start_date < end_date" json:"start_date"`
	EndDate         time.Time     `gorm:"not null;index:idx_booking_end_date" json:"end_date"`
	Guests          int           `gorm:"default:1" json:"guests"`
	TotalCents      int64         `gorm:"not null" json:"total_price_cents"`
	Status          BookingStatus `gorm:"size:10;default:'pending';index:idx_booking_status" json:"status"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Nights returns the whole-night duration of the stay.
func (b *Booking) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}
