package webserver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
	"github.com/stayloop/booking-service/utils"
)

// List and detail shapes are two explicit projections over the same
// entity; there is no serializer inheritance behind them.

type propertyListItem struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	PricePerNight string  `json:"price_per_night"`
	PropertyType  string  `json:"property_type"`
	MaxGuests     int     `json:"max_guests"`
	IsAvailable   bool    `json:"is_available"`
	AverageRating float64 `json:"average_rating"`
}

type propertyDetail struct {
	propertyListItem
	HostID      int64     `json:"host_id"`
	Description string    `json:"description"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Amenities   string    `json:"amenities,omitempty"`
	ReviewCount int64     `json:"review_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func projectPropertyList(p *models.Property, avgRating float64) propertyListItem {
	return propertyListItem{
		ID:            p.ID,
		Name:          p.Name,
		Location:      p.Location,
		PricePerNight: services.FormatCents(p.PriceCents),
		PropertyType:  string(p.PropertyType),
		MaxGuests:     p.MaxGuests,
		IsAvailable:   p.IsAvailable,
		AverageRating: avgRating,
	}
}

func projectPropertyDetail(p *models.Property, avgRating float64, reviewCount int64) propertyDetail {
	return propertyDetail{
		propertyListItem: projectPropertyList(p, avgRating),
		HostID:           p.HostID,
		Description:      p.Description,
		Bedrooms:         p.Bedrooms,
		Bathrooms:        p.Bathrooms,
		Amenities:        p.Amenities,
		ReviewCount:      reviewCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type bookingListItem struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"property_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
	TotalPrice string `json:"total_price"`
}

type bookingDetail struct {
	bookingListItem
	UserID          int64     `json:"user_id"`
	Guests          int       `json:"guests"`
	Nights          int       `json:"nights"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	// Read-only aliases kept for API compatibility; start_date and
	// end_date are the canonical fields.
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

func projectBookingList(b *models.Booking) bookingListItem {
	return bookingListItem{
		ID:         b.ID,
		PropertyID: b.PropertyID,
		StartDate:  b.StartDate.Format(utils.DateLayout),
		EndDate:    b.EndDate.Format(utils.DateLayout),
		Status:     string(b.Status),
		TotalPrice: services.FormatCents(b.TotalCents),
	}
}

func projectBookingDetail(b *models.Booking) bookingDetail {
	return bookingDetail{
		bookingListItem: projectBookingList(b),
		UserID:          b.UserID,
		Guests:          b.Guests,
		Nights:          b.Nights(),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		CheckInDate:     b.StartDate.Format(utils.DateLayout),
		CheckOutDate:    b.EndDate.Format(utils.DateLayout),
	}
}

// parsePrice converts a decimal price string ("150" or "150.50") into
// integer cents.
func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, found := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	cents := units * 100
	if found {
		if len(frac) > 2 || len(frac) == 0 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid price %q", s)
		}
		cents += f
	}
	return cents, nil
}
