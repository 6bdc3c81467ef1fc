package webserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
	"github.com/stayloop/booking-service/utils"
)

// listBookings returns the caller's bookings as guest plus any made
// against their properties.
func (s *Server) listBookings(c *gin.Context) {
	limit, offset := pagination(c)
	uid := actorID(c)

	q := s.db.Model(&models.Booking{}).
		Joins("JOIN properties ON properties.id = bookings.property_id").
		Where("bookings.user_id = ? OR properties.host_id = ?", uid, uid)
	if status := c.Query("status"); status != "" {
		parsed, err := models.ParseBookingStatus(status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q = q.Where("bookings.status = ?", parsed)
	}

	var bookings []models.Booking
	if err := q.Order("bookings.created_at DESC").Limit(limit).Offset(offset).Find(&bookings).Error; err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]bookingListItem, 0, len(bookings))
	for i := range bookings {
		out = append(out, projectBookingList(&bookings[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out, "count": len(out)})
}

type createBookingRequest struct {
	PropertyID      int64  `json:"property_id" binding:"required"`
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"special_requests"`
}

func (s *Server) createBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if req.Guests == 0 {
		req.Guests = 1
	}

	booking, err := s.svc.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		PropertyID:      req.PropertyID,
		UserID:          actorID(c),
		StartDate:       start,
		EndDate:         end,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectBookingDetail(booking))
}

func (s *Server) getBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	booking, ok := s.loadBookingForActor(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, projectBookingDetail(booking))
}

// updateBooking only touches special_requests. Dates, guests and price
// are immutable once admitted; a different stay is a new booking.
func (s *Server) updateBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		SpecialRequests *string `json:"special_requests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SpecialRequests == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "special_requests is required"})
		return
	}
	booking, ok := s.loadBookingForActor(c, id)
	if !ok {
		return
	}
	if booking.UserID != actorID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the guest can update the booking"})
		return
	}
	if err := s.db.Model(booking).Update("special_requests", *req.SpecialRequests).Error; err != nil {
		s.respondError(c, err)
		return
	}
	booking.SpecialRequests = *req.SpecialRequests
	c.JSON(http.StatusOK, projectBookingDetail(booking))
}

func (s *Server) deleteBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.svc.DeleteBooking(c.Request.Context(), id, actorID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) confirmBooking(c *gin.Context) {
	s.applyTransition(c, s.svc.ConfirmBooking)
}

func (s *Server) cancelBooking(c *gin.Context) {
	s.applyTransition(c, s.svc.CancelBooking)
}

func (s *Server) completeBooking(c *gin.Context) {
	s.applyTransition(c, s.svc.CompleteBooking)
}

func (s *Server) applyTransition(c *gin.Context, fn func(ctx context.Context, bookingID, actorID int64) (*models.Booking, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	booking, err := fn(c.Request.Context(), id, actorID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projectBookingDetail(booking))
}

// loadBookingForActor fetches a booking and enforces that the caller is
// either the guest or the property's host.
func (s *Server) loadBookingForActor(c *gin.Context, id int64) (*models.Booking, bool) {
	var booking models.Booking
	if err := s.db.Preload("Property").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return nil, false
		}
		s.respondError(c, err)
		return nil, false
	}
	uid := actorID(c)
	if booking.UserID != uid && (booking.Property == nil || booking.Property.HostID != uid) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return nil, false
	}
	return &booking, true
}
