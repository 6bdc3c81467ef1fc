package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
)

func (s *Server) listPayments(c *gin.Context) {
	limit, offset := pagination(c)
	var payments []models.Payment
	if err := s.db.
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.user_id = ?", actorID(c)).
		Order("payments.payment_date DESC").
		Limit(limit).Offset(offset).
		Find(&payments).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

type createPaymentRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"payment_method" binding:"required"`
}

func (s *Server) createPayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cents, err := parsePrice(req.Amount)
	if err != nil || cents <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	payment, err := s.svc.CreatePayment(c.Request.Context(), services.CreatePaymentInput{
		BookingID:   req.BookingID,
		ActorID:     actorID(c),
		AmountCents: cents,
		Method:      models.PaymentMethod(req.Method),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}
