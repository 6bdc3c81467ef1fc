package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
)

func (s *Server) listMessages(c *gin.Context) {
	limit, offset := pagination(c)
	uid := actorID(c)
	q := s.db.Model(&models.Message{}).
		Where("sender_id = ? OR recipient_id = ?", uid, uid)
	if other := c.Query("with_user"); other != "" {
		q = q.Where("sender_id = ? OR recipient_id = ?", other, other)
	}
	var messages []models.Message
	if err := q.Order("sent_at DESC").Limit(limit).Offset(offset).
		Find(&messages).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

type sendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
	BookingID   *int64 `json:"booking_id"`
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	message, err := s.svc.SendMessage(c.Request.Context(), services.SendMessageInput{
		SenderID:    actorID(c),
		RecipientID: req.RecipientID,
		Body:        req.Body,
		BookingID:   req.BookingID,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (s *Server) getMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	message, err := services.GetMessage(s.db, id, actorID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

func (s *Server) markMessageRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := services.MarkMessageRead(s.db, id, actorID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
