package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/booking-service/mail"
	"github.com/stayloop/booking-service/models"
)

type promotionRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1"`
	Subject    string   `json:"subject" binding:"required"`
	Body       string   `json:"body" binding:"required"`
}

// sendPromotion queues one bulk task; fan-out across recipients happens
// inside the worker so a single slow mailbox cannot stall the request.
func (s *Server) sendPromotion(c *gin.Context) {
	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := s.svc.Queue.Enqueue(models.TaskBulkPromotional, mail.BulkPromotionalPayload{
		Recipients: req.Recipients,
		Subject:    req.Subject,
		Body:       req.Body,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"task_id":    task.ID,
		"recipients": len(req.Recipients),
		"status":     string(task.Status),
	})
}
