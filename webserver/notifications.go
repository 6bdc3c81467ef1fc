package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
)

func (s *Server) listNotifications(c *gin.Context) {
	limit, offset := pagination(c)
	q := s.db.Model(&models.Notification{}).Where("user_id = ?", actorID(c))
	if c.Query("unread") == "true" {
		q = q.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := services.MarkNotificationRead(s.db, id, actorID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (s *Server) deleteNotification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := services.DeleteNotification(s.db, id, actorID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	if err := services.MarkAllNotificationsRead(s.db, actorID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (s *Server) unreadNotificationCount(c *gin.Context) {
	count, err := services.UnreadNotificationCount(s.db, actorID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
