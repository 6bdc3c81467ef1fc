package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
	"github.com/stayloop/booking-service/utils"
)

type createUserRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := models.User{
		Role:        models.DefaultRole,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		IsActive:    true,
	}
	if err := utils.Validate.Struct(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) currentUser(c *gin.Context) {
	s.renderUser(c, actorID(c))
}

// updateCurrentUser is the profile update. Role and email are not
// editable here.
func (s *Server) updateCurrentUser(c *gin.Context) {
	var req struct {
		FirstName   string `json:"first_name" binding:"required"`
		LastName    string `json:"last_name" binding:"required"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var user models.User
	if err := s.db.First(&user, actorID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	if err := utils.Validate.Struct(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.Model(&user).Updates(map[string]any{
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"phone_number": user.PhoneNumber,
	}).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.renderUser(c, id)
}

func (s *Server) renderUser(c *gin.Context, id int64) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listUserProperties(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	var properties []models.Property
	if err := s.db.Where("host_id = ?", id).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&properties).Error; err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]propertyListItem, 0, len(properties))
	for i := range properties {
		avg, _, err := services.AverageRating(s.db, properties[i].ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		out = append(out, projectPropertyList(&properties[i], avg))
	}
	c.JSON(http.StatusOK, gin.H{"properties": out, "count": len(out)})
}

// listUserBookings is self-only; booking history is not public.
func (s *Server) listUserBookings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if id != actorID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another user's bookings"})
		return
	}
	limit, offset := pagination(c)
	var bookings []models.Booking
	if err := s.db.Where("user_id = ?", id).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&bookings).Error; err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]bookingListItem, 0, len(bookings))
	for i := range bookings {
		out = append(out, projectBookingList(&bookings[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out, "count": len(out)})
}
