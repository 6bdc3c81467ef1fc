package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
)

func (s *Server) listReviews(c *gin.Context) {
	limit, offset := pagination(c)
	q := s.db.Model(&models.Review{})
	if pid := c.Query("property_id"); pid != "" {
		q = q.Where("property_id = ?", pid)
	}
	var reviews []models.Review
	if err := q.Preload("User").Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "count": len(reviews)})
}

func (s *Server) listPropertyReviews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)
	var reviews []models.Review
	if err := s.db.Where("property_id = ?", id).Preload("User").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&reviews).Error; err != nil {
		s.respondError(c, err)
		return
	}
	avg, count, err := services.AverageRating(s.db, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"count":          len(reviews),
		"average_rating": avg,
		"total_reviews":  count,
	})
}

func (s *Server) getReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var review models.Review
	if err := s.db.Preload("User").First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
			return
		}
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func (s *Server) updateReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	review, err := s.svc.UpdateReview(c.Request.Context(), services.UpdateReviewInput{
		ReviewID: id,
		ActorID:  actorID(c),
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (s *Server) deleteReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.svc.DeleteReview(c.Request.Context(), id, actorID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) createPropertyReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	review, err := s.svc.CreateReview(c.Request.Context(), services.CreateReviewInput{
		PropertyID: id,
		UserID:     actorID(c),
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}
