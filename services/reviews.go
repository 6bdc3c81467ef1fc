package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log/level"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/utils"
)

type CreateReviewInput struct {
	PropertyID int64  `validate:"required,gt=0"`
	UserID     int64  `validate:"required,gt=0"`
	Rating     int    `validate:"required,gte=1,lte=5"`
	Comment    string `validate:"max=5000"`
}

// CreateReview records a review. The author must have a confirmed or
// completed booking for the property and may review it only once.
func (s *Server) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	if err := utils.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var review models.Review
	var property models.Property
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&property, in.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: property %d", ErrNotFound, in.PropertyID)
			}
			return err
		}
		var stays int64
		if err := tx.Model(&models.Booking{}).
			Where("property_id = ? AND user_id = ? AND status IN ?",
				in.PropertyID, in.UserID,
				[]models.BookingStatus{models.BookingConfirmed, models.BookingCompleted}).
			Count(&stays).Error; err != nil {
			return err
		}
		if stays == 0 {
			return fmt.Errorf("%w: you can only review properties you have booked", ErrForbidden)
		}
		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("property_id = ? AND user_id = ?", in.PropertyID, in.UserID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: you have already reviewed this property", ErrConflict)
		}
		review = models.Review{
			PropertyID: in.PropertyID,
			UserID:     in.UserID,
			Rating:     in.Rating,
			Comment:    in.Comment,
		}
		return tx.Create(&review).Error
	})
	if err != nil {
		return nil, err
	}

	if _, err := CreateNotification(s.DB.WithContext(ctx), property.HostID, models.NotifyReviewReceived,
		"New Review",
		fmt.Sprintf("Your property %s received a %d-star review.", property.Name, in.Rating),
		nil, &property.ID); err != nil {
		_ = level.Error(s.Logger).Log("msg", "failed to record review notification", "err", err)
	}
	return &review, nil
}

type UpdateReviewInput struct {
	ReviewID int64  `validate:"required,gt=0"`
	ActorID  int64  `validate:"required,gt=0"`
	Rating   int    `validate:"required,gte=1,lte=5"`
	Comment  string `validate:"max=5000"`
}

// UpdateReview rewrites a review's rating and comment. Author only.
func (s *Server) UpdateReview(ctx context.Context, in UpdateReviewInput) (*models.Review, error) {
	if err := utils.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	review, err := loadOwnReview(s.DB.WithContext(ctx), in.ReviewID, in.ActorID)
	if err != nil {
		return nil, err
	}
	review.Rating = in.Rating
	review.Comment = in.Comment
	if err := s.DB.WithContext(ctx).Model(review).
		Updates(map[string]any{"rating": in.Rating, "comment": in.Comment}).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review. Author only.
func (s *Server) DeleteReview(ctx context.Context, reviewID, actorID int64) error {
	review, err := loadOwnReview(s.DB.WithContext(ctx), reviewID, actorID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(review).Error
}

func loadOwnReview(db *gorm.DB, reviewID, actorID int64) (*models.Review, error) {
	var review models.Review
	if err := db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: review %d", ErrNotFound, reviewID)
		}
		return nil, err
	}
	if review.UserID != actorID {
		return nil, fmt.Errorf("%w: not your review", ErrForbidden)
	}
	return &review, nil
}

// AverageRating computes the property's mean rating and review count.
func AverageRating(db *gorm.DB, propertyID int64) (avg float64, count int64, err error) {
	row := db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0), COUNT(*)").
		Where("property_id = ?", propertyID).
		Row()
	err = row.Scan(&avg, &count)
	return avg, count, err
}
