package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stayloop/booking-service/models"
)

func TestCreateReviewRequiresStay(t *testing.T) {
	s, _ := newTestServer(t)
	host := seedUser(t, s.DB, "host@example.com")
	guest := seedUser(t, s.DB, "guest@example.com")
	property := seedProperty(t, s.DB, host.ID, 10000, 4)

	_, err := s.CreateReview(context.Background(), CreateReviewInput{
		PropertyID: property.ID,
		UserID:     guest.ID,
		Rating:     5,
	})
	require.ErrorIs(t, err, ErrForbidden)

	// A pending booking is not a stay yet.
	booking, err := admit(t, s, property.ID, guest.ID, 10, 12, 2)
	require.NoError(t, err)
	_, err = s.CreateReview(context.Background(), CreateReviewInput{
		PropertyID: property.ID,
		UserID:     guest.ID,
		Rating:     5,
	})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = s.ConfirmBooking(context.Background(), booking.ID, host.ID)
	require.NoError(t, err)
	review, err := s.CreateReview(context.Background(), CreateReviewInput{
		PropertyID: property.ID,
		UserID:     guest.ID,
		Rating:     4,
		Comment:    "Great view.",
	})
	require.NoError(t, err)
	require.Equal(t, 4, review.Rating)

	var notification models.Notification
	require.NoError(t, s.DB.
		Where("user_id = ? AND type = ?", host.ID, models.NotifyReviewReceived).
		First(&notification).Error)
}

func TestCreateReviewOncePerProperty(t *testing.T) {
	s, _ := newTestServer(t)
	host := seedUser(t, s.DB, "host@example.com")
	guest := seedUser(t, s.DB, "guest@example.com")
	property := seedProperty(t, s.DB, host.ID, 10000, 4)
	booking, err := admit(t, s, property.ID, guest.ID, 10, 12, 2)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(context.Background(), booking.ID, host.ID)
	require.NoError(t, err)

	_, err = s.CreateReview(context.Background(), CreateReviewInput{
		PropertyID: property.ID, UserID: guest.ID, Rating: 5,
	})
	require.NoError(t, err)
	_, err = s.CreateReview(context.Background(), CreateReviewInput{
		PropertyID: property.ID, UserID: guest.ID, Rating: 3,
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateReviewAuthorOnly(t *testing.T) {
	s, _ := newTestServer(t)
	host := seedUser(t, s.DB, "host@example.com")
	guest := seedUser(t, s.DB, "guest@example.com")
	property := seedProperty(t, s.DB, host.ID, 10000, 4)
	booking, err := admit(t, s, property.ID, guest.ID, 10, 12, 2)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(context.Background(), booking.ID, host.ID)
	require.NoError(t, err)
	review, err := s.CreateReview(context.Background(), CreateReviewInput{
		PropertyID: property.ID, UserID: guest.ID, Rating: 5, Comment: "Great view.",
	})
	require.NoError(t, err)

	_, err = s.UpdateReview(context.Background(), UpdateReviewInput{
		ReviewID: review.ID, ActorID: host.ID, Rating: 1,
	})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := s.UpdateReview(context.Background(), UpdateReviewInput{
		ReviewID: review.ID, ActorID: guest.ID, Rating: 3, Comment: "Noisy street.",
	})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Rating)

	var stored models.Review
	require.NoError(t, s.DB.First(&stored, review.ID).Error)
	require.Equal(t, "Noisy street.", stored.Comment)

	_, err = s.UpdateReview(context.Background(), UpdateReviewInput{
		ReviewID: review.ID, ActorID: guest.ID, Rating: 6,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteReviewAuthorOnly(t *testing.T) {
	s, _ := newTestServer(t)
	host := seedUser(t, s.DB, "host@example.com")
	guest := seedUser(t, s.DB, "guest@example.com")
	property := seedProperty(t, s.DB, host.ID, 10000, 4)
	booking, err := admit(t, s, property.ID, guest.ID, 10, 12, 2)
	require.NoError(t, err)
	_, err = s.ConfirmBooking(context.Background(), booking.ID, host.ID)
	require.NoError(t, err)
	review, err := s.CreateReview(context.Background(), CreateReviewInput{
		PropertyID: property.ID, UserID: guest.ID, Rating: 5,
	})
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteReview(context.Background(), review.ID, host.ID), ErrForbidden)
	require.NoError(t, s.DeleteReview(context.Background(), review.ID, guest.ID))
	require.ErrorIs(t, s.DeleteReview(context.Background(), review.ID, guest.ID), ErrNotFound)
}

func TestAverageRating(t *testing.T) {
	s, _ := newTestServer(t)
	host := seedUser(t, s.DB, "host@example.com")
	property := seedProperty(t, s.DB, host.ID, 10000, 4)

	avg, count, err := AverageRating(s.DB, property.ID)
	require.NoError(t, err)
	require.Zero(t, avg)
	require.Zero(t, count)

	emails := []string{"a@example.com", "b@example.com"}
	for i, rating := range []int{5, 4} {
		reviewer := seedUser(t, s.DB, emails[i])
		require.NoError(t, s.DB.Create(&models.Review{
			PropertyID: property.ID,
			UserID:     reviewer.ID,
			Rating:     rating,
		}).Error)
	}

	avg, count, err = AverageRating(s.DB, property.ID)
	require.NoError(t, err)
	require.InDelta(t, 4.5, avg, 0.001)
	require.Equal(t, int64(2), count)
}
