package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stayloop/booking-service/models"
)

func TestSendMessageNotifiesRecipient(t *testing.T) {
	s, _ := newTestServer(t)
	sender := seedUser(t, s.DB, "sender@example.com")
	recipient := seedUser(t, s.DB, "recipient@example.com")

	msg, err := s.SendMessage(context.Background(), SendMessageInput{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        "Is the loft free next weekend?",
	})
	require.NoError(t, err)
	require.False(t, msg.IsRead)

	var notification models.Notification
	require.NoError(t, s.DB.
		Where("user_id = ? AND type = ?", recipient.ID, models.NotifyMessageReceived).
		First(&notification).Error)
}

func TestSendMessageToSelfRejected(t *testing.T) {
	s, _ := newTestServer(t)
	sender := seedUser(t, s.DB, "sender@example.com")

	_, err := s.SendMessage(context.Background(), SendMessageInput{
		SenderID:    sender.ID,
		RecipientID: sender.ID,
		Body:        "note to self",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetMessageParticipantsOnly(t *testing.T) {
	s, _ := newTestServer(t)
	sender := seedUser(t, s.DB, "sender@example.com")
	recipient := seedUser(t, s.DB, "recipient@example.com")
	outsider := seedUser(t, s.DB, "outsider@example.com")

	msg, err := s.SendMessage(context.Background(), SendMessageInput{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        "hello",
	})
	require.NoError(t, err)

	_, err = GetMessage(s.DB, msg.ID, outsider.ID)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := GetMessage(s.DB, msg.ID, sender.ID)
	require.NoError(t, err)
	require.Equal(t, msg.ID, got.ID)
	_, err = GetMessage(s.DB, msg.ID, recipient.ID)
	require.NoError(t, err)

	_, err = GetMessage(s.DB, 9999, sender.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkMessageReadRecipientOnly(t *testing.T) {
	s, _ := newTestServer(t)
	sender := seedUser(t, s.DB, "sender@example.com")
	recipient := seedUser(t, s.DB, "recipient@example.com")

	msg, err := s.SendMessage(context.Background(), SendMessageInput{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Body:        "hello",
	})
	require.NoError(t, err)

	require.ErrorIs(t, MarkMessageRead(s.DB, msg.ID, sender.ID), ErrForbidden)
	require.NoError(t, MarkMessageRead(s.DB, msg.ID, recipient.ID))

	var stored models.Message
	require.NoError(t, s.DB.First(&stored, msg.ID).Error)
	require.True(t, stored.IsRead)
}
