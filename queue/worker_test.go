package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stayloop/booking-service/config"
	"github.com/stayloop/booking-service/mail"
	"github.com/stayloop/booking-service/models"
)

type fakeSender struct {
	sent     []mail.Message
	failures int // fail this many sends before succeeding
	failTo   string
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp: connection refused")
	}
	if f.failTo != "" && msg.To == f.failTo {
		return errors.New("smtp: mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func newTestManager(t *testing.T, sender mail.Sender) (*Manager, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.EmailTask{}))

	cfg := &config.QueueConfig{
		WorkerCount:  1,
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  3,
		RetryDelay:   0, // retries are due immediately in tests
		SoftTimeout:  time.Second,
		HardTimeout:  5 * time.Second,
	}
	renderer := mail.NewRenderer(&config.MailConfig{
		FromAddress:    "noreply@example.com",
		SupportAddress: "support@example.com",
	})
	return NewManager(db, cfg, sender, renderer, log.NewNopLogger()), db
}

func confirmationTask(t *testing.T, m *Manager) *models.EmailTask {
	t.Helper()
	task, err := m.Enqueue(models.TaskBookingConfirmation, mail.ConfirmationPayload{
		BookingID:    1,
		UserEmail:    "guest@example.com",
		UserName:     "Ana Silva",
		ListingTitle: "Seaside Loft",
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-04",
		TotalPrice:   "300.00",
	})
	require.NoError(t, err)
	return task
}

func TestWorkerDeliversTask(t *testing.T) {
	sender := &fakeSender{}
	m, db := newTestManager(t, sender)
	task := confirmationTask(t, m)

	w := &worker{id: 1, mgr: m}
	w.processBatch(context.Background())

	require.Len(t, sender.sent, 1)
	require.Equal(t, "guest@example.com", sender.sent[0].To)
	require.Contains(t, sender.sent[0].Body, "Seaside Loft")

	var stored models.EmailTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskSent, stored.Status)
	require.Equal(t, 1, stored.Attempts)
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	sender := &fakeSender{failures: 2}
	m, db := newTestManager(t, sender)
	task := confirmationTask(t, m)
	w := &worker{id: 1, mgr: m}

	// First two attempts fail and are rescheduled.
	w.processBatch(context.Background())
	var stored models.EmailTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskPending, stored.Status)
	require.Equal(t, 1, stored.Attempts)
	require.NotNil(t, stored.NextRetryAt)
	require.Contains(t, stored.LastError, "connection refused")

	w.processBatch(context.Background())
	w.processBatch(context.Background())

	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskSent, stored.Status)
	require.Equal(t, 3, stored.Attempts)
	require.Len(t, sender.sent, 1)
}

func TestWorkerExhaustsRetryBudget(t *testing.T) {
	sender := &fakeSender{failures: 100}
	m, db := newTestManager(t, sender)
	task := confirmationTask(t, m)
	w := &worker{id: 1, mgr: m}

	// Initial attempt plus three retries, then the task is parked.
	for i := 0; i < 4; i++ {
		w.processBatch(context.Background())
	}

	var stored models.EmailTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskFailed, stored.Status)
	require.Equal(t, 4, stored.Attempts)
	require.Empty(t, sender.sent)

	// A parked task is never picked up again.
	w.processBatch(context.Background())
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, 4, stored.Attempts)
}

func TestWorkerHonorsRetryDelay(t *testing.T) {
	sender := &fakeSender{failures: 1}
	m, db := newTestManager(t, sender)
	m.cfg.RetryDelay = time.Hour
	task := confirmationTask(t, m)
	w := &worker{id: 1, mgr: m}

	w.processBatch(context.Background())
	// Retry is an hour out; an immediate poll must skip it.
	w.processBatch(context.Background())

	var stored models.EmailTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskPending, stored.Status)
	require.Equal(t, 1, stored.Attempts)
}

func TestWorkerSkipsFutureScheduledTasks(t *testing.T) {
	sender := &fakeSender{}
	m, db := newTestManager(t, sender)
	task := confirmationTask(t, m)
	require.NoError(t, db.Model(task).
		Update("scheduled_for", time.Now().UTC().Add(time.Hour)).Error)

	w := &worker{id: 1, mgr: m}
	w.processBatch(context.Background())

	require.Empty(t, sender.sent)
}

func TestWorkerUnknownKindFails(t *testing.T) {
	sender := &fakeSender{}
	m, db := newTestManager(t, sender)
	task := models.EmailTask{
		Kind:         "send_carrier_pigeon",
		Payload:      []byte(`{}`),
		Status:       models.TaskPending,
		MaxAttempts:  0,
		ScheduledFor: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&task).Error)
	// Create skips zero-valued fields carrying a gorm default tag, so pin
	// the zero retry budget explicitly.
	require.NoError(t, db.Model(&task).Update("max_attempts", 0).Error)

	w := &worker{id: 1, mgr: m}
	w.processBatch(context.Background())

	var stored models.EmailTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskFailed, stored.Status)
}

func TestBulkPromotionalTally(t *testing.T) {
	sender := &fakeSender{failTo: "bad@example.com"}
	m, db := newTestManager(t, sender)
	task, err := m.Enqueue(models.TaskBulkPromotional, mail.BulkPromotionalPayload{
		Recipients: []string{"a@example.com", "bad@example.com", "b@example.com"},
		Subject:    "Summer deals",
		Body:       "Book now.",
	})
	require.NoError(t, err)

	w := &worker{id: 1, mgr: m}
	w.processBatch(context.Background())

	// One bad mailbox does not fail the batch.
	require.Len(t, sender.sent, 2)
	var stored models.EmailTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Equal(t, models.TaskSent, stored.Status)
}
