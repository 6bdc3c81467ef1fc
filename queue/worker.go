package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-kit/log/level"

	"github.com/stayloop/booking-service/mail"
	"github.com/stayloop/booking-service/models"
)

type worker struct {
	id  int
	mgr *Manager
}

func (w *worker) run(ctx context.Context) {
	defer w.mgr.wg.Done()
	_ = level.Info(w.mgr.logger).Log("msg", "worker started", "worker_id", w.id)

	ticker := time.NewTicker(w.mgr.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.mgr.stopCh:
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *worker) processBatch(ctx context.Context) {
	now := time.Now().UTC()
	var tasks []models.EmailTask
	err := w.mgr.db.
		Where("status = ? AND scheduled_for <= ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			models.TaskPending, now, now).
		Order("scheduled_for").
		Limit(w.mgr.cfg.BatchSize).
		Find(&tasks).Error
	if err != nil {
		_ = level.Error(w.mgr.logger).Log("msg", "failed to fetch pending tasks", "err", err)
		return
	}
	for i := range tasks {
		w.processTask(ctx, &tasks[i])
	}
}

func (w *worker) processTask(ctx context.Context, task *models.EmailTask) {
	// Claim the row; another worker may have beaten us to it.
	res := w.mgr.db.Model(&models.EmailTask{}).
		Where("id = ? AND status = ?", task.ID, models.TaskPending).
		Update("status", models.TaskProcessing)
	if res.Error != nil || res.RowsAffected == 0 {
		return
	}
	task.Attempts++
	if err := w.mgr.db.Model(task).Update("attempts", task.Attempts).Error; err != nil {
		_ = level.Error(w.mgr.logger).Log("msg", "failed to bump attempt counter", "task_id", task.ID, "err", err)
	}

	err := w.executeWithDeadline(ctx, task)
	if err != nil {
		w.handleFailure(task, err)
		return
	}

	if err := w.mgr.db.Model(task).Update("status", models.TaskSent).Error; err != nil {
		_ = level.Error(w.mgr.logger).Log("msg", "failed to mark task sent", "task_id", task.ID, "err", err)
		return
	}
	tasksSent.WithLabelValues(string(task.Kind)).Inc()
	_ = level.Info(w.mgr.logger).Log("msg", "task delivered",
		"worker_id", w.id, "task_id", task.ID, "kind", task.Kind, "attempts", task.Attempts)
}

// executeWithDeadline runs the task under its wall-clock ceiling. Past
// the soft limit a warning is logged; at the hard limit the task is
// abandoned and counted as a failed attempt.
func (w *worker) executeWithDeadline(ctx context.Context, task *models.EmailTask) error {
	ctx, cancel := context.WithTimeout(ctx, w.mgr.cfg.HardTimeout)
	defer cancel()

	softTimer := time.NewTimer(w.mgr.cfg.SoftTimeout)
	defer softTimer.Stop()

	done := make(chan error, 1)
	go func() { done <- w.execute(ctx, task) }()

	for {
		select {
		case err := <-done:
			return err
		case <-softTimer.C:
			_ = level.Warn(w.mgr.logger).Log("msg", "task exceeded soft time limit",
				"task_id", task.ID, "kind", task.Kind)
		case <-ctx.Done():
			return fmt.Errorf("task %d exceeded hard time limit: %w", task.ID, ctx.Err())
		}
	}
}

func (w *worker) execute(ctx context.Context, task *models.EmailTask) error {
	switch task.Kind {
	case models.TaskBookingConfirmation:
		var p mail.ConfirmationPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.mgr.sender.Send(ctx, w.mgr.renderer.Confirmation(p))
	case models.TaskBookingRequest:
		var p mail.RequestPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.mgr.sender.Send(ctx, w.mgr.renderer.Request(p))
	case models.TaskBookingReminder:
		var p mail.ReminderPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.mgr.sender.Send(ctx, w.mgr.renderer.Reminder(p))
	case models.TaskBookingCancellation:
		var p mail.CancellationPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.mgr.sender.Send(ctx, w.mgr.renderer.Cancellation(p))
	case models.TaskBulkPromotional:
		var p mail.BulkPromotionalPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.executeBulk(ctx, task, p)
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

// executeBulk sends to every recipient, tallying per-recipient results.
// A single recipient's failure never aborts the batch.
func (w *worker) executeBulk(ctx context.Context, task *models.EmailTask, p mail.BulkPromotionalPayload) error {
	var sent, failed int
	for _, to := range p.Recipients {
		err := w.mgr.sender.Send(ctx, mail.Message{To: to, Subject: p.Subject, Body: p.Body})
		if err != nil {
			failed++
			_ = level.Error(w.mgr.logger).Log("msg", "bulk recipient failed",
				"task_id", task.ID, "recipient", to, "err", err)
			continue
		}
		sent++
	}
	_ = level.Info(w.mgr.logger).Log("msg", "bulk send finished",
		"task_id", task.ID, "total", len(p.Recipients), "sent", sent, "failed", failed)
	return nil
}

// handleFailure schedules a retry after the fixed delay, or marks the
// task failed once the budget is spent. The error never reaches a
// request path.
func (w *worker) handleFailure(task *models.EmailTask, taskErr error) {
	task.LastError = taskErr.Error()
	if task.Attempts > task.MaxAttempts {
		if err := w.mgr.db.Model(task).
			Updates(map[string]any{"status": models.TaskFailed, "last_error": task.LastError}).Error; err != nil {
			_ = level.Error(w.mgr.logger).Log("msg", "failed to mark task failed", "task_id", task.ID, "err", err)
			return
		}
		tasksFailed.WithLabelValues(string(task.Kind)).Inc()
		_ = level.Error(w.mgr.logger).Log("msg", "task failed, retries exhausted",
			"task_id", task.ID, "kind", task.Kind, "attempts", task.Attempts, "err", taskErr)
		return
	}

	next := time.Now().UTC().Add(w.mgr.cfg.RetryDelay)
	if err := w.mgr.db.Model(task).Updates(map[string]any{
		"status":        models.TaskPending,
		"next_retry_at": next,
		"last_error":    task.LastError,
	}).Error; err != nil {
		_ = level.Error(w.mgr.logger).Log("msg", "failed to schedule retry", "task_id", task.ID, "err", err)
		return
	}
	taskRetries.WithLabelValues(string(task.Kind)).Inc()
	_ = level.Warn(w.mgr.logger).Log("msg", "task retry scheduled",
		"task_id", task.ID, "kind", task.Kind, "attempts", task.Attempts,
		"next_retry", next.Format(time.RFC3339), "err", taskErr)
}
