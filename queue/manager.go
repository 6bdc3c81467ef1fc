package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gorm.io/gorm"

	"github.com/stayloop/booking-service/config"
	"github.com/stayloop/booking-service/mail"
	"github.com/stayloop/booking-service/models"
)

// Manager owns the durable email-task queue: Enqueue inserts rows, a
// pool of workers polls and delivers them. Tasks survive process
// restarts; delivery is at-least-once with a fixed-delay retry budget.
type Manager struct {
	db       *gorm.DB
	cfg      *config.QueueConfig
	logger   log.Logger
	sender   mail.Sender
	renderer *mail.Renderer

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewManager(db *gorm.DB, cfg *config.QueueConfig, sender mail.Sender, renderer *mail.Renderer, logger log.Logger) *Manager {
	return &Manager{
		db:       db,
		cfg:      cfg,
		logger:   logger,
		sender:   sender,
		renderer: renderer,
		stopCh:   make(chan struct{}),
	}
}

// Enqueue persists a task for asynchronous delivery and returns the
// stored row as the caller's handle. It runs outside the caller's
// transaction; a failure here must not roll back booking state.
func (m *Manager) Enqueue(kind models.TaskKind, payload any) (*models.EmailTask, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for %s: %w", kind, err)
	}
	task := models.EmailTask{
		Kind:         kind,
		Payload:      raw,
		Status:       models.TaskPending,
		MaxAttempts:  m.cfg.MaxAttempts,
		ScheduledFor: time.Now().UTC(),
	}
	if err := m.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", kind, err)
	}
	_ = level.Debug(m.logger).Log("msg", "task enqueued", "kind", kind, "task_id", task.ID)
	return &task, nil
}

// Start launches the worker pool and the stuck-task sweeper.
func (m *Manager) Start(ctx context.Context) {
	count := m.cfg.WorkerCount
	if count <= 0 {
		count = 5
	}
	_ = level.Info(m.logger).Log("msg", "starting queue workers", "worker_count", count)
	for i := 0; i < count; i++ {
		w := &worker{id: i + 1, mgr: m}
		m.wg.Add(1)
		go w.run(ctx)
	}
	m.wg.Add(1)
	go m.sweeper(ctx)
}

// Stop signals all workers and waits for in-flight tasks to finish.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()
	_ = level.Info(m.logger).Log("msg", "queue manager stopped")
}

// sweeper resets tasks stuck in processing (a worker died mid-task) so
// another worker can pick them up, and prunes old finished rows.
func (m *Manager) sweeper(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			stuckCutoff := time.Now().UTC().Add(-m.cfg.HardTimeout)
			res := m.db.Model(&models.EmailTask{}).
				Where("status = ? AND updated_at < ?", models.TaskProcessing, stuckCutoff).
				Updates(map[string]any{"status": models.TaskPending, "scheduled_for": time.Now().UTC()})
			if res.Error == nil && res.RowsAffected > 0 {
				_ = level.Warn(m.logger).Log("msg", "reset stuck processing tasks", "count", res.RowsAffected)
			}

			pruneCutoff := time.Now().UTC().AddDate(0, 0, -7)
			res = m.db.Where("status IN ? AND updated_at < ?",
				[]models.TaskStatus{models.TaskSent, models.TaskFailed}, pruneCutoff).
				Delete(&models.EmailTask{})
			if res.Error == nil && res.RowsAffected > 0 {
				_ = level.Info(m.logger).Log("msg", "pruned finished tasks", "count", res.RowsAffected)
			}
		}
	}
}
