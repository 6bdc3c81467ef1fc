package models

import (
	"time"

	"gorm.io/datatypes"
)

type TaskKind string

const (
	TaskBookingConfirmation TaskKind = "send_booking_confirmation_email"
	TaskBookingRequest      TaskKind = "send_booking_request_email"
	TaskBookingReminder     TaskKind = "send_booking_reminder_email"
	TaskBookingCancellation TaskKind = "send_booking_cancellation_email"
	TaskBulkPromotional     TaskKind = "send_bulk_promotional_emails"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskSent       TaskStatus = "sent"
	TaskFailed     TaskStatus = "failed"
)

// EmailTask is a durable queue row. Payload carries only flat primitive
// fields (ids, emails, ISO dates, decimal-as-string prices) so a task
// can execute in a different process than the request that enqueued it.
type EmailTask struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	Kind         TaskKind       `gorm:"size:50;not null" json:"kind"`
	Payload      datatypes.JSON `gorm:"not null" json:"payload"`
	Status       TaskStatus     `gorm:"size:20;default:'pending';index:idx_task_status_scheduled,priority:1" json:"status"`
	Attempts     int            `gorm:"default:0" json:"attempts"`
	MaxAttempts  int            `gorm:"default:3" json:"max_attempts"`
	ScheduledFor time.Time      `gorm:"index:idx_task_status_scheduled,priority:2" json:"scheduled_for"`
	NextRetryAt  *time.Time     `gorm:"index" json:"next_retry_at,omitempty"`
	LastError    string         `json:"last_error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
