package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the type of a notification
type NotificationType string

const (
	NotificationTypeTaskDue     NotificationType = "task_due"
	NotificationTypeTaskOverdue NotificationType = "task_overdue"
	NotificationTypeReminder    NotificationType = "reminder"
	NotificationTypeSystem      NotificationType = "system"
)

// Notification represents a notification delivered to a user
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	TaskID    *uuid.UUID       `json:"task_id,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}
