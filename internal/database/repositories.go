package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskpilot/taskpilot/internal/models"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	CreateBatch(ctx context.Context, tasks []*models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*models.Task, error)
	GetRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Task, error)
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*models.Task, error)
	GetDueBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error)
	GetOverdue(ctx context.Context, now time.Time) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationRepositoryInterface defines the interface for notification repository operations
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	ExistsForTaskSince(ctx context.Context, taskID uuid.UUID, nType models.NotificationType, since time.Time) (bool, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface         = (*TaskRepository)(nil)
	_ UserRepositoryInterface         = (*UserRepository)(nil)
	_ NotificationRepositoryInterface = (*NotificationRepository)(nil)
)
