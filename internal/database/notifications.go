package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskpilot/taskpilot/internal/models"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, task_id, title, message, type, is_read, created_at, read_at`

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	var taskID any
	if n.TaskID != nil {
		taskID = *n.TaskID
	}

	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.UserID,
		taskID,
		n.Title,
		n.Message,
		n.Type,
		n.IsRead,
		time.Now(),
		nullableTime(n.ReadAt),
	).Scan(&n.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByUserID retrieves notifications for a user, newest first. When
// unreadOnly is set, read notifications are excluded.
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += " AND NOT is_read"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var taskID uuid.NullUUID
		var readAt sql.NullTime

		err := rows.Scan(
			&n.ID,
			&n.UserID,
			&taskID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.IsRead,
			&n.CreatedAt,
			&readAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if taskID.Valid {
			n.TaskID = &taskID.UUID
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}

		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead marks a notification as read, scoped to its owner
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	query := `UPDATE notifications SET is_read = TRUE, read_at = $3 WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

// MarkAllRead marks all of a user's notifications as read. Returns the
// number of notifications updated.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE user_id = $1 AND NOT is_read`

	result, err := r.db.ExecContext(ctx, query, userID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// ExistsForTaskSince reports whether a notification of the given type was
// already created for a task after the cutoff. Used to avoid duplicate
// reminders on repeated scans.
func (r *NotificationRepository) ExistsForTaskSince(ctx context.Context, taskID uuid.UUID, nType models.NotificationType, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM notifications WHERE task_id = $1 AND type = $2 AND created_at >= $3
	)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, taskID, nType, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check notification existence: %w", err)
	}

	return exists, nil
}

// Delete deletes a notification, scoped to its owner
func (r *NotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}
