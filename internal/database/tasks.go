package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/taskpilot/taskpilot/internal/models"
)

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, category, priority, status, due_date, estimated_duration, tags, confidence_score, suggested_category, created_at, updated_at`

// TaskFilter narrows GetByUserID results. Nil fields are not applied.
type TaskFilter struct {
	Category *models.Category
	Status   *models.TaskStatus
	Priority *int
	// Limit caps the result set when > 0; Offset skips rows for pagination
	Limit  int
	Offset int
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	tagsJSON, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Category,
		task.Priority,
		task.Status,
		nullableTime(task.DueDate),
		task.EstimatedDuration,
		tagsJSON,
		task.ConfidenceScore,
		task.SuggestedCategory,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// CreateBatch creates several tasks in a single transaction
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	for _, task := range tasks {
		tagsJSON, err := json.Marshal(task.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}

		err = tx.QueryRowContext(ctx, query,
			task.ID,
			task.UserID,
			task.Title,
			task.Description,
			task.Category,
			task.Priority,
			task.Status,
			nullableTime(task.DueDate),
			task.EstimatedDuration,
			tagsJSON,
			task.ConfidenceScore,
			task.SuggestedCategory,
			now,
			now,
		).Scan(&task.CreatedAt, &task.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create task in batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// GetByUserID retrieves all tasks for a user, optionally filtered
func (r *TaskRepository) GetByUserID(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, string(*filter.Category))
		argIndex++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.Priority != nil {
		query += fmt.Sprintf(" AND priority = $%d", argIndex)
		args = append(args, *filter.Priority)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	return r.queryTasks(ctx, query, args...)
}

// GetRecentByUserID retrieves the most recently created tasks for a user
func (r *TaskRepository) GetRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	return r.queryTasks(ctx, query, userID, limit)
}

// GetByIDs retrieves tasks by ID, scoped to a user
func (r *TaskRepository) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND id = ANY($2)`

	idStrs := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrs = append(idStrs, id.String())
	}

	return r.queryTasks(ctx, query, userID, pq.Array(idStrs))
}

// GetDueBetween retrieves pending and in-progress tasks with a due date inside
// the window, across all users. Used by the due-date scan worker.
func (r *TaskRepository) GetDueBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date IS NOT NULL AND due_date >= $1 AND due_date < $2
		AND status IN ($3, $4)
		ORDER BY due_date ASC`

	return r.queryTasks(ctx, query, from, to, models.TaskStatusPending, models.TaskStatusInProgress)
}

// GetOverdue retrieves pending and in-progress tasks whose due date has passed
func (r *TaskRepository) GetOverdue(ctx context.Context, now time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE due_date IS NOT NULL AND due_date < $1
		AND status IN ($2, $3)
		ORDER BY due_date ASC`

	return r.queryTasks(ctx, query, now, models.TaskStatusPending, models.TaskStatusInProgress)
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, category = $4, priority = $5, status = $6,
			due_date = $7, estimated_duration = $8, tags = $9, confidence_score = $10,
			suggested_category = $11, updated_at = $12
		WHERE id = $1
		RETURNING updated_at
	`

	tagsJSON, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	now := time.Now()
	err = r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Category,
		task.Priority,
		task.Status,
		nullableTime(task.DueDate),
		task.EstimatedDuration,
		tagsJSON,
		task.ConfidenceScore,
		task.SuggestedCategory,
		now,
	).Scan(&task.UpdatedAt)

	if err == sql.ErrNoRows {
		return fmt.Errorf("task not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete deletes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("task not found")
	}

	return nil
}

// DeleteBatch deletes several tasks by ID, scoped to a user. Returns the
// number of tasks actually deleted.
func (r *TaskRepository) DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	idStrs := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrs = append(idStrs, id.String())
	}

	query := `DELETE FROM tasks WHERE user_id = $1 AND id = ANY($2)`
	result, err := r.db.ExecContext(ctx, query, userID, pq.Array(idStrs))
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var tagsJSON []byte
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Category,
		&task.Priority,
		&task.Status,
		&dueDate,
		&task.EstimatedDuration,
		&tagsJSON,
		&task.ConfidenceScore,
		&task.SuggestedCategory,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsJSON, &task.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}

	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}

	return task, nil
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
