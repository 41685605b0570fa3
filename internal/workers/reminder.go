package workers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/models"
	"github.com/taskpilot/taskpilot/internal/queue"
)

const (
	// DueSoonWindow is how far ahead the due scan looks for upcoming tasks
	DueSoonWindow = 24 * time.Hour
	// DedupeWindow suppresses repeat notifications for the same task and type
	DedupeWindow = 24 * time.Hour
	// baseRetryDelay is the starting delay for re-enqueued jobs
	baseRetryDelay = 30 * time.Second
)

// Reminder processes due-scan and reminder jobs, turning due and overdue
// tasks into notifications
type Reminder struct {
	taskRepo         database.TaskRepositoryInterface
	notificationRepo database.NotificationRepositoryInterface
	jobQueue         queue.JobQueue // For re-enqueueing jobs with delays
	logger           *zap.Logger
}

// NewReminder creates a new reminder worker
func NewReminder(
	taskRepo database.TaskRepositoryInterface,
	notificationRepo database.NotificationRepositoryInterface,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Reminder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reminder{
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
		jobQueue:         jobQueue,
		logger:           logger,
	}
}

// ProcessDueScanJob scans for tasks that are due soon or overdue and creates
// a notification for each. Notifications already sent within the dedupe
// window are skipped, so the scan is safe to run on a short interval.
func (r *Reminder) ProcessDueScanJob(ctx context.Context, job *queue.Job) error {
	now := time.Now().UTC()

	dueSoon, err := r.taskRepo.GetDueBetween(ctx, now, now.Add(DueSoonWindow))
	if err != nil {
		return fmt.Errorf("failed to get due tasks: %w", err)
	}

	overdue, err := r.taskRepo.GetOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to get overdue tasks: %w", err)
	}

	created := 0
	for _, task := range dueSoon {
		ok, err := r.notifyTask(ctx, task, models.NotificationTypeTaskDue, now)
		if err != nil {
			r.logger.Warn("due_notification_failed",
				zap.String("task_id", task.ID.String()),
				zap.Error(err))
			continue
		}
		if ok {
			created++
		}
	}
	for _, task := range overdue {
		ok, err := r.notifyTask(ctx, task, models.NotificationTypeTaskOverdue, now)
		if err != nil {
			r.logger.Warn("overdue_notification_failed",
				zap.String("task_id", task.ID.String()),
				zap.Error(err))
			continue
		}
		if ok {
			created++
		}
	}

	r.logger.Info("due_scan_completed",
		zap.Int("due_soon", len(dueSoon)),
		zap.Int("overdue", len(overdue)),
		zap.Int("notifications_created", created))
	return nil
}

// ProcessReminderJob creates a reminder notification for a single task
func (r *Reminder) ProcessReminderJob(ctx context.Context, job *queue.Job) error {
	if job.TaskID == nil {
		return fmt.Errorf("task_id is required for reminder job")
	}

	task, err := r.taskRepo.GetByID(ctx, *job.TaskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}

	// Verify task belongs to user
	if job.UserID != uuid.Nil && task.UserID != job.UserID {
		return fmt.Errorf("task does not belong to user")
	}

	// A reminder for finished work is just noise
	if task.Status == models.TaskStatusCompleted {
		r.logger.Debug("reminder_skipped_completed",
			zap.String("task_id", task.ID.String()))
		return nil
	}

	if _, err := r.notifyTask(ctx, task, models.NotificationTypeReminder, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// notifyTask creates a notification for the task unless one of the same type
// was already created within the dedupe window. Returns whether a
// notification was created.
func (r *Reminder) notifyTask(ctx context.Context, task *models.Task, nType models.NotificationType, now time.Time) (bool, error) {
	exists, err := r.notificationRepo.ExistsForTaskSince(ctx, task.ID, nType, now.Add(-DedupeWindow))
	if err != nil {
		return false, fmt.Errorf("failed to check existing notifications: %w", err)
	}
	if exists {
		return false, nil
	}

	taskID := task.ID
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    task.UserID,
		TaskID:    &taskID,
		Title:     notificationTitle(task, nType),
		Message:   notificationMessage(task, nType),
		Type:      nType,
		CreatedAt: now,
	}

	if err := r.notificationRepo.Create(ctx, notification); err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return true, nil
}

func notificationTitle(task *models.Task, nType models.NotificationType) string {
	switch nType {
	case models.NotificationTypeTaskDue:
		return "Task due soon: " + task.Title
	case models.NotificationTypeTaskOverdue:
		return "Task overdue: " + task.Title
	default:
		return "Reminder: " + task.Title
	}
}

func notificationMessage(task *models.Task, nType models.NotificationType) string {
	if task.DueDate == nil {
		return ""
	}
	due := task.DueDate.UTC().Format("Jan 2, 2006 15:04 MST")
	switch nType {
	case models.NotificationTypeTaskDue:
		return fmt.Sprintf("'%s' is due %s", task.Title, due)
	case models.NotificationTypeTaskOverdue:
		return fmt.Sprintf("'%s' was due %s", task.Title, due)
	default:
		return fmt.Sprintf("Don't forget '%s', due %s", task.Title, due)
	}
}

// ProcessJob processes a job based on its type
func (r *Reminder) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	// Check if job should be processed now (respect NotBefore)
	if !job.ShouldProcess() {
		r.logger.Debug("job_not_ready",
			zap.String("job_id", job.ID.String()),
			zap.Timep("not_before", job.NotBefore))
		if ackErr := msg.Ack(); ackErr != nil {
			r.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeDueScan:
		if err := r.ProcessDueScanJob(ctx, job); err != nil {
			return r.handleJobError(ctx, msg, job, err, "due scan")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	case queue.JobTypeReminder:
		if err := r.ProcessReminderJob(ctx, job); err != nil {
			return r.handleJobError(ctx, msg, job, err, "reminder")
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			r.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError retries failed jobs with a delayed re-enqueue, falling back
// to an immediate requeue when the queue is unavailable. Jobs that exhaust
// their retries go to the DLQ.
func (r *Reminder) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error, jobType string) error {
	if job.CanRetry() && r.jobQueue != nil {
		notBefore := time.Now().Add(retryDelay(job.RetryCount))
		delayedJob := &queue.Job{
			ID:         job.ID,
			Type:       job.Type,
			UserID:     job.UserID,
			TaskID:     job.TaskID,
			NotBefore:  &notBefore,
			NotAfter:   job.NotAfter,
			Metadata:   job.Metadata,
			CreatedAt:  job.CreatedAt,
			RetryCount: job.RetryCount + 1,
			MaxRetries: job.MaxRetries,
		}

		if ackErr := msg.Ack(); ackErr != nil {
			r.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}

		if enqueueErr := r.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
			r.logger.Warn("job_reenqueue_failed",
				zap.String("job_id", job.ID.String()),
				zap.Error(enqueueErr))
			return fmt.Errorf("%s failed, re-enqueue failed: %w", jobType, enqueueErr)
		}

		r.logger.Info("job_retry_scheduled",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("attempt", delayedJob.RetryCount),
			zap.Time("not_before", notBefore))
		return fmt.Errorf("%s failed (will retry): %w", jobType, err)
	}

	if job.CanRetry() {
		job.IncrementRetry()
		if nackErr := msg.Nack(true); nackErr != nil {
			r.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("%s failed (will retry): %w", jobType, err)
	}

	// Max retries exceeded, send to DLQ
	r.logger.Error("job_failed_permanently",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err))
	if nackErr := msg.Nack(false); nackErr != nil {
		r.logger.Warn("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("%s failed (max retries): %w", jobType, err)
}

// retryDelay doubles the delay per attempt, capped at 10 minutes
func retryDelay(retryCount int) time.Duration {
	delay := baseRetryDelay << uint(min(retryCount, 5))
	if delay > 10*time.Minute {
		delay = 10 * time.Minute
	}
	return delay
}
