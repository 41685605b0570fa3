package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/middleware"
	"github.com/taskpilot/taskpilot/internal/models"
)

// fakeTaskRepo is an in-memory TaskRepositoryInterface for handler tests
type fakeTaskRepo struct {
	tasks map[uuid.UUID]*models.Task
	err   error
}

func newFakeTaskRepo(tasks ...*models.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: make(map[uuid.UUID]*models.Task)}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}
	return repo
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	if f.err != nil {
		return f.err
	}
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) CreateBatch(_ context.Context, tasks []*models.Task) error {
	if f.err != nil {
		return f.err
	}
	for _, task := range tasks {
		f.tasks[task.ID] = task
	}
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task not found")
	}
	return task, nil
}

func (f *fakeTaskRepo) GetByUserID(_ context.Context, userID uuid.UUID, filter database.TaskFilter) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Task
	for _, task := range f.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Category != nil && task.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeTaskRepo) GetRecentByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Task, error) {
	tasks, err := f.GetByUserID(ctx, userID, database.TaskFilter{})
	if err != nil {
		return nil, err
	}
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (f *fakeTaskRepo) GetByIDs(_ context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Task
	for _, id := range ids {
		if task, ok := f.tasks[id]; ok && task.UserID == userID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) GetDueBetween(_ context.Context, from, to time.Time) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Task
	for _, task := range f.tasks {
		if task.DueDate == nil || task.Status == models.TaskStatusCompleted {
			continue
		}
		if task.DueDate.After(from) && task.DueDate.Before(to) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) GetOverdue(_ context.Context, now time.Time) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Task
	for _, task := range f.tasks {
		if task.IsOverdue(now) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	if f.err != nil {
		return f.err
	}
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) DeleteBatch(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var deleted int64
	for _, id := range ids {
		if task, ok := f.tasks[id]; ok && task.UserID == userID {
			delete(f.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

var _ database.TaskRepositoryInterface = (*fakeTaskRepo)(nil)

// fakeNotificationRepo is an in-memory NotificationRepositoryInterface
type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*models.Notification
	err           error
}

func newFakeNotificationRepo(notifications ...*models.Notification) *fakeNotificationRepo {
	repo := &fakeNotificationRepo{notifications: make(map[uuid.UUID]*models.Notification)}
	for _, n := range notifications {
		repo.notifications[n.ID] = n
	}
	return repo
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.notifications[n.ID] = n
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification not found")
	}
	n.IsRead = true
	n.ReadAt = &at
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var marked int64
	for _, n := range f.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &at
			marked++
		}
	}
	return marked, nil
}

func (f *fakeNotificationRepo) ExistsForTaskSince(_ context.Context, taskID uuid.UUID, nType models.NotificationType, since time.Time) (bool, error) {
	for _, n := range f.notifications {
		if n.TaskID != nil && *n.TaskID == taskID && n.Type == nType && n.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification not found")
	}
	delete(f.notifications, id)
	return nil
}

var _ database.NotificationRepositoryInterface = (*fakeNotificationRepo)(nil)

// fakeUserRepo is an in-memory UserRepositoryInterface
type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
	err   error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if f.err != nil {
		return f.err
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) RecordLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	if user, ok := f.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

var _ database.UserRepositoryInterface = (*fakeUserRepo)(nil)

// testUser returns a stable active user for handler tests
func testUser() *models.User {
	return &models.User{
		ID:       uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Email:    "test@example.com",
		IsActive: true,
	}
}

// authedRequest builds a request with the user already in context
func authedRequest(user *models.User, method, path string, body any) *http.Request {
	req := newTestRequest(method, path, body)
	return req.WithContext(middleware.SetUserInContext(req.Context(), user))
}
