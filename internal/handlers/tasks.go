package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/models"
	"github.com/taskpilot/taskpilot/internal/planner"
	"github.com/taskpilot/taskpilot/internal/validation"
)

const (
	// MaxTaskTitleLength is the maximum length for a task title
	MaxTaskTitleLength = 200
	// MaxTaskDescriptionLength is the maximum length for a task description
	MaxTaskDescriptionLength = 10000
	// MaxBulkTasks is the maximum number of tasks per bulk operation
	MaxBulkTasks = 100
	// MaxListLimit is the maximum page size for task listings
	MaxListLimit = 500
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskRepo database.TaskRepositoryInterface
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo}
}

// RegisterRoutes registers task routes on the given router
// The router should already have the /tasks prefix (e.g., from apiRouter.PathPrefix("/tasks"))
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/statistics", h.TaskStatistics).Methods("GET")
	r.HandleFunc("/bulk-create", h.BulkCreateTasks).Methods("POST")
	r.HandleFunc("/bulk-update", h.BulkUpdateTasks).Methods("POST")
	r.HandleFunc("/bulk-delete", h.BulkDeleteTasks).Methods("DELETE")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods("POST")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title             string     `json:"title" validate:"required,min=1,max=200"`
	Description       string     `json:"description" validate:"omitempty,max=10000"`
	Category          string     `json:"category" validate:"omitempty,task_category"`
	Priority          int        `json:"priority" validate:"omitempty,min=1,max=5"`
	Status            string     `json:"status" validate:"omitempty,task_status"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	EstimatedDuration int        `json:"estimated_duration" validate:"omitempty,min=15,max=480"`
	Tags              []string   `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateTaskRequest represents a partial task update; nil fields are left unchanged
type UpdateTaskRequest struct {
	Title             *string    `json:"title,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Category          *string    `json:"category,omitempty"`
	Priority          *int       `json:"priority,omitempty"`
	Status            *string    `json:"status,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
}

// BulkCreateTasksRequest represents a bulk create request
type BulkCreateTasksRequest struct {
	Tasks []CreateTaskRequest `json:"tasks" validate:"required,min=1,max=100,dive"`
}

// BulkUpdateTasksRequest applies the same partial update to a set of tasks
type BulkUpdateTasksRequest struct {
	TaskIDs    []uuid.UUID       `json:"task_ids" validate:"required,min=1,max=100"`
	UpdateData UpdateTaskRequest `json:"update_data"`
}

// BulkDeleteTasksRequest represents a bulk delete request
type BulkDeleteTasksRequest struct {
	TaskIDs []uuid.UUID `json:"task_ids" validate:"required,min=1,max=100"`
}

// ListTasksResponse represents the response for listing tasks
type ListTasksResponse struct {
	Tasks []*models.Task `json:"tasks"`
	Count int            `json:"count"`
}

// BulkTasksResponse represents the response for bulk operations
type BulkTasksResponse struct {
	Message string         `json:"message"`
	Tasks   []*models.Task `json:"tasks,omitempty"`
}

// TaskStatisticsResponse represents aggregate task counts for the user
type TaskStatisticsResponse struct {
	planner.MetricsSnapshot
	OverdueTasks int `json:"overdue_tasks"`
}

// ListTasks lists tasks for the authenticated user, newest first
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	ctx := r.Context()

	// Parse and validate filter parameters
	var filter database.TaskFilter
	if c := r.URL.Query().Get("category"); c != "" {
		if err := validation.ValidateCategory(c); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		category := models.Category(c)
		filter.Category = &category
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateTaskStatus(s); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		status := models.TaskStatus(s)
		filter.Status = &status
	}
	if p := r.URL.Query().Get("priority"); p != "" {
		priority, err := strconv.Atoi(p)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid priority")
			return
		}
		if err := validation.ValidatePriority(priority); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		filter.Priority = &priority
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 || limit > MaxListLimit {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Limit must be between 1 and %d", MaxListLimit))
			return
		}
		filter.Limit = limit
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		offset, err := strconv.Atoi(o)
		if err != nil || offset < 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Offset must be non-negative")
			return
		}
		filter.Offset = offset
	}

	tasks, err := h.taskRepo.GetByUserID(ctx, user.ID, filter)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	respondJSON(w, http.StatusOK, ListTasksResponse{Tasks: tasks, Count: len(tasks)})
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req CreateTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	task, err := buildTask(user.ID, &req)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.taskRepo.Create(r.Context(), task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to an existing task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := applyTaskUpdate(task, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	if err := h.taskRepo.Update(r.Context(), task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(r.Context(), task.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompleteTask marks a task as completed
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadOwnedTask(w, r)
	if !ok {
		return
	}

	task.Status = models.TaskStatusCompleted

	if err := h.taskRepo.Update(r.Context(), task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to complete task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// BulkCreateTasks creates multiple tasks in a single transaction
func (h *TaskHandler) BulkCreateTasks(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req BulkCreateTasksRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	tasks := make([]*models.Task, 0, len(req.Tasks))
	for i := range req.Tasks {
		task, err := buildTask(user.ID, &req.Tasks[i])
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Task %d: %s", i, err.Error()))
			return
		}
		tasks = append(tasks, task)
	}

	if err := h.taskRepo.CreateBatch(r.Context(), tasks); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create tasks")
		return
	}

	respondJSON(w, http.StatusCreated, BulkTasksResponse{
		Message: fmt.Sprintf("%d tasks created successfully", len(tasks)),
		Tasks:   tasks,
	})
}

// BulkUpdateTasks applies the same partial update to every listed task the
// user owns; IDs belonging to other users are silently skipped
func (h *TaskHandler) BulkUpdateTasks(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req BulkUpdateTasksRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	ctx := r.Context()
	tasks, err := h.taskRepo.GetByIDs(ctx, user.ID, req.TaskIDs)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	for _, task := range tasks {
		if err := applyTaskUpdate(task, &req.UpdateData); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		if err := h.taskRepo.Update(ctx, task); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update tasks")
			return
		}
	}

	respondJSON(w, http.StatusOK, BulkTasksResponse{
		Message: fmt.Sprintf("%d tasks updated successfully", len(tasks)),
		Tasks:   tasks,
	})
}

// BulkDeleteTasks deletes every listed task the user owns
func (h *TaskHandler) BulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req BulkDeleteTasksRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !validateRequest(w, req) {
		return
	}

	deleted, err := h.taskRepo.DeleteBatch(r.Context(), user.ID, req.TaskIDs)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete tasks")
		return
	}

	respondJSON(w, http.StatusOK, BulkTasksResponse{
		Message: fmt.Sprintf("%d tasks deleted successfully", deleted),
	})
}

// TaskStatistics returns aggregate counts for the user's task history
func (h *TaskHandler) TaskStatistics(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	tasks, err := h.taskRepo.GetByUserID(r.Context(), user.ID, database.TaskFilter{})
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	now := time.Now().UTC()
	overdue := 0
	history := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.IsOverdue(now) {
			overdue++
		}
		history = append(history, *task)
	}

	respondJSON(w, http.StatusOK, TaskStatisticsResponse{
		MetricsSnapshot: planner.ComputeMetrics(history),
		OverdueTasks:    overdue,
	})
}

// loadOwnedTask resolves the {id} path variable to a task owned by the
// authenticated user, writing the appropriate error response on failure
func (h *TaskHandler) loadOwnedTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	user := requireUser(w, r)
	if user == nil {
		return nil, false
	}

	id, ok := parseUUIDVar(w, r, "id")
	if !ok {
		return nil, false
	}

	task, err := h.taskRepo.GetByID(r.Context(), id)
	if err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return nil, false
	}

	// Verify task belongs to user
	if task.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Task does not belong to user")
		return nil, false
	}

	return task, true
}

// validateRequest runs struct validation and writes a 400 response on failure
func validateRequest(w http.ResponseWriter, req any) bool {
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}

// buildTask constructs a task from a validated create request, applying
// defaults for fields the request omits
func buildTask(userID uuid.UUID, req *CreateTaskRequest) (*models.Task, error) {
	title := validation.SanitizeText(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required and cannot be empty after sanitization")
	}
	if len(title) > MaxTaskTitleLength {
		return nil, fmt.Errorf("title exceeds maximum length of %d characters", MaxTaskTitleLength)
	}

	task := &models.Task{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             title,
		Description:       validation.SanitizeText(req.Description),
		Category:          models.CategoryPersonal,
		Priority:          models.DefaultPriority,
		Status:            models.TaskStatusPending,
		DueDate:           req.DueDate,
		EstimatedDuration: models.DefaultDurationMinutes,
		Tags:              req.Tags,
	}

	if req.Category != "" {
		task.Category = models.Category(req.Category)
	}
	if req.Priority != 0 {
		task.Priority = req.Priority
	}
	if req.Status != "" {
		task.Status = models.TaskStatus(req.Status)
	}
	if req.EstimatedDuration != 0 {
		task.EstimatedDuration = req.EstimatedDuration
	}

	return task, nil
}

// applyTaskUpdate applies the non-nil fields of a partial update to a task
func applyTaskUpdate(task *models.Task, req *UpdateTaskRequest) error {
	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		if sanitized == "" {
			return fmt.Errorf("title cannot be empty after sanitization")
		}
		if len(sanitized) > MaxTaskTitleLength {
			return fmt.Errorf("title exceeds maximum length of %d characters", MaxTaskTitleLength)
		}
		task.Title = sanitized
	}
	if req.Description != nil {
		sanitized := validation.SanitizeText(*req.Description)
		if len(sanitized) > MaxTaskDescriptionLength {
			return fmt.Errorf("description exceeds maximum length of %d characters", MaxTaskDescriptionLength)
		}
		task.Description = sanitized
	}
	if req.Category != nil {
		if err := validation.ValidateCategory(*req.Category); err != nil {
			return err
		}
		task.Category = models.Category(*req.Category)
	}
	if req.Priority != nil {
		if err := validation.ValidatePriority(*req.Priority); err != nil {
			return err
		}
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		if err := validation.ValidateTaskStatus(*req.Status); err != nil {
			return err
		}
		task.Status = models.TaskStatus(*req.Status)
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.EstimatedDuration != nil {
		minutes := *req.EstimatedDuration
		if minutes < models.MinDurationMinutes || minutes > models.MaxDurationMinutes {
			return fmt.Errorf("estimated_duration must be between %d and %d minutes", models.MinDurationMinutes, models.MaxDurationMinutes)
		}
		task.EstimatedDuration = minutes
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	return nil
}
