package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/models"
	"github.com/taskpilot/taskpilot/internal/planner"
	"github.com/taskpilot/taskpilot/internal/services/ai"
	"github.com/taskpilot/taskpilot/internal/validation"
)

// SuggestionHistoryLimit is how many recent tasks feed suggestion generation
const SuggestionHistoryLimit = 50

// AIHandler handles AI-assisted task operations
type AIHandler struct {
	aiService *ai.Service
	taskRepo  database.TaskRepositoryInterface
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService *ai.Service, taskRepo database.TaskRepositoryInterface) *AIHandler {
	return &AIHandler{aiService: aiService, taskRepo: taskRepo}
}

// RegisterRoutes registers AI routes on the given router
// The router should already have the /ai prefix (e.g., from apiRouter.PathPrefix("/ai"))
func (h *AIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/categorize", h.Categorize).Methods("POST")
	r.HandleFunc("/suggest-priority", h.SuggestPriority).Methods("POST")
	r.HandleFunc("/parse-natural", h.ParseNatural).Methods("POST")
	r.HandleFunc("/estimate-duration", h.EstimateDuration).Methods("POST")
	r.HandleFunc("/optimize-schedule", h.OptimizeSchedule).Methods("POST")
	r.HandleFunc("/suggestions", h.Suggestions).Methods("GET")
}

// TaskTextRequest carries the task fields AI endpoints operate on
type TaskTextRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"omitempty,max=10000"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ParseNaturalRequest represents a natural-language parse request
type ParseNaturalRequest struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

// OptimizeScheduleRequest represents a schedule optimization request
type OptimizeScheduleRequest struct {
	TaskIDs []string `json:"task_ids" validate:"required,min=1,max=100,dive,uuid"`
}

// OptimizeScheduleResponse represents the ordered schedule for the given tasks
type OptimizeScheduleResponse struct {
	OptimizedSchedule []planner.ScheduledTask `json:"optimized_schedule"`
}

// SuggestionsResponse represents generated task suggestions
type SuggestionsResponse struct {
	Suggestions []planner.Suggestion `json:"suggestions"`
}

// Categorize suggests a category for a task
func (h *AIHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	req, ok := decodeTaskText(w, r)
	if !ok {
		return
	}

	result := h.aiService.CategorizeTask(r.Context(), req.Title, req.Description)
	respondJSON(w, http.StatusOK, result)
}

// SuggestPriority suggests a priority for a task
func (h *AIHandler) SuggestPriority(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	req, ok := decodeTaskText(w, r)
	if !ok {
		return
	}

	result := h.aiService.SuggestPriority(r.Context(), req.Title, req.Description, req.DueDate, time.Now().UTC())
	respondJSON(w, http.StatusOK, result)
}

// ParseNatural extracts structured task fields from free-form text
func (h *AIHandler) ParseNatural(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req ParseNaturalRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	req.Text = validation.SanitizeText(req.Text)
	if req.Text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is required")
		return
	}
	if !validateRequest(w, req) {
		return
	}

	result := h.aiService.ParseNaturalLanguage(r.Context(), req.Text)
	respondJSON(w, http.StatusOK, result)
}

// EstimateDuration estimates how long a task will take, in minutes
func (h *AIHandler) EstimateDuration(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	req, ok := decodeTaskText(w, r)
	if !ok {
		return
	}

	result := h.aiService.EstimateDuration(r.Context(), req.Title, req.Description)
	respondJSON(w, http.StatusOK, result)
}

// OptimizeSchedule orders the given tasks into a suggested working schedule
func (h *AIHandler) OptimizeSchedule(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req OptimizeScheduleRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if len(req.TaskIDs) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "task_ids is required")
		return
	}
	if !validateRequest(w, req) {
		return
	}

	ids, ok := parseUUIDList(w, req.TaskIDs)
	if !ok {
		return
	}

	tasks, err := h.taskRepo.GetByIDs(r.Context(), user.ID, ids)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	history := derefTasks(tasks)
	schedule := planner.OptimizeSchedule(history, time.Now().UTC())

	respondJSON(w, http.StatusOK, OptimizeScheduleResponse{OptimizedSchedule: schedule})
}

// Suggestions proposes new tasks based on the user's recent history
func (h *AIHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	tasks, err := h.taskRepo.GetRecentByUserID(r.Context(), user.ID, SuggestionHistoryLimit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return
	}

	suggestions := planner.TaskSuggestions(derefTasks(tasks))

	respondJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

// decodeTaskText decodes and sanitizes the common title/description request body
func decodeTaskText(w http.ResponseWriter, r *http.Request) (*TaskTextRequest, bool) {
	var req TaskTextRequest
	if !decodeJSONBody(w, r, &req) {
		return nil, false
	}

	req.Title = validation.SanitizeText(req.Title)
	req.Description = validation.SanitizeText(req.Description)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required")
		return nil, false
	}
	if !validateRequest(w, req) {
		return nil, false
	}

	return &req, true
}

func derefTasks(tasks []*models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}
