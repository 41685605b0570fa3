package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/models"
	"github.com/taskpilot/taskpilot/internal/planner"
)

// AnalyticsHandler serves productivity analytics derived from task history
type AnalyticsHandler struct {
	taskRepo database.TaskRepositoryInterface
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(taskRepo database.TaskRepositoryInterface) *AnalyticsHandler {
	return &AnalyticsHandler{taskRepo: taskRepo}
}

// RegisterRoutes registers analytics routes on the given router
// The router should already have the /analytics prefix
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/productivity", h.Productivity).Methods("GET")
	r.HandleFunc("/patterns", h.Patterns).Methods("GET")
	r.HandleFunc("/insights", h.Insights).Methods("GET")
}

// InsightsResponse represents generated productivity insights
type InsightsResponse struct {
	Insights      []string `json:"insights"`
	TotalInsights int      `json:"total_insights"`
}

// Productivity returns productivity metrics for the user's full task history
func (h *AnalyticsHandler) Productivity(w http.ResponseWriter, r *http.Request) {
	history, ok := h.loadHistory(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, planner.ComputeMetrics(history))
}

// Patterns returns temporal usage patterns for the user's full task history
func (h *AnalyticsHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	history, ok := h.loadHistory(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, planner.ComputeUsagePatterns(history))
}

// Insights returns human-readable observations about the user's task history
func (h *AnalyticsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	history, ok := h.loadHistory(w, r)
	if !ok {
		return
	}

	insights := planner.GenerateInsights(history, time.Now().UTC())

	respondJSON(w, http.StatusOK, InsightsResponse{
		Insights:      insights,
		TotalInsights: len(insights),
	})
}

func (h *AnalyticsHandler) loadHistory(w http.ResponseWriter, r *http.Request) ([]models.Task, bool) {
	user := requireUser(w, r)
	if user == nil {
		return nil, false
	}

	tasks, err := h.taskRepo.GetByUserID(r.Context(), user.ID, database.TaskFilter{})
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve tasks")
		return nil, false
	}

	return derefTasks(tasks), true
}
