package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taskpilot/taskpilot/internal/models"
)

func newAnalyticsRouter(repo *fakeTaskRepo) *mux.Router {
	r := mux.NewRouter()
	NewAnalyticsHandler(repo).RegisterRoutes(r.PathPrefix("/analytics").Subrouter())
	return r
}

func analyticsHistory(user *models.User) []*models.Task {
	created := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) // a Monday
	completed := time.Date(2024, 6, 4, 14, 30, 0, 0, time.UTC)
	overdue := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	return []*models.Task{
		{ID: uuid.New(), UserID: user.ID, Title: "done", Category: models.CategoryWork, Priority: 3, Status: models.TaskStatusCompleted, EstimatedDuration: 60, CreatedAt: created, UpdatedAt: completed},
		{ID: uuid.New(), UserID: user.ID, Title: "late", Category: models.CategoryWork, Priority: 4, Status: models.TaskStatusPending, DueDate: &overdue, EstimatedDuration: 30, CreatedAt: created, UpdatedAt: created},
		{ID: uuid.New(), UserID: user.ID, Title: "open", Category: models.CategoryHome, Priority: 2, Status: models.TaskStatusPending, EstimatedDuration: 30, CreatedAt: created.Add(24 * time.Hour), UpdatedAt: created},
	}
}

func TestProductivity(t *testing.T) {
	t.Parallel()

	user := testUser()
	router := newAnalyticsRouter(newFakeTaskRepo(analyticsHistory(user)...))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(user, http.MethodGet, "/analytics/productivity", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	data := decodeData(t, rec)
	if data["total_tasks"] != float64(3) {
		t.Errorf("total_tasks = %v, want 3", data["total_tasks"])
	}
	if data["completion_rate"] != 33.33 {
		t.Errorf("completion_rate = %v, want 33.33", data["completion_rate"])
	}

	breakdown, ok := data["category_breakdown"].(map[string]any)
	if !ok {
		t.Fatalf("category_breakdown missing: %v", data)
	}
	if breakdown["work"] != float64(2) {
		t.Errorf("work breakdown = %v, want 2", breakdown["work"])
	}
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	user := testUser()
	router := newAnalyticsRouter(newFakeTaskRepo(analyticsHistory(user)...))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(user, http.MethodGet, "/analytics/patterns", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	data := decodeData(t, rec)

	days, ok := data["day_of_week_pattern"].(map[string]any)
	if !ok {
		t.Fatalf("day_of_week_pattern missing: %v", data)
	}
	if days["Monday"] != float64(2) {
		t.Errorf("Monday count = %v, want 2", days["Monday"])
	}

	hours, ok := data["most_productive_hours"].([]any)
	if !ok {
		t.Fatalf("most_productive_hours missing: %v", data)
	}
	if len(hours) != 1 {
		t.Fatalf("most_productive_hours length = %d, want 1", len(hours))
	}
	top, _ := hours[0].(map[string]any)
	if top["hour"] != float64(14) {
		t.Errorf("top hour = %v, want 14", top["hour"])
	}
}

func TestInsights(t *testing.T) {
	t.Parallel()

	user := testUser()
	router := newAnalyticsRouter(newFakeTaskRepo(analyticsHistory(user)...))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(user, http.MethodGet, "/analytics/insights", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	data := decodeData(t, rec)
	insights, ok := data["insights"].([]any)
	if !ok {
		t.Fatalf("insights missing: %v", data)
	}
	if data["total_insights"] != float64(len(insights)) {
		t.Errorf("total_insights = %v, want %d", data["total_insights"], len(insights))
	}

	var mentionsOverdue bool
	for _, raw := range insights {
		if s, ok := raw.(string); ok && strings.Contains(s, "overdue") {
			mentionsOverdue = true
		}
	}
	if !mentionsOverdue {
		t.Errorf("expected an overdue insight, got %v", insights)
	}
}

func TestAnalytics_EmptyHistory(t *testing.T) {
	t.Parallel()

	user := testUser()
	router := newAnalyticsRouter(newFakeTaskRepo())

	for _, path := range []string{"/analytics/productivity", "/analytics/patterns", "/analytics/insights"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(user, http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
