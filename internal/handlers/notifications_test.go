package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taskpilot/taskpilot/internal/models"
)

func newNotificationRouter(repo *fakeNotificationRepo) *mux.Router {
	r := mux.NewRouter()
	NewNotificationHandler(repo).RegisterRoutes(r.PathPrefix("/notifications").Subrouter())
	return r
}

func notificationFixture(user *models.User) (*models.Notification, *models.Notification) {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	unread := &models.Notification{
		ID:        uuid.New(),
		UserID:    user.ID,
		Title:     "Task due soon",
		Type:      models.NotificationTypeTaskDue,
		CreatedAt: base.Add(time.Hour),
	}
	read := &models.Notification{
		ID:        uuid.New(),
		UserID:    user.ID,
		Title:     "Welcome",
		Type:      models.NotificationTypeSystem,
		IsRead:    true,
		CreatedAt: base,
	}
	return unread, read
}

func TestListNotifications(t *testing.T) {
	t.Parallel()

	user := testUser()
	unread, read := notificationFixture(user)
	foreign := &models.Notification{ID: uuid.New(), UserID: uuid.New(), Title: "not yours", Type: models.NotificationTypeSystem}
	router := newNotificationRouter(newFakeNotificationRepo(unread, read, foreign))

	tests := []struct {
		name      string
		query     string
		wantCount float64
	}{
		{"all notifications", "", 2},
		{"unread only", "?unread=true", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, authedRequest(user, http.MethodGet, "/notifications"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}

			data := decodeData(t, rec)
			if data["count"] != tt.wantCount {
				t.Errorf("count = %v, want %v", data["count"], tt.wantCount)
			}
		})
	}
}

func TestMarkRead(t *testing.T) {
	t.Parallel()

	user := testUser()
	unread, _ := notificationFixture(user)
	repo := newFakeNotificationRepo(unread)
	router := newNotificationRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(user, http.MethodPost, "/notifications/"+unread.ID.String()+"/read", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if !repo.notifications[unread.ID].IsRead {
		t.Error("notification not marked read")
	}
	if repo.notifications[unread.ID].ReadAt == nil {
		t.Error("ReadAt not set")
	}
}

func TestMarkRead_NotOwned(t *testing.T) {
	t.Parallel()

	other := &models.Notification{ID: uuid.New(), UserID: uuid.New(), Title: "not yours", Type: models.NotificationTypeSystem}
	router := newNotificationRouter(newFakeNotificationRepo(other))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(testUser(), http.MethodPost, "/notifications/"+other.ID.String()+"/read", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMarkAllRead(t *testing.T) {
	t.Parallel()

	user := testUser()
	unread, read := notificationFixture(user)
	repo := newFakeNotificationRepo(unread, read)
	router := newNotificationRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(user, http.MethodPost, "/notifications/read-all", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	data := decodeData(t, rec)
	if data["marked_read"] != float64(1) {
		t.Errorf("marked_read = %v, want 1", data["marked_read"])
	}
}

func TestDeleteNotification(t *testing.T) {
	t.Parallel()

	user := testUser()
	unread, _ := notificationFixture(user)
	repo := newFakeNotificationRepo(unread)
	router := newNotificationRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(user, http.MethodDelete, "/notifications/"+unread.ID.String(), nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(repo.notifications) != 0 {
		t.Error("notification still present after delete")
	}
}
