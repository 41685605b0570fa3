package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/taskpilot/taskpilot/internal/database"
	"github.com/taskpilot/taskpilot/internal/models"
)

// NotificationHandler handles notification-related requests
type NotificationHandler struct {
	notificationRepo database.NotificationRepositoryInterface
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationRepo database.NotificationRepositoryInterface) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// RegisterRoutes registers notification routes on the given router
// The router should already have the /notifications prefix
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotifications).Methods("GET")
	r.HandleFunc("/read-all", h.MarkAllRead).Methods("POST")
	r.HandleFunc("/{id}/read", h.MarkRead).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteNotification).Methods("DELETE")
}

// ListNotificationsResponse represents the response for listing notifications
type ListNotificationsResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Count         int                    `json:"count"`
}

// MarkAllReadResponse reports how many notifications were marked read
type MarkAllReadResponse struct {
	MarkedRead int64 `json:"marked_read"`
}

// ListNotifications lists notifications for the authenticated user, newest first
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notificationRepo.GetByUserID(r.Context(), user.ID, unreadOnly)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notifications")
		return
	}

	respondJSON(w, http.StatusOK, ListNotificationsResponse{
		Notifications: notifications,
		Count:         len(notifications),
	})
}

// MarkRead marks a single notification as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	id, ok := parseUUIDVar(w, r, "id")
	if !ok {
		return
	}

	if err := h.notificationRepo.MarkRead(r.Context(), user.ID, id, time.Now().UTC()); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead marks every unread notification for the user as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	marked, err := h.notificationRepo.MarkAllRead(r.Context(), user.ID, time.Now().UTC())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to mark notifications read")
		return
	}

	respondJSON(w, http.StatusOK, MarkAllReadResponse{MarkedRead: marked})
}

// DeleteNotification deletes a notification
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	id, ok := parseUUIDVar(w, r, "id")
	if !ok {
		return
	}

	if err := h.notificationRepo.Delete(r.Context(), user.ID, id); err != nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Notification not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
