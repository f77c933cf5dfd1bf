package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// NotificationHandler handles notification read-model operations.
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// GetNotifications retrieves notifications for the current user
// GET /api/v1/notifications?unread=true&limit=20&offset=0
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	notifications, err := notificationEmitter().GetNotificationsForUser(userID, unreadOnly, limit, offset)
	if err != nil {
		log.Printf("❌ Error fetching notifications: %v", err)
		http.Error(w, "failed to fetch notifications", http.StatusInternalServerError)
		return
	}

	unreadCount, _ := notificationEmitter().GetUnreadCount(userID)

	dtos := make([]models.NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = n.ToDTO()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"notifications": dtos,
		"count":         len(dtos),
		"unread_count":  unreadCount,
	})
}

// GetUnreadCount returns the badge counter. Clients poll this; the push
// channel only tells them when to poll again.
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	count, err := notificationEmitter().GetUnreadCount(userID)
	if err != nil {
		http.Error(w, "failed to fetch unread count", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]int64{"unread_count": count})
}

// MarkNotificationRead marks one notification as read.
// POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	notifID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}

	if err := notificationEmitter().MarkAsRead(userID, notifID); err != nil {
		http.Error(w, err.Error(), workflow.StatusCode(err))
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "notification marked as read"})
}

// MarkAllNotificationsRead marks every unread notification as read.
// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	updated, err := notificationEmitter().MarkAllAsRead(userID)
	if err != nil {
		http.Error(w, "failed to mark notifications read", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "notifications marked as read",
		"updated": updated,
	})
}
