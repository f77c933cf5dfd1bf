package routes

import (
	"github.com/gorilla/mux"
	"p9e.in/slf/handlers"
)

// RegisterNotificationRoutes wires the notification poll endpoints
// under /api/v1.
func RegisterNotificationRoutes(api *mux.Router) {
	h := handlers.NewNotificationHandler()

	api.HandleFunc("/notifications", h.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/unread-count", h.GetUnreadCount).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("POST")
	api.HandleFunc("/notifications/read-all", h.MarkAllNotificationsRead).Methods("POST")
}
