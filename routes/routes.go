package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/slf/handlers"
	"p9e.in/slf/middleware"
	"p9e.in/slf/pkg/workflow"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.Handle("/token", middleware.JWTMiddleware(http.HandlerFunc(handlers.GetCurrentUser))).Methods("GET")
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.SecurityMiddleware)
	api.Use(middleware.JWTMiddleware)

	// User profile endpoint
	api.HandleFunc("/profile", handleProfile).Methods("GET")

	RegisterProjectRoutes(api)
	RegisterInspectionRoutes(api)
	RegisterReportRoutes(api)
	RegisterNotificationRoutes(api)
	RegisterDocumentRoutes(api)

	// =====================================================
	// Admin Routes (require an admin role)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	adminRoles := []string{workflow.RoleAdminLead, workflow.RoleAdminTeam}
	userAdmin := handlers.NewUserAdminHandler()
	admin.Handle("/users", middleware.RequireRole(adminRoles, http.HandlerFunc(userAdmin.ListUsers))).Methods("GET")
	admin.Handle("/users/{id}/approve", middleware.RequireRole(adminRoles, http.HandlerFunc(userAdmin.ApproveUser))).Methods("POST")
	admin.Handle("/users/{id}/reject", middleware.RequireRole(adminRoles, http.HandlerFunc(userAdmin.RejectUser))).Methods("POST")
	admin.Handle("/users/{id}", middleware.RequireRole([]string{workflow.RoleAdminLead}, http.HandlerFunc(userAdmin.DeleteUser))).Methods("DELETE")

	return r
}

// handleProfile returns user profile information
func handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user := middleware.GetUser(r)

	role, route := workflow.ResolveRoute(user.Role)
	response := map[string]interface{}{
		"userID": claims.UserID,
		"name":   user.Name,
		"email":  user.Email,
		"role":   role,
		"route":  route,
	}
	json.NewEncoder(w).Encode(response)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
