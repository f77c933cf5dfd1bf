package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/slf/handlers"
	"p9e.in/slf/middleware"
	"p9e.in/slf/pkg/workflow"
)

// RegisterDocumentRoutes wires project document storage under /api/v1.
func RegisterDocumentRoutes(api *mux.Router) {
	uploadRoles := []string{
		workflow.RoleAdminLead, workflow.RoleAdminTeam,
		workflow.RoleHeadConsultant, workflow.RoleProjectLead, workflow.RoleDrafter,
	}
	adminRoles := []string{workflow.RoleAdminLead, workflow.RoleAdminTeam}

	api.HandleFunc("/projects/{id}/documents", handlers.ListProjectDocuments).Methods("GET")
	api.Handle("/projects/{id}/documents", middleware.RequireRole(uploadRoles, http.HandlerFunc(handlers.UploadProjectDocument))).Methods("POST")
	api.Handle("/documents/{id}", middleware.RequireRole(adminRoles, http.HandlerFunc(handlers.DeleteProjectDocument))).Methods("DELETE")
}
