package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/slf/handlers"
	"p9e.in/slf/middleware"
	"p9e.in/slf/pkg/workflow"
)

// RegisterProjectRoutes wires project CRUD, lifecycle and team
// management under /api/v1.
func RegisterProjectRoutes(api *mux.Router) {
	h := handlers.NewProjectHandler()

	adminRoles := []string{workflow.RoleAdminLead, workflow.RoleAdminTeam}
	teamManagerRoles := []string{workflow.RoleAdminLead, workflow.RoleAdminTeam, workflow.RoleHeadConsultant}
	transitionRoles := []string{
		workflow.RoleAdminLead, workflow.RoleAdminTeam,
		workflow.RoleHeadConsultant, workflow.RoleProjectLead,
	}

	api.HandleFunc("/projects", h.ListProjects).Methods("GET")
	api.Handle("/projects", middleware.RequireRole(adminRoles, http.HandlerFunc(h.CreateProject))).Methods("POST")
	api.HandleFunc("/projects/{id}", h.GetProject).Methods("GET")
	api.Handle("/projects/{id}", middleware.RequireRole(adminRoles, http.HandlerFunc(h.UpdateProject))).Methods("PUT")
	api.Handle("/projects/{id}/transition", middleware.RequireRole(transitionRoles, http.HandlerFunc(h.TransitionProject))).Methods("POST")

	api.HandleFunc("/projects/{id}/team", h.ListTeamMembers).Methods("GET")
	api.Handle("/projects/{id}/team", middleware.RequireRole(teamManagerRoles, http.HandlerFunc(h.AssignTeamMember))).Methods("POST")
	api.Handle("/projects/{id}/team/{memberId}", middleware.RequireRole(teamManagerRoles, http.HandlerFunc(h.RemoveTeamMember))).Methods("DELETE")
}
