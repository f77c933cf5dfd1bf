package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/slf/handlers"
	"p9e.in/slf/middleware"
	"p9e.in/slf/pkg/workflow"
)

// RegisterInspectionRoutes wires site visits, photos and checklists
// under /api/v1.
func RegisterInspectionRoutes(api *mux.Router) {
	h := handlers.NewInspectionHandler()
	cl := handlers.NewChecklistHandler()

	schedulerRoles := []string{
		workflow.RoleAdminLead, workflow.RoleAdminTeam,
		workflow.RoleHeadConsultant, workflow.RoleProjectLead,
	}
	fieldRoles := []string{workflow.RoleInspector}
	uploadRoles := []string{workflow.RoleInspector, workflow.RoleDrafter, workflow.RoleProjectLead}

	api.HandleFunc("/inspections", h.ListInspections).Methods("GET")
	api.Handle("/inspections", middleware.RequireRole(schedulerRoles, http.HandlerFunc(h.ScheduleInspection))).Methods("POST")
	api.HandleFunc("/inspections/{id}", h.GetInspection).Methods("GET")
	api.Handle("/inspections/{id}/start", middleware.RequireRole(fieldRoles, http.HandlerFunc(h.StartInspection))).Methods("POST")
	api.Handle("/inspections/{id}/complete", middleware.RequireRole(fieldRoles, http.HandlerFunc(h.CompleteInspection))).Methods("POST")
	api.Handle("/inspections/{id}/cancel", middleware.RequireRole(schedulerRoles, http.HandlerFunc(h.CancelInspection))).Methods("POST")
	api.Handle("/inspections/{id}/photos", middleware.RequireRole(uploadRoles, http.HandlerFunc(h.AddPhoto))).Methods("POST")

	api.HandleFunc("/checklists/{template}", cl.ListChecklistItems).Methods("GET")
	api.HandleFunc("/inspections/{id}/responses", cl.ListResponses).Methods("GET")
	api.Handle("/inspections/{id}/responses", middleware.RequireRole(fieldRoles, http.HandlerFunc(cl.SubmitResponses))).Methods("POST")
}
