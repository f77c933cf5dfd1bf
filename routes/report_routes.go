package routes

import (
	"github.com/gorilla/mux"
	"p9e.in/slf/handlers"
)

// RegisterReportRoutes wires report CRUD, the approval chain endpoints
// and data exports under /api/v1.
//
// Approval identity is the principal's own role; the role path segment
// states which chain step the caller intends to act as, and the engine
// rejects a mismatch. Route-level role guards would duplicate that
// check, so the endpoints rely on the engine alone.
func RegisterReportRoutes(api *mux.Router) {
	h := handlers.NewReportHandler()
	ex := handlers.NewExportHandler()

	api.HandleFunc("/reports", h.ListReports).Methods("GET")
	api.HandleFunc("/reports", h.CreateReport).Methods("POST")
	api.HandleFunc("/reports/{id}", h.GetReport).Methods("GET")
	api.HandleFunc("/reports/{id}/submit", h.SubmitReport).Methods("POST")
	api.HandleFunc("/reports/{id}/resubmit", h.ResubmitReport).Methods("POST")

	api.HandleFunc("/approvals/{reportId}/{role}/approve", h.ApproveReport).Methods("POST")
	api.HandleFunc("/approvals/{reportId}/{role}/reject", h.RejectReport).Methods("POST")

	api.HandleFunc("/exports/projects", ex.ExportProjectRegister).Methods("GET")
	api.HandleFunc("/exports/projects/{id}/inspections", ex.ExportProjectInspections).Methods("GET")
	api.HandleFunc("/exports/reports/{id}/audit", ex.ExportApprovalAuditCSV).Methods("GET")
}
