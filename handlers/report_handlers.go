package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/slf/config"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// ReportHandler handles report CRUD and the approval chain endpoints.
type ReportHandler struct{}

func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

type createReportReq struct {
	ProjectID       uuid.UUID  `json:"project_id"`
	InspectionID    *uuid.UUID `json:"inspection_id,omitempty"`
	Title           string     `json:"title"`
	Findings        string     `json:"findings,omitempty"`
	Recommendations string     `json:"recommendations,omitempty"`
	AttachmentURLs  []string   `json:"attachment_urls,omitempty"`
}

// CreateReport creates a draft report on an assigned project.
// POST /api/v1/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createReportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectID == uuid.Nil || req.Title == "" {
		http.Error(w, "project_id and title are required", http.StatusBadRequest)
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "id = ?", req.ProjectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	// Authors must hold an active assignment on the project.
	role, _ := workflow.CanonicalRole(user.Role)
	if workflow.ScopeFor(role) != workflow.ScopeAll &&
		!middleware.IsProjectTeamMember(project.ID, user.ID, "") {
		http.Error(w, "not assigned to this project", http.StatusForbidden)
		return
	}

	report := models.Report{
		ProjectID:       req.ProjectID,
		InspectionID:    req.InspectionID,
		AuthorID:        user.ID,
		Title:           req.Title,
		Findings:        req.Findings,
		Recommendations: req.Recommendations,
		AttachmentURLs:  req.AttachmentURLs,
		Status:          workflow.ReportStatusDraft,
	}
	if err := config.DB.Create(&report).Error; err != nil {
		http.Error(w, "failed to create report", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Created report %s on project %s by %s", report.ID, project.ID, user.Name)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(report)
}

// ListReports returns the reports visible to the principal.
// GET /api/v1/reports?project_id=...&status=...
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	role, _ := workflow.CanonicalRole(user.Role)
	q := config.DB.Model(&models.Report{}).
		Scopes(workflow.ReportScope(role, user.ID, user.ClientID)).
		Order("reports.created_at DESC")

	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		q = q.Where("reports.project_id = ?", projectID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		if !workflow.ValidReportStatus(status) {
			http.Error(w, "unknown report status", http.StatusBadRequest)
			return
		}
		q = q.Where("reports.status = ?", status)
	}

	var reports []models.Report
	if err := q.Find(&reports).Error; err != nil {
		http.Error(w, "failed to fetch reports", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// GetReport returns one report with its approval history.
// GET /api/v1/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	role, _ := workflow.CanonicalRole(user.Role)
	var report models.Report
	if err := config.DB.
		Scopes(workflow.ReportScope(role, user.ID, user.ClientID)).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&report, "reports.id = ?", reportID).Error; err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	// Tell the caller whose turn it is, so the UI can hide dead buttons.
	expected, _ := workflow.ExpectedRole(report.Status)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"report":        report,
		"expected_role": expected,
	})
}

// SubmitReport moves a draft into the approval chain.
// POST /api/v1/reports/{id}/submit
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	report, err := NewApprovalEngine().Submit(reportID, user)
	if err != nil {
		http.Error(w, err.Error(), workflow.StatusCode(err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "report submitted",
		"newStatus": report.Status,
	})
}

// ResubmitReport clones a rejected report into a fresh draft with a new
// chain.
// POST /api/v1/reports/{id}/resubmit
func (h *ReportHandler) ResubmitReport(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	clone, err := NewApprovalEngine().Resubmit(reportID, user)
	if err != nil {
		http.Error(w, err.Error(), workflow.StatusCode(err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "report resubmitted",
		"report":  clone,
	})
}

type approvalReq struct {
	Comment string `json:"comment,omitempty"`
}

// ApproveReport records an approval by the role in the path.
// POST /api/v1/approvals/{reportId}/{role}/approve
func (h *ReportHandler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	h.approvalAction(w, r, workflow.ActionApprove)
}

// RejectReport records a rejection by the role in the path; the chain is
// terminal afterwards.
// POST /api/v1/approvals/{reportId}/{role}/reject
func (h *ReportHandler) RejectReport(w http.ResponseWriter, r *http.Request) {
	h.approvalAction(w, r, workflow.ActionReject)
}

func (h *ReportHandler) approvalAction(w http.ResponseWriter, r *http.Request, action string) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	reportID, err := uuid.Parse(vars["reportId"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	role, ok := workflow.CanonicalRole(vars["role"])
	if !ok {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	var req approvalReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}

	report, err := NewApprovalEngine().Transition(reportID, user, role, action, req.Comment)
	if err != nil {
		log.Printf("❌ Approval action failed on report %s: %v", reportID, err)
		http.Error(w, err.Error(), workflow.StatusCode(err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "report " + action + " recorded",
		"newStatus": report.Status,
	})
}
