package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/slf/config"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
	"p9e.in/slf/utils"
)

// InspectionHandler manages site visits and their photos.
type InspectionHandler struct{}

func NewInspectionHandler() *InspectionHandler {
	return &InspectionHandler{}
}

type scheduleInspectionReq struct {
	ProjectID      uuid.UUID `json:"project_id"`
	InspectorID    uuid.UUID `json:"inspector_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
}

// ScheduleInspection books a site visit for an inspector on the project
// team.
// POST /api/v1/inspections
func (h *InspectionHandler) ScheduleInspection(w http.ResponseWriter, r *http.Request) {
	var req scheduleInspectionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectID == uuid.Nil || req.InspectorID == uuid.Nil {
		http.Error(w, "project_id and inspector_id are required", http.StatusBadRequest)
		return
	}
	if req.ScheduledStart.IsZero() || req.ScheduledEnd.IsZero() || !req.ScheduledEnd.After(req.ScheduledStart) {
		http.Error(w, "scheduled_end must be after scheduled_start", http.StatusBadRequest)
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "id = ?", req.ProjectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if workflow.TerminalProjectStatus(project.Status) {
		http.Error(w, "project is closed", http.StatusConflict)
		return
	}
	if !middleware.IsProjectTeamMember(req.ProjectID, req.InspectorID, workflow.RoleInspector) {
		http.Error(w, "inspector is not assigned to this project", http.StatusBadRequest)
		return
	}

	inspection := models.Inspection{
		ProjectID:      req.ProjectID,
		InspectorID:    req.InspectorID,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		Status:         models.InspectionStatusScheduled,
	}
	if err := config.DB.Create(&inspection).Error; err != nil {
		http.Error(w, "failed to schedule inspection", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Scheduled inspection %s on project %s", inspection.ID, project.Code)

	// First booking moves the project into fieldwork.
	if project.Status == workflow.ProjectStatusProjectLeadReview {
		res := config.DB.Model(&models.Project{}).
			Where("id = ? AND status = ?", project.ID, workflow.ProjectStatusProjectLeadReview).
			Update("status", workflow.ProjectStatusInspectionInProgress)
		if res.Error == nil && res.RowsAffected > 0 {
			project.Status = workflow.ProjectStatusInspectionInProgress
			notificationEmitter().EmitProjectStatus(&project, project.Status)
		}
	}

	notificationEmitter().EmitInspectionScheduled(&inspection, project.Name)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inspection)
}

// ListInspections returns inspections on projects visible to the
// principal.
// GET /api/v1/inspections?project_id=...&status=...
func (h *InspectionHandler) ListInspections(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	role, _ := workflow.CanonicalRole(user.Role)
	q := config.DB.Model(&models.Inspection{}).
		Joins("JOIN projects ON projects.id = inspections.project_id").
		Scopes(workflow.InspectionScope(role, user.ID, user.ClientID)).
		Preload("Inspector").
		Order("inspections.scheduled_start DESC")

	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		q = q.Where("inspections.project_id = ?", projectID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("inspections.status = ?", status)
	}

	var inspections []models.Inspection
	if err := q.Find(&inspections).Error; err != nil {
		http.Error(w, "failed to fetch inspections", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"inspections": inspections,
		"count":       len(inspections),
	})
}

// GetInspection returns one inspection with photos and checklist
// responses.
// GET /api/v1/inspections/{id}
func (h *InspectionHandler) GetInspection(w http.ResponseWriter, r *http.Request) {
	inspectionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := workflow.CanonicalRole(user.Role)

	// Out-of-scope rows read the same as missing ones.
	var inspection models.Inspection
	if err := config.DB.
		Joins("JOIN projects ON projects.id = inspections.project_id").
		Scopes(workflow.InspectionScope(role, user.ID, user.ClientID)).
		Preload("Inspector").
		Preload("Photos").
		Preload("Responses").
		Preload("Responses.Item").
		First(&inspection, "inspections.id = ?", inspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(inspection)
}

// StartInspection marks the visit as underway. Inspector only, and only
// the assigned inspector.
// POST /api/v1/inspections/{id}/start
func (h *InspectionHandler) StartInspection(w http.ResponseWriter, r *http.Request) {
	h.updateLifecycle(w, r, models.InspectionStatusScheduled, models.InspectionStatusInProgress,
		func(inspection *models.Inspection, now time.Time) map[string]interface{} {
			return map[string]interface{}{"status": models.InspectionStatusInProgress, "started_at": now}
		})
}

type completeInspectionReq struct {
	Summary string `json:"summary,omitempty"`
}

// CompleteInspection closes the visit and, when this was the last open
// inspection, advances the project into consultant review.
// POST /api/v1/inspections/{id}/complete
func (h *InspectionHandler) CompleteInspection(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	inspectionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	var req completeInspectionReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var inspection models.Inspection
	if err := config.DB.First(&inspection, "id = ?", inspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}
	if inspection.InspectorID != userID {
		http.Error(w, "only the assigned inspector can complete a visit", http.StatusForbidden)
		return
	}
	if inspection.Status != models.InspectionStatusInProgress {
		http.Error(w, "inspection is not in progress", http.StatusConflict)
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.Inspection{}).
		Where("id = ? AND status = ?", inspection.ID, models.InspectionStatusInProgress).
		Updates(map[string]interface{}{
			"status":       models.InspectionStatusCompleted,
			"completed_at": now,
			"summary":      req.Summary,
		})
	if res.Error != nil {
		http.Error(w, "failed to complete inspection", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "inspection changed concurrently, retry", http.StatusConflict)
		return
	}

	log.Printf("✅ Completed inspection %s", inspection.ID)
	h.advanceProjectAfterFieldwork(inspection.ProjectID)

	inspection.Status = models.InspectionStatusCompleted
	inspection.CompletedAt = &now
	inspection.Summary = req.Summary
	json.NewEncoder(w).Encode(inspection)
}

// CancelInspection cancels a visit that has not completed.
// POST /api/v1/inspections/{id}/cancel
func (h *InspectionHandler) CancelInspection(w http.ResponseWriter, r *http.Request) {
	inspectionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	var inspection models.Inspection
	if err := config.DB.First(&inspection, "id = ?", inspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}
	if inspection.Status == models.InspectionStatusCompleted ||
		inspection.Status == models.InspectionStatusCancelled {
		http.Error(w, "inspection already finished", http.StatusConflict)
		return
	}

	if err := config.DB.Model(&inspection).
		Update("status", models.InspectionStatusCancelled).Error; err != nil {
		http.Error(w, "failed to cancel inspection", http.StatusInternalServerError)
		return
	}

	log.Printf("⚠️ Cancelled inspection %s", inspection.ID)
	json.NewEncoder(w).Encode(map[string]string{"message": "inspection cancelled"})
}

type addPhotoReq struct {
	URL       string     `json:"url"`
	Caption   string     `json:"caption,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	TakenAt   *time.Time `json:"taken_at,omitempty"`
}

// AddPhoto attaches a photo to an inspection. The inspection reference
// is mandatory; geotagged photos are checked against the project site
// boundary.
// POST /api/v1/inspections/{id}/photos
func (h *InspectionHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	inspectionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	var req addPhotoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		http.Error(w, "latitude and longitude must be provided together", http.StatusBadRequest)
		return
	}

	var inspection models.Inspection
	if err := config.DB.Preload("Project").First(&inspection, "id = ?", inspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}
	if inspection.Status == models.InspectionStatusCancelled {
		http.Error(w, "inspection is cancelled", http.StatusConflict)
		return
	}

	if req.Latitude != nil && inspection.Project != nil {
		fence, err := utils.ParseGeofence(string(inspection.Project.SiteGeofence))
		if err != nil {
			log.Printf("⚠️ Unreadable site boundary on project %s: %v", inspection.ProjectID, err)
		} else if err := utils.CheckGeotag(fence, *req.Latitude, *req.Longitude); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	photo := models.InspectionPhoto{
		InspectionID: inspectionID,
		UploaderID:   userID,
		URL:          req.URL,
		Caption:      req.Caption,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		TakenAt:      req.TakenAt,
	}
	if err := config.DB.Create(&photo).Error; err != nil {
		http.Error(w, "failed to save photo", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(photo)
}

// updateLifecycle applies a guarded single-step inspection transition
// restricted to the assigned inspector.
func (h *InspectionHandler) updateLifecycle(
	w http.ResponseWriter, r *http.Request,
	from, to models.InspectionStatus,
	buildUpdates func(*models.Inspection, time.Time) map[string]interface{},
) {
	userID := middleware.PrincipalID(r)
	inspectionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	var inspection models.Inspection
	if err := config.DB.First(&inspection, "id = ?", inspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}
	if inspection.InspectorID != userID {
		http.Error(w, "only the assigned inspector can update a visit", http.StatusForbidden)
		return
	}
	if inspection.Status != from {
		http.Error(w, "inspection is not "+string(from), http.StatusConflict)
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.Inspection{}).
		Where("id = ? AND status = ?", inspection.ID, from).
		Updates(buildUpdates(&inspection, now))
	if res.Error != nil {
		http.Error(w, "failed to update inspection", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "inspection changed concurrently, retry", http.StatusConflict)
		return
	}

	inspection.Status = to
	json.NewEncoder(w).Encode(inspection)
}

// advanceProjectAfterFieldwork moves the project from fieldwork into
// consultant review once no scheduled or running inspections remain.
// Best effort; a skipped advance is recoverable through the project
// transition endpoint.
func (h *InspectionHandler) advanceProjectAfterFieldwork(projectID uuid.UUID) {
	var open int64
	if err := config.DB.Model(&models.Inspection{}).
		Where("project_id = ? AND status IN ?", projectID,
			[]models.InspectionStatus{models.InspectionStatusScheduled, models.InspectionStatusInProgress}).
		Count(&open).Error; err != nil || open > 0 {
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return
	}
	if project.Status != workflow.ProjectStatusInspectionInProgress {
		return
	}

	res := config.DB.Model(&models.Project{}).
		Where("id = ? AND status = ?", projectID, workflow.ProjectStatusInspectionInProgress).
		Update("status", workflow.ProjectStatusHeadConsultantReview)
	if res.Error != nil || res.RowsAffected == 0 {
		return
	}

	log.Printf("✅ Project %s advanced to %s after fieldwork", project.Code, workflow.ProjectStatusHeadConsultantReview)
	project.Status = workflow.ProjectStatusHeadConsultantReview
	notificationEmitter().EmitProjectStatus(&project, project.Status)
}
