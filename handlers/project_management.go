package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/slf/config"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// ProjectHandler manages certification projects, their lifecycle and
// their team assignments.
type ProjectHandler struct{}

func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

type createProjectReq struct {
	Code             string         `json:"code"`
	Name             string         `json:"name"`
	ClientID         uuid.UUID      `json:"client_id"`
	BuildingFunction string         `json:"building_function,omitempty"`
	Address          string         `json:"address,omitempty"`
	IMBNumber        string         `json:"imb_number,omitempty"`
	FloorCount       int            `json:"floor_count,omitempty"`
	BuildingMeta     datatypes.JSON `json:"building_meta,omitempty"`
	SiteGeofence     datatypes.JSON `json:"site_geofence,omitempty"`
}

// CreateProject registers a new certification project. Admin only.
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createProjectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Code == "" || req.Name == "" || req.ClientID == uuid.Nil {
		http.Error(w, "code, name and client_id are required", http.StatusBadRequest)
		return
	}

	var client models.Client
	if err := config.DB.First(&client, "id = ?", req.ClientID).Error; err != nil {
		http.Error(w, "client not found", http.StatusNotFound)
		return
	}

	project := models.Project{
		Code:             req.Code,
		Name:             req.Name,
		ClientID:         req.ClientID,
		BuildingFunction: req.BuildingFunction,
		Address:          req.Address,
		IMBNumber:        req.IMBNumber,
		FloorCount:       req.FloorCount,
		BuildingMeta:     req.BuildingMeta,
		SiteGeofence:     req.SiteGeofence,
		Status:           workflow.ProjectStatusDraft,
		CreatedBy:        userID,
	}
	if err := config.DB.Create(&project).Error; err != nil {
		http.Error(w, "failed to create project (duplicate code?)", http.StatusConflict)
		return
	}

	log.Printf("✅ Created project %s (%s)", project.Code, project.ID)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(project)
}

// ListProjects returns the projects visible to the principal, each with
// its display phase.
// GET /api/v1/projects?status=...
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	role, _ := workflow.CanonicalRole(user.Role)
	q := config.DB.Model(&models.Project{}).
		Scopes(workflow.ProjectScope(role, user.ID, user.ClientID)).
		Preload("Client").
		Order("projects.created_at DESC")

	if status := r.URL.Query().Get("status"); status != "" {
		if !workflow.ValidProjectStatus(status) {
			http.Error(w, "unknown project status", http.StatusBadRequest)
			return
		}
		q = q.Where("projects.status = ?", status)
	}

	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		http.Error(w, "failed to fetch projects", http.StatusInternalServerError)
		return
	}

	dtos := make([]models.ProjectDTO, 0, len(projects))
	for i := range projects {
		dtos = append(dtos, projectToDTO(&projects[i]))
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"projects": dtos,
		"count":    len(dtos),
	})
}

// GetProject returns one project with team, inspections and documents.
// GET /api/v1/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	role, _ := workflow.CanonicalRole(user.Role)
	var project models.Project
	if err := config.DB.
		Scopes(workflow.ProjectScope(role, user.ID, user.ClientID)).
		Preload("Client").
		Preload("TeamMembers", "is_active = ?", true).
		Preload("TeamMembers.User").
		Preload("Inspections").
		Preload("Documents").
		First(&project, "projects.id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"project": project,
		"phase":   workflow.ProjectPhase(project.Status),
	})
}

type updateProjectReq struct {
	Name             *string         `json:"name,omitempty"`
	BuildingFunction *string         `json:"building_function,omitempty"`
	Address          *string         `json:"address,omitempty"`
	IMBNumber        *string         `json:"imb_number,omitempty"`
	FloorCount       *int            `json:"floor_count,omitempty"`
	BuildingMeta     *datatypes.JSON `json:"building_meta,omitempty"`
	SiteGeofence     *datatypes.JSON `json:"site_geofence,omitempty"`
}

// UpdateProject edits project metadata. Status is not writable here;
// use the transition endpoint.
// PUT /api/v1/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req updateProjectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.BuildingFunction != nil {
		updates["building_function"] = *req.BuildingFunction
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.IMBNumber != nil {
		updates["imb_number"] = *req.IMBNumber
	}
	if req.FloorCount != nil {
		updates["floor_count"] = *req.FloorCount
	}
	if req.BuildingMeta != nil {
		updates["building_meta"] = *req.BuildingMeta
	}
	if req.SiteGeofence != nil {
		updates["site_geofence"] = *req.SiteGeofence
	}
	if len(updates) == 0 {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	if err := config.DB.Model(&project).Updates(updates).Error; err != nil {
		http.Error(w, "failed to update project", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(project)
}

type transitionReq struct {
	Status string `json:"status"`
}

// TransitionProject moves the project to an adjacent lifecycle status.
// The update is compare-and-set on the current status so two racing
// transitions cannot both win.
// POST /api/v1/projects/{id}/transition
func (h *ProjectHandler) TransitionProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		http.Error(w, "status is required", http.StatusBadRequest)
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	if err := workflow.CheckProjectTransition(project.Status, req.Status); err != nil {
		http.Error(w, err.Error(), workflow.StatusCode(err))
		return
	}

	if project.Status == req.Status {
		// Idempotent repeat.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "status unchanged",
			"status":  project.Status,
			"phase":   workflow.ProjectPhase(project.Status),
		})
		return
	}

	res := config.DB.Model(&models.Project{}).
		Where("id = ? AND status = ?", project.ID, project.Status).
		Update("status", req.Status)
	if res.Error != nil {
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "project status changed concurrently, retry", http.StatusConflict)
		return
	}

	log.Printf("✅ Project %s: %s -> %s", project.Code, project.Status, req.Status)
	project.Status = req.Status
	notificationEmitter().EmitProjectStatus(&project, req.Status)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "status updated",
		"status":  project.Status,
		"phase":   workflow.ProjectPhase(project.Status),
	})
}

type assignMemberReq struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// AssignTeamMember adds (or reactivates) a team assignment and
// recomputes the cached lead column from the team table.
// POST /api/v1/projects/{id}/team
func (h *ProjectHandler) AssignTeamMember(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.PrincipalID(r)
	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req assignMemberReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == uuid.Nil || req.Role == "" {
		http.Error(w, "user_id and role are required", http.StatusBadRequest)
		return
	}
	role, ok := workflow.CanonicalRole(req.Role)
	if !ok {
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if !user.IsActive() {
		http.Error(w, "user is not active", http.StatusBadRequest)
		return
	}

	var member models.ProjectTeamMember
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		// Reactivate an existing assignment row if one exists, otherwise
		// insert. The unique index makes a second insert fail loudly.
		res := tx.Where("project_id = ? AND user_id = ? AND role = ?",
			projectID, req.UserID, role).First(&member)
		switch {
		case res.Error == nil:
			if err := tx.Model(&member).Update("is_active", true).Error; err != nil {
				return err
			}
			member.IsActive = true
		case res.Error == gorm.ErrRecordNotFound:
			member = models.ProjectTeamMember{
				ProjectID:  projectID,
				UserID:     req.UserID,
				Role:       role,
				IsActive:   true,
				AssignedBy: actorID,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		default:
			return res.Error
		}
		return recomputeProjectLead(tx, projectID)
	})
	if err != nil {
		http.Error(w, "failed to assign team member", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Assigned %s as %s on project %s", user.Name, role, project.Code)
	notificationEmitter().EmitTeamAssignment(&member, project.Name)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(member)
}

// RemoveTeamMember deactivates an assignment. Rows are kept for audit;
// is_active=false removes them from every scope query.
// DELETE /api/v1/projects/{id}/team/{memberId}
func (h *ProjectHandler) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	projectID, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}
	memberID, err := uuid.Parse(vars["memberId"])
	if err != nil {
		http.Error(w, "invalid member id", http.StatusBadRequest)
		return
	}

	var member models.ProjectTeamMember
	if err := config.DB.First(&member, "id = ? AND project_id = ?", memberID, projectID).Error; err != nil {
		http.Error(w, "team assignment not found", http.StatusNotFound)
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&member).Update("is_active", false).Error; err != nil {
			return err
		}
		return recomputeProjectLead(tx, projectID)
	})
	if err != nil {
		http.Error(w, "failed to remove team member", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Deactivated team assignment %s on project %s", memberID, projectID)
	json.NewEncoder(w).Encode(map[string]string{"message": "team member removed"})
}

// ListTeamMembers returns the active team of a project.
// GET /api/v1/projects/{id}/team
func (h *ProjectHandler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := workflow.CanonicalRole(user.Role)

	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	// The roster is only served for projects the caller can see.
	var project models.Project
	if err := config.DB.
		Scopes(workflow.ProjectScope(role, user.ID, user.ClientID)).
		First(&project, "projects.id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	var members []models.ProjectTeamMember
	if err := config.DB.
		Preload("User").
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		http.Error(w, "failed to fetch team", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"members": members,
		"count":   len(members),
	})
}

// recomputeProjectLead refreshes the cached project_lead_id column from
// the team table inside the caller's transaction.
func recomputeProjectLead(tx *gorm.DB, projectID uuid.UUID) error {
	var lead models.ProjectTeamMember
	err := tx.Where("project_id = ? AND role = ? AND is_active = ?",
		projectID, workflow.RoleProjectLead, true).
		Order("updated_at DESC").
		First(&lead).Error

	var leadID *uuid.UUID
	switch {
	case err == nil:
		leadID = &lead.UserID
	case err == gorm.ErrRecordNotFound:
		leadID = nil
	default:
		return err
	}
	return tx.Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("project_lead_id", leadID).Error
}

func projectToDTO(p *models.Project) models.ProjectDTO {
	dto := models.ProjectDTO{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		ClientID:         p.ClientID,
		ProjectLeadID:    p.ProjectLeadID,
		BuildingFunction: p.BuildingFunction,
		Address:          p.Address,
		IMBNumber:        p.IMBNumber,
		FloorCount:       p.FloorCount,
		Status:           p.Status,
		Phase:            workflow.ProjectPhase(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Client != nil {
		dto.ClientName = p.Client.Name
	}
	return dto
}
