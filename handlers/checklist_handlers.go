package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm/clause"
	"p9e.in/slf/config"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
	"p9e.in/slf/utils"
)

// ChecklistHandler serves checklist templates and records inspector
// responses.
type ChecklistHandler struct{}

func NewChecklistHandler() *ChecklistHandler {
	return &ChecklistHandler{}
}

// ListChecklistItems returns the items of one template in display order.
// GET /api/v1/checklists/{template}
func (h *ChecklistHandler) ListChecklistItems(w http.ResponseWriter, r *http.Request) {
	template := mux.Vars(r)["template"]

	var items []models.ChecklistItem
	if err := config.DB.
		Where("template_code = ?", template).
		Order("display_order ASC").
		Find(&items).Error; err != nil {
		http.Error(w, "failed to fetch checklist items", http.StatusInternalServerError)
		return
	}
	if len(items) == 0 {
		http.Error(w, "unknown checklist template", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"template": template,
		"items":    items,
		"count":    len(items),
	})
}

type checklistResponseReq struct {
	ItemID    uuid.UUID      `json:"item_id"`
	Payload   models.JSONMap `json:"payload"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
}

// SubmitResponses upserts a batch of checklist answers for an
// inspection. The (inspection, item, responder) key collapses repeats
// to last-write-wins, so mobile clients can retry freely.
// POST /api/v1/inspections/{id}/responses
func (h *ChecklistHandler) SubmitResponses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	inspectionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	var reqs []checklistResponseReq
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(reqs) == 0 {
		http.Error(w, "no responses provided", http.StatusBadRequest)
		return
	}

	var inspection models.Inspection
	if err := config.DB.Preload("Project").First(&inspection, "id = ?", inspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}
	if inspection.Status != models.InspectionStatusInProgress {
		http.Error(w, "inspection is not in progress", http.StatusConflict)
		return
	}

	var fence *utils.Geofence
	if inspection.Project != nil {
		fence, _ = utils.ParseGeofence(string(inspection.Project.SiteGeofence))
	}

	responses := make([]models.ChecklistResponse, 0, len(reqs))
	for _, req := range reqs {
		if req.ItemID == uuid.Nil {
			http.Error(w, "item_id is required on every response", http.StatusBadRequest)
			return
		}
		if (req.Latitude == nil) != (req.Longitude == nil) {
			http.Error(w, "latitude and longitude must be provided together", http.StatusBadRequest)
			return
		}
		if req.Latitude != nil {
			if err := utils.CheckGeotag(fence, *req.Latitude, *req.Longitude); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		payload := req.Payload
		if payload == nil {
			payload = models.JSONMap{}
		}
		responses = append(responses, models.ChecklistResponse{
			InspectionID: inspectionID,
			ItemID:       req.ItemID,
			ResponderID:  userID,
			Payload:      payload,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
		})
	}

	// Collapse in-batch repeats first: Postgres rejects an upsert that
	// touches the same conflict key twice in one statement.
	responses = collapseResponses(responses)

	// Last write wins on the composite key.
	if err := config.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "inspection_id"}, {Name: "item_id"}, {Name: "responder_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "latitude", "longitude", "updated_at"}),
	}).Create(&responses).Error; err != nil {
		http.Error(w, "failed to save responses", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "responses recorded",
		"count":   len(responses),
	})
}

// collapseResponses keeps the last entry per item when one batch
// answers the same item more than once. All rows in a batch share the
// inspection and responder, so the item is the whole conflict key.
func collapseResponses(responses []models.ChecklistResponse) []models.ChecklistResponse {
	seen := make(map[uuid.UUID]int, len(responses))
	collapsed := responses[:0]
	for _, resp := range responses {
		if idx, ok := seen[resp.ItemID]; ok {
			collapsed[idx] = resp
			continue
		}
		seen[resp.ItemID] = len(collapsed)
		collapsed = append(collapsed, resp)
	}
	return collapsed
}

// ListResponses returns the recorded answers for an inspection.
// GET /api/v1/inspections/{id}/responses
func (h *ChecklistHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := workflow.CanonicalRole(user.Role)

	inspectionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	// The inspection must be visible to the caller before any answers
	// come back.
	var inspection models.Inspection
	if err := config.DB.
		Joins("JOIN projects ON projects.id = inspections.project_id").
		Scopes(workflow.InspectionScope(role, user.ID, user.ClientID)).
		First(&inspection, "inspections.id = ?", inspectionID).Error; err != nil {
		http.Error(w, "inspection not found", http.StatusNotFound)
		return
	}

	var responses []models.ChecklistResponse
	if err := config.DB.
		Preload("Item").
		Preload("Responder").
		Where("inspection_id = ?", inspectionID).
		Order("updated_at DESC").
		Find(&responses).Error; err != nil {
		http.Error(w, "failed to fetch responses", http.StatusInternalServerError)
		return
	}

	// Completion is measured against the mandatory items of the standard
	// template.
	var mandatory int64
	config.DB.Model(&models.ChecklistItem{}).
		Where("template_code = ? AND mandatory = ?", models.ChecklistTemplateStandard, true).
		Count(&mandatory)

	answered := map[uuid.UUID]bool{}
	for _, resp := range responses {
		answered[resp.ItemID] = true
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"responses":       responses,
		"count":           len(responses),
		"mandatory_items": mandatory,
		"answered_items":  len(answered),
	})
}
