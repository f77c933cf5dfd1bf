package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/slf/config"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// UserAdminHandler handles administrator actions on accounts.
type UserAdminHandler struct{}

func NewUserAdminHandler() *UserAdminHandler {
	return &UserAdminHandler{}
}

// ListUsers returns accounts, optionally filtered by approval status or
// role.
// GET /api/v1/admin/users?status=pending&role=inspector
func (h *UserAdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Model(&models.User{}).Order("created_at DESC")

	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("approval_status = ?", status)
	} else {
		q = q.Where("approval_status <> ?", models.UserStatusDeleted)
	}
	if role := r.URL.Query().Get("role"); role != "" {
		q = q.Where("role = ?", workflow.NormalizeRole(role))
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		http.Error(w, "failed to fetch users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"users": users,
		"count": len(users),
	})
}

// ApproveUser marks a pending registration as approved.
// POST /api/v1/admin/users/{id}/approve
func (h *UserAdminHandler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	h.reviewUser(w, r, models.UserStatusApproved)
}

// RejectUser marks a pending registration as rejected.
// POST /api/v1/admin/users/{id}/reject
func (h *UserAdminHandler) RejectUser(w http.ResponseWriter, r *http.Request) {
	h.reviewUser(w, r, models.UserStatusRejected)
}

func (h *UserAdminHandler) reviewUser(w http.ResponseWriter, r *http.Request, verdict models.UserApprovalStatus) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if user.ApprovalStatus == models.UserStatusDeleted {
		http.Error(w, "user is deleted", http.StatusConflict)
		return
	}

	if err := config.DB.Model(&user).Update("approval_status", verdict).Error; err != nil {
		http.Error(w, "failed to update user", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ User %s reviewed: %s", user.Email, verdict)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "user " + string(verdict),
		"user_id": user.ID,
	})
}

// DeleteUser soft-deletes an account. The row is kept and its email
// archived so approvals, reports and team assignments keep their
// references; the address frees up for a fresh registration.
// DELETE /api/v1/admin/users/{id}
func (h *UserAdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if user.ApprovalStatus == models.UserStatusDeleted {
		http.Error(w, "user already deleted", http.StatusConflict)
		return
	}

	user.ArchiveEmail(time.Now())
	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"email":           user.Email,
		"approval_status": user.ApprovalStatus,
	}).Error; err != nil {
		http.Error(w, "failed to delete user", http.StatusInternalServerError)
		return
	}

	// Deactivate team assignments so scoping stops matching this user.
	if err := config.DB.Model(&models.ProjectTeamMember{}).
		Where("user_id = ?", user.ID).
		Update("is_active", false).Error; err != nil {
		log.Printf("⚠️  Failed to deactivate team rows for %s: %v", user.ID, err)
	}

	log.Printf("✅ User %s archived", user.ID)
	json.NewEncoder(w).Encode(map[string]string{"message": "user deleted"})
}
