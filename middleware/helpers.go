package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/slf/config"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// GetMuxVars extracts mux variables from request
func GetMuxVars(r *http.Request) map[string]string {
	return mux.Vars(r)
}

// PrincipalID parses the authenticated user ID, uuid.Nil when absent.
func PrincipalID(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(GetUserID(r))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// CanonicalRole returns the canonical role of the authenticated
// principal and whether it belongs to the closed role set. Data-access
// checks use this; route resolution uses the forgiving NormalizeRole.
func CanonicalRole(r *http.Request) (string, bool) {
	return workflow.CanonicalRole(GetRole(r))
}

// IsProjectTeamMember reports whether the user holds an active
// assignment on the project, optionally restricted to a role. The
// project_team_members table is the source of truth; the cached
// project_lead_id column is never consulted for authorization.
func IsProjectTeamMember(projectID, userID uuid.UUID, role string) bool {
	q := config.DB.Model(&models.ProjectTeamMember{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
