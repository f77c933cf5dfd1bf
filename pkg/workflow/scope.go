package workflow

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScopeKind classifies how far a role can see into the project register.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota // deny-by-default for unknown roles
	ScopeAll
	ScopeAssigned // rows where the principal is the assigned lead
	ScopeOwned    // rows owned by the principal's linked client
)

// ScopeFor maps a canonical role to its visibility scope. Unlike route
// resolution, data access does NOT fail open: anything outside the table
// gets an empty result set.
func ScopeFor(role string) ScopeKind {
	switch role {
	case RoleAdminLead, RoleAdminTeam, RoleHeadConsultant:
		return ScopeAll
	case RoleProjectLead:
		return ScopeAssigned
	case RoleClient:
		return ScopeOwned
	default:
		return ScopeNone
	}
}

// ProjectScope returns a gorm scope restricting a projects query to what
// the principal may see. Lead assignment is derived from the
// project_team_members table of record, never from the denormalized
// project_lead_id cache on the project row.
func ProjectScope(role string, userID uuid.UUID, clientID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch ScopeFor(role) {
		case ScopeAll:
			return db
		case ScopeAssigned:
			return db.
				Joins("JOIN project_team_members ptm ON ptm.project_id = projects.id").
				Where("ptm.user_id = ? AND ptm.role = ? AND ptm.is_active = ?", userID, RoleProjectLead, true)
		case ScopeOwned:
			if clientID == nil {
				return db.Where("1 = 0")
			}
			return db.Where("projects.client_id = ?", *clientID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// InspectionScope restricts an inspections query. The query must join
// projects so the owning-project rules can apply. Inspectors see their
// own visits; drafters see visits on projects they are assigned to.
func InspectionScope(role string, userID uuid.UUID, clientID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch role {
		case RoleInspector:
			return db.Where("inspections.inspector_id = ?", userID)
		case RoleDrafter:
			return db.
				Joins("JOIN project_team_members ptm ON ptm.project_id = inspections.project_id").
				Where("ptm.user_id = ? AND ptm.is_active = ?", userID, true)
		default:
			return ProjectScope(role, userID, clientID)(db)
		}
	}
}

// ReportScope restricts a reports query through the owning project's
// visibility. Inspectors and drafters additionally see reports they
// authored, since they work on reports without appearing in the project
// scope table.
func ReportScope(role string, userID uuid.UUID, clientID *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch ScopeFor(role) {
		case ScopeAll:
			return db
		case ScopeAssigned:
			return db.
				Joins("JOIN project_team_members ptm ON ptm.project_id = reports.project_id").
				Where("ptm.user_id = ? AND ptm.role = ? AND ptm.is_active = ?", userID, RoleProjectLead, true)
		case ScopeOwned:
			if clientID == nil {
				return db.Where("1 = 0")
			}
			return db.
				Joins("JOIN projects ON projects.id = reports.project_id").
				Where("projects.client_id = ?", *clientID)
		default:
			if role == RoleInspector || role == RoleDrafter {
				return db.Where("reports.author_id = ?", userID)
			}
			return db.Where("1 = 0")
		}
	}
}
