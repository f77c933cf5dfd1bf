package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project represents a building under SLF certification.
type Project struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name string    `gorm:"size:255;not null" json:"name"`

	// Owner
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Cached projection of the team table; recomputed on every team
	// change, never hand-edited. The team-assignment rows are the source
	// of truth for scoping.
	ProjectLeadID *uuid.UUID `gorm:"type:uuid;index" json:"project_lead_id,omitempty"`

	// Building metadata
	BuildingFunction string         `gorm:"size:100" json:"building_function,omitempty"`
	Address          string         `gorm:"type:text" json:"address,omitempty"`
	IMBNumber        string         `gorm:"size:100" json:"imb_number,omitempty"`
	FloorCount       int            `gorm:"default:0" json:"floor_count"`
	BuildingMeta     datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"building_meta,omitempty"`

	// Site boundary polygon ({"coordinates":[{"lat":..,"lng":..},...]})
	// used to validate inspection photo geotags.
	SiteGeofence datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"site_geofence,omitempty"`

	// Lifecycle; the closed set lives in pkg/workflow.
	Status string `gorm:"size:50;not null;default:'draft';index" json:"status"`

	// Metadata
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	TeamMembers []ProjectTeamMember `gorm:"foreignKey:ProjectID" json:"team_members,omitempty"`
	Inspections []Inspection        `gorm:"foreignKey:ProjectID" json:"inspections,omitempty"`
	Reports     []Report            `gorm:"foreignKey:ProjectID" json:"reports,omitempty"`
	Documents   []ProjectDocument   `gorm:"foreignKey:ProjectID" json:"documents,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectTeamMember assigns a principal to a project in a given role
// (project_lead, inspector, drafter, admin_team). This table is the
// single writable source of truth for who leads a project.
type ProjectTeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_team_assignment,priority:1" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_team_assignment,priority:2" json:"user_id"`
	Role      string    `gorm:"size:50;not null;uniqueIndex:idx_team_assignment,priority:3" json:"role"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	AssignedBy uuid.UUID `gorm:"type:uuid;not null" json:"assigned_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for ProjectTeamMember
func (ProjectTeamMember) TableName() string {
	return "project_team_members"
}

func (m *ProjectTeamMember) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// ProjectDTO is the list/detail response shape, including the display
// phase derived from status.
type ProjectDTO struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	ClientID         uuid.UUID  `json:"client_id"`
	ClientName       string     `json:"client_name,omitempty"`
	ProjectLeadID    *uuid.UUID `json:"project_lead_id,omitempty"`
	BuildingFunction string     `json:"building_function,omitempty"`
	Address          string     `json:"address,omitempty"`
	IMBNumber        string     `json:"imb_number,omitempty"`
	FloorCount       int        `json:"floor_count"`
	Status           string     `json:"status"`
	Phase            int        `json:"phase"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
