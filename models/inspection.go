package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InspectionStatus is the lifecycle of a scheduled site visit.
type InspectionStatus string

const (
	InspectionStatusScheduled  InspectionStatus = "scheduled"
	InspectionStatusInProgress InspectionStatus = "in_progress"
	InspectionStatusCompleted  InspectionStatus = "completed"
	InspectionStatusCancelled  InspectionStatus = "cancelled"
)

// Inspection is a scheduled site visit by an inspector.
type Inspection struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	InspectorID uuid.UUID `gorm:"type:uuid;not null;index" json:"inspector_id"`
	Inspector   *User     `gorm:"foreignKey:InspectorID" json:"inspector,omitempty"`

	ScheduledStart time.Time  `gorm:"not null;index" json:"scheduled_start"`
	ScheduledEnd   time.Time  `gorm:"not null" json:"scheduled_end"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	Status  InspectionStatus `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	Summary string           `gorm:"type:text" json:"summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Photos    []InspectionPhoto   `gorm:"foreignKey:InspectionID" json:"photos,omitempty"`
	Responses []ChecklistResponse `gorm:"foreignKey:InspectionID" json:"responses,omitempty"`
}

// TableName specifies the table name for Inspection
func (Inspection) TableName() string {
	return "inspections"
}

// InspectionPhoto is a photo captured during a site visit. The inspection
// reference is required at creation time; the legacy behavior of
// accepting orphaned photos and reconciling them later by
// project+uploader+timestamp heuristics is gone.
type InspectionPhoto struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InspectionID uuid.UUID   `gorm:"type:uuid;not null;index" json:"inspection_id"`
	Inspection   *Inspection `gorm:"foreignKey:InspectionID" json:"inspection,omitempty"`

	UploaderID uuid.UUID `gorm:"type:uuid;not null" json:"uploader_id"`
	URL        string    `gorm:"size:500;not null" json:"url"`
	Caption    string    `gorm:"size:500" json:"caption,omitempty"`

	// Optional geotag, validated against the project site geofence.
	Latitude  *float64 `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`

	TakenAt   *time.Time `json:"taken_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for InspectionPhoto
func (InspectionPhoto) TableName() string {
	return "inspection_photos"
}

func (p *InspectionPhoto) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
