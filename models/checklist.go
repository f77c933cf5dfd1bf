package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChecklistTemplateStandard is the default SLF inspection template.
const ChecklistTemplateStandard = "slf_standard"

// ChecklistItem is static reference data describing one evaluation
// criterion in an inspection template. Seeded at migration time.
type ChecklistItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TemplateCode string    `gorm:"size:50;not null;index;uniqueIndex:idx_template_item,priority:1" json:"template_code"`
	Code         string    `gorm:"size:50;not null;uniqueIndex:idx_template_item,priority:2" json:"code"`
	Category     string    `gorm:"size:100;not null;index" json:"category"`
	Prompt       string    `gorm:"type:text;not null" json:"prompt"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	Mandatory    bool      `gorm:"default:false" json:"mandatory"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ChecklistItem
func (ChecklistItem) TableName() string {
	return "checklist_items"
}

// ChecklistResponse is an inspector's answer to a checklist item. The
// composite unique index is the upsert key: concurrent submissions for
// the same (inspection, item, responder) collapse to last-write-wins.
type ChecklistResponse struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InspectionID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_response_key,priority:1" json:"inspection_id"`
	ItemID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_response_key,priority:2" json:"item_id"`
	ResponderID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_response_key,priority:3" json:"responder_id"`

	// Structured per item (pass/fail, measurements, remarks).
	Payload JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`

	// Optional capture location.
	Latitude  *float64 `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Inspection *Inspection    `gorm:"foreignKey:InspectionID" json:"inspection,omitempty"`
	Item       *ChecklistItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Responder  *User          `gorm:"foreignKey:ResponderID" json:"responder,omitempty"`
}

// TableName specifies the table name for ChecklistResponse
func (ChecklistResponse) TableName() string {
	return "checklist_responses"
}

func (r *ChecklistResponse) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
