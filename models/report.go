package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Report is a technical evaluation produced from an inspection. Its
// status walks the approval chain defined in pkg/workflow; the stored
// value is only ever written through the approval engine's
// compare-and-set path.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	InspectionID *uuid.UUID  `gorm:"type:uuid;index" json:"inspection_id,omitempty"`
	Inspection   *Inspection `gorm:"foreignKey:InspectionID" json:"inspection,omitempty"`

	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Title           string `gorm:"size:255;not null" json:"title"`
	Findings        string `gorm:"type:text" json:"findings,omitempty"`
	Recommendations string `gorm:"type:text" json:"recommendations,omitempty"`

	AttachmentURLs pq.StringArray `gorm:"type:text[]" json:"attachment_urls,omitempty"`

	Status string `gorm:"size:50;not null;default:'draft';index" json:"status"`

	// Rejected reports are never reset; a resubmission clones the
	// content into a new report and links back here.
	SupersedesID *uuid.UUID `gorm:"type:uuid;index" json:"supersedes_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Approvals []Approval `gorm:"foreignKey:ReportID" json:"approvals,omitempty"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "reports"
}

// Approval is one sign-off (or rejection) in a report's chain. The table
// is an append-only audit log; rows are inserted in the same transaction
// as the status change they record and never updated or deleted.
type Approval struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ReportID uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	Report   *Report   `gorm:"foreignKey:ReportID" json:"report,omitempty"`

	ApproverID uuid.UUID `gorm:"type:uuid;not null" json:"approver_id"`
	Approver   *User     `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`

	Role    string `gorm:"size:50;not null" json:"role"`
	Action  string `gorm:"size:20;not null" json:"action"` // approve, reject
	Comment string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Approval
func (Approval) TableName() string {
	return "approvals"
}

func (a *Approval) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
