package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectDocument is the metadata row for an uploaded project document
// (permits, drawings, prior certificates). The binary lives in GCS or on
// local disk depending on environment.
type ProjectDocument struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	UploaderID uuid.UUID `gorm:"type:uuid;not null" json:"uploader_id"`
	Uploader   *User     `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`

	FileName    string `gorm:"size:255;not null" json:"file_name"`
	StoragePath string `gorm:"size:500;not null" json:"storage_path"`
	URL         string `gorm:"size:500;not null" json:"url"`
	ContentType string `gorm:"size:100" json:"content_type,omitempty"`
	SizeBytes   int64  `gorm:"default:0" json:"size_bytes"`
	Category    string `gorm:"size:50;index" json:"category,omitempty"` // permit, drawing, certificate, other

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ProjectDocument
func (ProjectDocument) TableName() string {
	return "project_documents"
}

func (d *ProjectDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
