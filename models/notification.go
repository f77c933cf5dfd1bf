package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeError   NotificationType = "error"
)

// NotificationEvent names the state transition that produced the record.
type NotificationEvent string

const (
	NotificationEventReportSubmitted   NotificationEvent = "report_submitted"
	NotificationEventReportApproved    NotificationEvent = "report_approved"
	NotificationEventReportRejected    NotificationEvent = "report_rejected"
	NotificationEventProjectStatus     NotificationEvent = "project_status_changed"
	NotificationEventInspectionBooked  NotificationEvent = "inspection_scheduled"
	NotificationEventUserRegistered    NotificationEvent = "user_registered"
	NotificationEventTeamAssignment    NotificationEvent = "team_assignment"
)

// Notification is an informational record produced by a state
// transition. It is written best-effort outside the transition's
// transaction and only ever mutated to set read_at.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type    NotificationType  `gorm:"size:20;not null;default:'info'" json:"type"`
	Event   NotificationEvent `gorm:"size:50;not null;index" json:"event"`
	Title   string            `gorm:"size:500;not null" json:"title"`
	Message string            `gorm:"type:text;not null" json:"message"`

	// Optional back-references for deep links.
	ProjectID    *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	ReportID     *uuid.UUID `gorm:"type:uuid;index" json:"report_id,omitempty"`
	InspectionID *uuid.UUID `gorm:"type:uuid" json:"inspection_id,omitempty"`

	ReadAt    *time.Time `gorm:"index" json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}

// MarkAsRead sets the read timestamp once; rereads keep the first one.
func (n *Notification) MarkAsRead() {
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
	}
}

// IsRead reports whether the recipient has seen the notification.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NotificationDTO represents the API response format
type NotificationDTO struct {
	ID        uuid.UUID         `json:"id"`
	Type      NotificationType  `json:"type"`
	Event     NotificationEvent `json:"event"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	ProjectID *uuid.UUID        `json:"project_id,omitempty"`
	ReportID  *uuid.UUID        `json:"report_id,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
}

// ToDTO converts Notification to DTO
func (n *Notification) ToDTO() NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Event:     n.Event,
		Title:     n.Title,
		Message:   n.Message,
		ProjectID: n.ProjectID,
		ReportID:  n.ReportID,
		IsRead:    n.IsRead(),
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
