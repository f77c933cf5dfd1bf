// models/user.go
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserApprovalStatus tracks the admin review state of a registration.
type UserApprovalStatus string

const (
	UserStatusPending  UserApprovalStatus = "pending"
	UserStatusApproved UserApprovalStatus = "approved"
	UserStatusRejected UserApprovalStatus = "rejected"
	UserStatusDeleted  UserApprovalStatus = "deleted"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:15" json:"phone,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`

	// Stored role string; legacy rows carry drifted spellings, so every
	// consumer goes through workflow.NormalizeRole / CanonicalRole.
	Role           string  `gorm:"size:50;not null;default:'client'" json:"role"`
	Specialization *string `gorm:"size:100" json:"specialization,omitempty"`

	ApprovalStatus UserApprovalStatus `gorm:"size:20;not null;default:'pending';index" json:"approval_status"`

	// Client principals are linked to the client company that owns their
	// projects.
	ClientID *uuid.UUID `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Client   *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// IsActive reports whether the user may log in.
func (u *User) IsActive() bool {
	return u.ApprovalStatus == UserStatusApproved
}

// ArchiveEmail rewrites the email so the address frees up for
// re-registration while the row survives for foreign-key integrity.
// There is never more than one non-deleted profile per email.
func (u *User) ArchiveEmail(now time.Time) {
	u.Email = fmt.Sprintf("deleted_%d_%s", now.Unix(), u.Email)
	u.ApprovalStatus = UserStatusDeleted
}

// Client represents the client company that owns buildings under
// certification.
type Client struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	ContactEmail string    `gorm:"size:255" json:"contact_email,omitempty"`
	ContactPhone string    `gorm:"size:15" json:"contact_phone,omitempty"`
	Address      string    `gorm:"type:text" json:"address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}
