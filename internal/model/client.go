package model

import "time"

// Client is a person record owned by exactly one workspace. PortalUserID
// links the login used by the client portal; deleting that user only
// clears the link.
type Client struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	WorkspaceID  uint       `json:"workspace" gorm:"index;not null"`
	Workspace    *Workspace `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FullName     string     `json:"full_name" gorm:"type:varchar(150);not null"`
	Email        string     `json:"email" gorm:"type:varchar(254);index"`
	Phone        string     `json:"phone" gorm:"type:varchar(50)"`
	DocumentID   string     `json:"document_id" gorm:"type:varchar(50)"`
	BirthDate    *time.Time `json:"birth_date" gorm:"type:date"`
	Notes        string     `json:"notes" gorm:"type:text"`
	PortalUserID *uint      `json:"portal_user" gorm:"index"`
	PortalUser   *User      `json:"-" gorm:"foreignKey:PortalUserID;constraint:OnDelete:SET NULL"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
}
