package model

import (
	"time"

	"gorm.io/datatypes"
)

// Consultation is a note taken for a client, optionally tied to one appointment.
type Consultation struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	WorkspaceID     uint              `json:"workspace" gorm:"index;not null"`
	Workspace       *Workspace        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ClientID        uint              `json:"client" gorm:"index;not null"`
	Client          *Client           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ProfessionalID  *uint             `json:"professional"`
	Professional    *User             `json:"-" gorm:"foreignKey:ProfessionalID;constraint:OnDelete:SET NULL"`
	AppointmentID   *uint             `json:"appointment" gorm:"uniqueIndex"`
	Appointment     *Appointment      `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Title           string            `json:"title" gorm:"type:varchar(200)"`
	Notes           string            `json:"notes" gorm:"type:text"`
	ExtraData       datatypes.JSONMap `json:"extra_data"`
	VisibleToClient bool              `json:"visible_to_client"`
	CreatedAt       time.Time         `json:"created_at"`
}
