package model

import (
	"fmt"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// ParseAppointmentStatus returns AppointmentScheduled for a blank value.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	switch st := AppointmentStatus(strings.TrimSpace(s)); st {
	case "":
		return AppointmentScheduled, nil
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow:
		return st, nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

type Modality string

const (
	ModalityPresential Modality = "presential"
	ModalityOnline     Modality = "online"
)

// ParseModality returns ModalityPresential for a blank value.
func ParseModality(s string) (Modality, error) {
	switch m := Modality(strings.TrimSpace(s)); m {
	case "":
		return ModalityPresential, nil
	case ModalityPresential, ModalityOnline:
		return m, nil
	default:
		return "", fmt.Errorf("unknown modality %q", s)
	}
}

type Appointment struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	WorkspaceID    uint              `json:"workspace" gorm:"index;not null"`
	Workspace      *Workspace        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ClientID       uint              `json:"client" gorm:"index;not null"`
	Client         *Client           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ServiceID      *uint             `json:"service"`
	Service        *Service          `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ProfessionalID *uint             `json:"professional"`
	Professional   *User             `json:"-" gorm:"foreignKey:ProfessionalID;constraint:OnDelete:SET NULL"`
	Start          time.Time         `json:"start" gorm:"index;not null"`
	End            time.Time         `json:"end" gorm:"not null"`
	Status         AppointmentStatus `json:"status" gorm:"type:varchar(20);not null"`
	Modality       Modality          `json:"modality" gorm:"type:varchar(20);not null"`
	NotesInternal  string            `json:"notes_internal" gorm:"type:text"`
	NotesForClient string            `json:"notes_for_client" gorm:"type:text"`
	CreatedAt      time.Time         `json:"created_at"`
}
