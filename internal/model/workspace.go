package model

import (
	"fmt"
	"strings"
	"time"
)

// Niche is the professional field a workspace serves.
type Niche string

const (
	NicheDoctor       Niche = "doctor"
	NicheDentist      Niche = "dentist"
	NicheLawyer       Niche = "lawyer"
	NichePsychologist Niche = "psychologist"
	NicheCoach        Niche = "coach"
	NicheOther        Niche = "other"
)

// ParseNiche returns NicheOther for a blank value.
func ParseNiche(s string) (Niche, error) {
	switch n := Niche(strings.TrimSpace(s)); n {
	case "":
		return NicheOther, nil
	case NicheDoctor, NicheDentist, NicheLawyer, NichePsychologist, NicheCoach, NicheOther:
		return n, nil
	default:
		return "", fmt.Errorf("unknown niche %q", s)
	}
}

// Workspace is the tenant boundary. Deleting the owner deletes the
// workspace and, through cascades, everything inside it.
type Workspace struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	OwnerID          uint      `json:"owner" gorm:"index;not null"`
	Owner            *User     `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Name             string    `json:"name" gorm:"type:varchar(150);not null"`
	Slug             string    `json:"slug" gorm:"type:varchar(80);uniqueIndex;not null"`
	Niche            Niche     `json:"niche" gorm:"type:varchar(30);not null"`
	EnableVideoCalls bool      `json:"enable_video_calls"`
	CreatedAt        time.Time `json:"created_at"`
}

// MemberRole is a user's role inside one workspace.
type MemberRole string

const (
	MemberOwner        MemberRole = "owner"
	MemberProfessional MemberRole = "professional"
	MemberAssistant    MemberRole = "assistant"
	MemberClient       MemberRole = "client"
)

// ParseMemberRole converts s into a MemberRole, rejecting unknown values.
func ParseMemberRole(s string) (MemberRole, error) {
	switch r := MemberRole(strings.TrimSpace(s)); r {
	case MemberOwner, MemberProfessional, MemberAssistant, MemberClient:
		return r, nil
	default:
		return "", fmt.Errorf("unknown member role %q", s)
	}
}

// WorkspaceMember grants a user a role inside a workspace. A (workspace,
// user) pair appears at most once.
type WorkspaceMember struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	WorkspaceID uint       `json:"workspace" gorm:"uniqueIndex:idx_workspace_member;not null"`
	Workspace   *Workspace `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID      uint       `json:"user" gorm:"uniqueIndex:idx_workspace_member;index;not null"`
	User        *User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Role        MemberRole `json:"role" gorm:"type:varchar(20);not null"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}
