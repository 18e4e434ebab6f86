package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultInvitationTTL applies when an invitation is saved without an expiry.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationStatus is derived from the stored flags, never persisted.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// ClientInvitation is a single-use token that bootstraps a portal login
// for a client. Once consumed or revoked IsActive stays false.
type ClientInvitation struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	WorkspaceID uint       `json:"workspace" gorm:"index;not null"`
	Workspace   *Workspace `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ClientID    uint       `json:"client" gorm:"index;not null"`
	Client      *Client    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Email       *string    `json:"email" gorm:"type:varchar(254)"`
	Token       string     `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at" gorm:"not null"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	IsActive    bool       `json:"is_active"`
}

// BeforeCreate fills in the token and expiry when the caller left them blank.
func (i *ClientInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.Token == "" {
		i.Token = generateSecureToken()
	}
	if i.ExpiresAt.IsZero() {
		i.ExpiresAt = time.Now().UTC().Add(DefaultInvitationTTL)
	}
	return nil
}

// IsValid reports whether the invitation can still be verified or accepted at now.
func (i *ClientInvitation) IsValid(now time.Time) bool {
	return i.IsActive && !now.After(i.ExpiresAt)
}

// Status derives the lifecycle state at now.
func (i *ClientInvitation) Status(now time.Time) InvitationStatus {
	switch {
	case i.AcceptedAt != nil:
		return InvitationAccepted
	case !i.IsActive:
		return InvitationRevoked
	case now.After(i.ExpiresAt):
		return InvitationExpired
	default:
		return InvitationPending
	}
}
