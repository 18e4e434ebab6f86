package model

import (
	"crypto/rand"
	"encoding/base64"
)

// generateSecureToken creates a secure random token string
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// NewInvitationToken returns an unguessable, URL-safe invitation token.
func NewInvitationToken() string {
	return generateSecureToken()
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Workspace{},
		&WorkspaceMember{},
		&Client{},
		&ClientInvitation{},
		&Service{},
		&Appointment{},
		&Consultation{},
		&CaseFile{},
		&CaseEvent{},
		&CaseAttachment{},
	}
}
