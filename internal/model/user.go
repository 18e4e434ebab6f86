package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserRole is the account-level role. It is advisory: what a user may do
// inside a workspace is decided by ownership and membership.
type UserRole string

const (
	RoleSystemAdmin  UserRole = "system_admin"
	RoleProfessional UserRole = "professional"
	RoleStaff        UserRole = "staff"
	RoleClient       UserRole = "client"
)

// ParseUserRole converts s into a UserRole, rejecting unknown values.
func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(strings.TrimSpace(s)); r {
	case RoleSystemAdmin, RoleProfessional, RoleStaff, RoleClient:
		return r, nil
	default:
		return "", fmt.Errorf("unknown user role %q", s)
	}
}

// User represents the user model stored in the database
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Email      string    `json:"email" gorm:"type:varchar(254);uniqueIndex;not null"`
	FullName   string    `json:"full_name" gorm:"type:varchar(150)"`
	Password   string    `json:"-" gorm:"type:varchar(255)"`
	Role       UserRole  `json:"role" gorm:"type:varchar(20);not null"`
	IsActive   bool      `json:"is_active"`
	IsStaff    bool      `json:"-"`
	DateJoined time.Time `json:"date_joined" gorm:"autoCreateTime"`
}

// SetPassword stores the bcrypt hash of raw.
func (u *User) SetPassword(raw string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether raw matches the stored hash.
func (u *User) CheckPassword(raw string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

// NormalizeEmail lower-cases and trims an address; emails are compared
// case-insensitively everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
