package model

// DefaultDurationMinutes is used for appointments whose service carries
// no duration, or that have no service at all.
const DefaultDurationMinutes = 30

// Service is a bookable offering of a workspace.
type Service struct {
	ID                     uint       `json:"id" gorm:"primaryKey"`
	WorkspaceID            uint       `json:"workspace" gorm:"index;not null"`
	Workspace              *Workspace `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Name                   string     `json:"name" gorm:"type:varchar(150);not null"`
	Description            string     `json:"description" gorm:"type:text"`
	DefaultDurationMinutes int        `json:"default_duration_minutes" gorm:"not null"`
	Price                  string     `json:"price" gorm:"type:numeric(10,2);not null"`
	IsActive               bool       `json:"is_active"`
}

// Duration returns the service length, falling back to DefaultDurationMinutes.
func (s *Service) Duration() int {
	if s == nil || s.DefaultDurationMinutes <= 0 {
		return DefaultDurationMinutes
	}
	return s.DefaultDurationMinutes
}
