package model

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type CaseStatus string

const (
	CaseOpen   CaseStatus = "open"
	CaseOnHold CaseStatus = "on_hold"
	CaseClosed CaseStatus = "closed"
)

var caseStatusAliases = map[string]CaseStatus{
	"active":   CaseOpen,
	"paused":   CaseOnHold,
	"onhold":   CaseOnHold,
	"inactive": CaseClosed,
}

// NormalizeCaseStatus maps legacy aliases onto the current values before
// validating. Surrounding quotes are stripped and blank means open.
func NormalizeCaseStatus(raw string) (CaseStatus, error) {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `"'`))
	s = strings.TrimSpace(s)
	if s == "" {
		return CaseOpen, nil
	}
	if alias, ok := caseStatusAliases[s]; ok {
		return alias, nil
	}
	switch st := CaseStatus(s); st {
	case CaseOpen, CaseOnHold, CaseClosed:
		return st, nil
	default:
		return "", fmt.Errorf("%q is not a valid case file status", raw)
	}
}

// CaseFile is a per-client dossier.
type CaseFile struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	WorkspaceID uint              `json:"workspace" gorm:"index;not null"`
	Workspace   *Workspace        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ClientID    uint              `json:"client" gorm:"index;not null"`
	Client      *Client           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title       string            `json:"title" gorm:"type:varchar(200);not null"`
	Status      CaseStatus        `json:"status" gorm:"type:varchar(20);not null"`
	IsPrimary   bool              `json:"is_primary"`
	Tags        datatypes.JSON    `json:"tags"`
	ExtraData   datatypes.JSONMap `json:"extra_data"`
	OpenedAt    time.Time         `json:"opened_at" gorm:"index;not null"`
	ClosedAt    *time.Time        `json:"closed_at"`
	Events      []CaseEvent       `json:"-" gorm:"foreignKey:CaseFileID;constraint:OnDelete:CASCADE"`
	EventsCount int64             `json:"events_count" gorm:"->;-:migration"`
}

// CaseEvent is a timestamped entry in a case file.
type CaseEvent struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	WorkspaceID     uint              `json:"workspace" gorm:"index;not null"`
	CaseFileID      uint              `json:"casefile" gorm:"index;not null"`
	AppointmentID   *uint             `json:"appointment"`
	Appointment     *Appointment      `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ConsultationID  *uint             `json:"consultation"`
	Consultation    *Consultation     `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	EventType       string            `json:"event_type" gorm:"type:varchar(50);not null"`
	Title           string            `json:"title" gorm:"type:varchar(200)"`
	Body            string            `json:"body" gorm:"type:text"`
	HappenedAt      time.Time         `json:"happened_at" gorm:"index;not null"`
	VisibleToClient bool              `json:"visible_to_client"`
	CreatedByID     *uint             `json:"created_by"`
	CreatedBy       *User             `json:"-" gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
	CreatedAt       time.Time         `json:"created_at"`
	ExtraData       datatypes.JSONMap `json:"extra_data"`
	Attachments     []CaseAttachment  `json:"attachments" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

// DefaultEventType is stamped on events created without a type.
const DefaultEventType = "note"

// CaseAttachment is the metadata of one uploaded file. The bytes live in
// the file store under StorageKey.
type CaseAttachment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	WorkspaceID  uint      `json:"workspace" gorm:"index;not null"`
	CaseFileID   uint      `json:"casefile" gorm:"index;not null"`
	EventID      uint      `json:"event" gorm:"index;not null"`
	StorageKey   string    `json:"-" gorm:"type:varchar(255);not null"`
	OriginalName string    `json:"original_name" gorm:"type:varchar(255)"`
	MimeType     string    `json:"mime_type" gorm:"type:varchar(100)"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedByID *uint     `json:"uploaded_by"`
	UploadedBy   *User     `json:"-" gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"index;not null"`
	IsPrivate    bool      `json:"is_private"`
	FileURL      string    `json:"file_url" gorm:"-"`
}
