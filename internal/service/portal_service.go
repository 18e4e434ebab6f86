package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/internal/storage"
	"practice-service/internal/tenancy"
	"practice-service/prometheus"
)

// PortalEntry pairs a resolved client record with its workspace.
type PortalEntry struct {
	Client    *model.Client    `json:"client"`
	Workspace *model.Workspace `json:"workspace"`
}

type PortalAppointment struct {
	ID             uint                    `json:"id"`
	Start          time.Time               `json:"start"`
	End            time.Time               `json:"end"`
	Status         model.AppointmentStatus `json:"status"`
	Modality       model.Modality          `json:"modality"`
	ServiceName    string                  `json:"service_name"`
	NotesForClient string                  `json:"notes_for_client"`
	CanVideo       bool                    `json:"can_video"`
}

type PortalConsultation struct {
	ID              uint              `json:"id"`
	Title           string            `json:"title"`
	Notes           string            `json:"notes"`
	ExtraData       datatypes.JSONMap `json:"extra_data"`
	VisibleToClient bool              `json:"visible_to_client"`
	CreatedAt       time.Time         `json:"created_at"`
}

type PortalCaseFile struct {
	ID        uint             `json:"id"`
	Title     string           `json:"title"`
	Status    model.CaseStatus `json:"status"`
	IsPrimary bool             `json:"is_primary"`
	Tags      datatypes.JSON   `json:"tags"`
	OpenedAt  time.Time        `json:"opened_at"`
	ClosedAt  *time.Time       `json:"closed_at"`
}

type PortalAttachment struct {
	ID           uint      `json:"id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedAt   time.Time `json:"uploaded_at"`
	FileURL      string    `json:"file_url"`
}

type PortalEvent struct {
	ID          uint               `json:"id"`
	EventType   string             `json:"event_type"`
	Title       string             `json:"title"`
	Body        string             `json:"body"`
	HappenedAt  time.Time          `json:"happened_at"`
	Attachments []PortalAttachment `json:"attachments"`
}

// PortalService serves the read-only client portal. Every query starts
// from the portal clients resolved for the caller and never from staff scope.
type PortalService struct {
	db       *gorm.DB
	resolver *tenancy.Resolver
	store    storage.Store
	log      *zap.Logger
}

func NewPortalService(db *gorm.DB, resolver *tenancy.Resolver, store storage.Store, log *zap.Logger) *PortalService {
	return &PortalService{db: db, resolver: resolver, store: store, log: log}
}

func (s *PortalService) Me(ctx context.Context, user *model.User, workspaceSlug string) ([]PortalEntry, error) {
	prometheus.RecordPortalQuery("me")
	clients, err := s.resolver.RequirePortal(ctx, user, workspaceSlug)
	if err != nil {
		return nil, err
	}
	out := make([]PortalEntry, len(clients))
	for i := range clients {
		out[i] = PortalEntry{Client: &clients[i], Workspace: clients[i].Workspace}
	}
	return out, nil
}

func (s *PortalService) Appointments(ctx context.Context, user *model.User, workspaceSlug string) ([]PortalAppointment, error) {
	prometheus.RecordPortalQuery("appointments")
	clients, err := s.resolver.RequirePortal(ctx, user, workspaceSlug)
	if err != nil {
		return nil, err
	}

	var rows []model.Appointment
	err = repository.DB(ctx, s.db).
		Preload("Service").
		Preload("Workspace").
		Where("client_id IN ?", tenancy.ClientIDs(clients)).
		Order("start, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]PortalAppointment, len(rows))
	for i, a := range rows {
		out[i] = PortalAppointment{
			ID:             a.ID,
			Start:          a.Start,
			End:            a.End,
			Status:         a.Status,
			Modality:       a.Modality,
			NotesForClient: a.NotesForClient,
			CanVideo:       a.Modality == model.ModalityOnline && a.Workspace != nil && a.Workspace.EnableVideoCalls,
		}
		if a.Service != nil {
			out[i].ServiceName = a.Service.Name
		}
	}
	return out, nil
}

func (s *PortalService) Consultations(ctx context.Context, user *model.User, workspaceSlug string) ([]PortalConsultation, error) {
	prometheus.RecordPortalQuery("consultations")
	clients, err := s.resolver.RequirePortal(ctx, user, workspaceSlug)
	if err != nil {
		return nil, err
	}

	var rows []model.Consultation
	err = repository.DB(ctx, s.db).
		Where("client_id IN ? AND visible_to_client = ?", tenancy.ClientIDs(clients), true).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]PortalConsultation, len(rows))
	for i, c := range rows {
		out[i] = PortalConsultation{
			ID:              c.ID,
			Title:           c.Title,
			Notes:           c.Notes,
			ExtraData:       c.ExtraData,
			VisibleToClient: c.VisibleToClient,
			CreatedAt:       c.CreatedAt,
		}
	}
	return out, nil
}

func (s *PortalService) CaseFiles(ctx context.Context, user *model.User, workspaceSlug string) ([]PortalCaseFile, error) {
	prometheus.RecordPortalQuery("casefiles")
	clients, err := s.resolver.RequirePortal(ctx, user, workspaceSlug)
	if err != nil {
		return nil, err
	}

	var rows []model.CaseFile
	err = repository.DB(ctx, s.db).
		Where("client_id IN ?", tenancy.ClientIDs(clients)).
		Order("opened_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]PortalCaseFile, len(rows))
	for i, cf := range rows {
		out[i] = PortalCaseFile{
			ID:        cf.ID,
			Title:     cf.Title,
			Status:    cf.Status,
			IsPrimary: cf.IsPrimary,
			Tags:      cf.Tags,
			OpenedAt:  cf.OpenedAt,
			ClosedAt:  cf.ClosedAt,
		}
	}
	return out, nil
}

// CaseFileEvents lists the client-visible events of one case file. Only
// public attachments are included, newest first.
func (s *PortalService) CaseFileEvents(ctx context.Context, user *model.User, caseFileID uint, workspaceSlug string) ([]PortalEvent, error) {
	prometheus.RecordPortalQuery("casefile_events")
	clients, err := s.resolver.RequirePortal(ctx, user, workspaceSlug)
	if err != nil {
		return nil, err
	}

	var n int64
	err = repository.DB(ctx, s.db).Model(&model.CaseFile{}).
		Where("id = ? AND client_id IN ?", caseFileID, tenancy.ClientIDs(clients)).
		Count(&n).Error
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("case file not found for this client")
	}

	var rows []model.CaseEvent
	err = repository.DB(ctx, s.db).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_private = ?", false).Order("uploaded_at DESC, id DESC")
		}).
		Where("case_file_id = ? AND visible_to_client = ?", caseFileID, true).
		Order("happened_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]PortalEvent, len(rows))
	for i, ev := range rows {
		atts := make([]PortalAttachment, 0, len(ev.Attachments))
		for _, a := range ev.Attachments {
			if a.IsPrivate {
				continue
			}
			atts = append(atts, PortalAttachment{
				ID:           a.ID,
				OriginalName: a.OriginalName,
				MimeType:     a.MimeType,
				SizeBytes:    a.SizeBytes,
				UploadedAt:   a.UploadedAt,
				FileURL:      s.store.URL(a.StorageKey),
			})
		}
		out[i] = PortalEvent{
			ID:          ev.ID,
			EventType:   ev.EventType,
			Title:       ev.Title,
			Body:        ev.Body,
			HappenedAt:  ev.HappenedAt,
			Attachments: atts,
		}
	}
	return out, nil
}
