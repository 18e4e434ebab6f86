package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/clock"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/internal/storage"
	"practice-service/internal/tenancy"
	"practice-service/prometheus"
)

const (
	caseFileNotFound   = "case file not found"
	caseEventNotFound  = "case event not found"
	attachmentNotFound = "attachment not found"
)

const eventsCountSelect = "case_files.*, (SELECT COUNT(*) FROM case_events WHERE case_events.case_file_id = case_files.id) AS events_count"

type CaseFileInput struct {
	Client    *uint                  `json:"client"`
	Title     *string                `json:"title"`
	Status    *string                `json:"status"`
	IsPrimary *bool                  `json:"is_primary"`
	Tags      []string               `json:"tags"`
	ExtraData map[string]interface{} `json:"extra_data"`
	OpenedAt  *time.Time             `json:"opened_at"`
	ClosedAt  *time.Time             `json:"closed_at"`
}

type CaseFileFilter struct {
	ClientID *uint
}

type CaseEventInput struct {
	CaseFile        *uint                  `json:"casefile"`
	Appointment     *uint                  `json:"appointment"`
	Consultation    *uint                  `json:"consultation"`
	EventType       *string                `json:"event_type"`
	Title           *string                `json:"title"`
	Body            *string                `json:"body"`
	HappenedAt      *time.Time             `json:"happened_at"`
	VisibleToClient *bool                  `json:"visible_to_client"`
	ExtraData       map[string]interface{} `json:"extra_data"`
}

type CaseEventFilter struct {
	CaseFileID *uint
}

type AttachmentFilter struct {
	CaseFileID *uint
	EventID    *uint
}

// Upload is one file received for an event. Metadata comes from the
// upload itself, never from caller-supplied fields.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// CaseFileService manages case files, their events and the attachments
// hanging off those events.
type CaseFileService struct {
	db             *gorm.DB
	resolver       *tenancy.Resolver
	files          *repository.Scoped[model.CaseFile]
	events         *repository.Scoped[model.CaseEvent]
	attachments    *repository.Scoped[model.CaseAttachment]
	store          storage.Store
	clock          clock.Clock
	maxUploadBytes int64
	log            *zap.Logger
}

func NewCaseFileService(db *gorm.DB, resolver *tenancy.Resolver, store storage.Store, clk clock.Clock, maxUploadBytes int64, log *zap.Logger) *CaseFileService {
	return &CaseFileService{
		db:             db,
		resolver:       resolver,
		files:          repository.NewScoped[model.CaseFile](db),
		events:         repository.NewScoped[model.CaseEvent](db),
		attachments:    repository.NewScoped[model.CaseAttachment](db),
		store:          store,
		clock:          clk,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Case files

func (s *CaseFileService) ListCaseFiles(ctx context.Context, user *model.User, f CaseFileFilter) ([]model.CaseFile, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	filters := []repository.Scope{
		withEventsCount,
		repository.OrderBy("case_files.opened_at DESC, case_files.id DESC"),
	}
	if f.ClientID != nil {
		filters = append(filters, repository.Where("case_files.client_id = ?", *f.ClientID))
	}
	return s.files.List(ctx, scope.Filter("case_files.workspace_id"), filters...)
}

func (s *CaseFileService) GetCaseFile(ctx context.Context, user *model.User, id uint) (*model.CaseFile, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.getCaseFile(ctx, scope, id)
}

func (s *CaseFileService) getCaseFile(ctx context.Context, scope tenancy.StaffScope, id uint) (*model.CaseFile, error) {
	cf, err := s.files.Get(ctx, func(db *gorm.DB) *gorm.DB {
		return withEventsCount(scope.Apply(db, "case_files.workspace_id"))
	}, id)
	if err != nil {
		return nil, notFound(err, caseFileNotFound)
	}
	return cf, nil
}

func (s *CaseFileService) CreateCaseFile(ctx context.Context, user *model.User, in CaseFileInput) (*model.CaseFile, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	ws, err := scope.RequireCurrent()
	if err != nil {
		return nil, err
	}
	if in.Client == nil {
		return nil, apperr.FieldValidation("client", "client is required")
	}
	if trimmed(in.Title) == "" {
		return nil, apperr.FieldValidation("title", "title is required")
	}

	cf := model.CaseFile{
		WorkspaceID: ws.ID,
		Status:      model.CaseOpen,
		Tags:        datatypes.JSON("[]"),
		ExtraData:   datatypes.JSONMap{},
		OpenedAt:    s.clock.Now(),
	}
	if err := s.applyCaseFile(ctx, &cf, in); err != nil {
		return nil, err
	}
	if err := s.files.Create(ctx, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

func (s *CaseFileService) UpdateCaseFile(ctx context.Context, user *model.User, id uint, in CaseFileInput) (*model.CaseFile, error) {
	cf, err := s.GetCaseFile(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil && trimmed(in.Title) == "" {
		return nil, apperr.FieldValidation("title", "title is required")
	}
	if err := s.applyCaseFile(ctx, cf, in); err != nil {
		return nil, err
	}
	if err := s.files.Save(ctx, cf); err != nil {
		return nil, err
	}
	return cf, nil
}

// DeleteCaseFile removes the case file with its events and attachments,
// then the attachment blobs.
func (s *CaseFileService) DeleteCaseFile(ctx context.Context, user *model.User, id uint) error {
	cf, err := s.GetCaseFile(ctx, user, id)
	if err != nil {
		return err
	}

	var keys []string
	if err := repository.DB(ctx, s.db).Model(&model.CaseAttachment{}).
		Where("case_file_id = ?", cf.ID).Pluck("storage_key", &keys).Error; err != nil {
		return err
	}
	err = repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Where("case_file_id = ?", cf.ID).Delete(&model.CaseAttachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("case_file_id = ?", cf.ID).Delete(&model.CaseEvent{}).Error; err != nil {
			return err
		}
		return s.files.Delete(ctx, cf)
	})
	if err != nil {
		return err
	}
	s.removeBlobs(ctx, keys)
	return nil
}

func (s *CaseFileService) applyCaseFile(ctx context.Context, cf *model.CaseFile, in CaseFileInput) error {
	if in.Client != nil {
		if _, err := belongsTo[model.Client](ctx, s.db, cf.WorkspaceID, *in.Client, "client"); err != nil {
			return err
		}
		cf.ClientID = *in.Client
	}
	if in.Title != nil {
		cf.Title = trimmed(in.Title)
	}
	if in.Status != nil {
		st, err := model.NormalizeCaseStatus(*in.Status)
		if err != nil {
			return apperr.FieldValidation("status", err.Error())
		}
		cf.Status = st
	}
	if in.IsPrimary != nil {
		cf.IsPrimary = *in.IsPrimary
	}
	if in.Tags != nil {
		raw, err := json.Marshal(in.Tags)
		if err != nil {
			return apperr.FieldValidation("tags", "tags must be a list of strings")
		}
		cf.Tags = datatypes.JSON(raw)
	}
	if in.ExtraData != nil {
		cf.ExtraData = datatypes.JSONMap(in.ExtraData)
	}
	if in.OpenedAt != nil {
		cf.OpenedAt = in.OpenedAt.UTC()
	}
	if in.ClosedAt != nil {
		closed := in.ClosedAt.UTC()
		cf.ClosedAt = &closed
	}
	if cf.Status == model.CaseClosed && cf.ClosedAt == nil {
		now := s.clock.Now()
		cf.ClosedAt = &now
	}
	return nil
}

func withEventsCount(db *gorm.DB) *gorm.DB {
	return db.Select(eventsCountSelect)
}

// Case events

func (s *CaseFileService) ListEvents(ctx context.Context, user *model.User, f CaseEventFilter) ([]model.CaseEvent, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	filters := []repository.Scope{
		repository.Preload("Attachments", orderAttachments),
		repository.OrderBy("happened_at DESC, id DESC"),
	}
	if f.CaseFileID != nil {
		filters = append(filters, repository.Where("case_file_id = ?", *f.CaseFileID))
	}
	events, err := s.events.List(ctx, scope.Filter("workspace_id"), filters...)
	if err != nil {
		return nil, err
	}
	for i := range events {
		s.fillURLs(events[i].Attachments)
	}
	return events, nil
}

func (s *CaseFileService) GetEvent(ctx context.Context, user *model.User, id uint) (*model.CaseEvent, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.getEvent(ctx, scope, id)
}

func (s *CaseFileService) getEvent(ctx context.Context, scope tenancy.StaffScope, id uint) (*model.CaseEvent, error) {
	ev, err := s.events.Get(ctx, func(db *gorm.DB) *gorm.DB {
		return scope.Apply(db, "workspace_id").Preload("Attachments", orderAttachments)
	}, id)
	if err != nil {
		return nil, notFound(err, caseEventNotFound)
	}
	s.fillURLs(ev.Attachments)
	return ev, nil
}

// CreateEvent records an event in a case file of the caller's current
// workspace. The author is always the caller.
func (s *CaseFileService) CreateEvent(ctx context.Context, user *model.User, in CaseEventInput) (*model.CaseEvent, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	ws, err := scope.RequireCurrent()
	if err != nil {
		return nil, err
	}
	if in.CaseFile == nil {
		return nil, apperr.FieldValidation("casefile", "casefile is required")
	}

	ev := model.CaseEvent{
		WorkspaceID: ws.ID,
		EventType:   model.DefaultEventType,
		CreatedByID: &user.ID,
		ExtraData:   datatypes.JSONMap{},
	}
	if err := s.applyEvent(ctx, &ev, in); err != nil {
		return nil, err
	}
	if ev.HappenedAt.IsZero() {
		ev.HappenedAt = s.clock.Now()
	}

	if err := s.events.Create(ctx, &ev); err != nil {
		return nil, err
	}
	ev.Attachments = []model.CaseAttachment{}
	return &ev, nil
}

func (s *CaseFileService) UpdateEvent(ctx context.Context, user *model.User, id uint, in CaseEventInput) (*model.CaseEvent, error) {
	ev, err := s.GetEvent(ctx, user, id)
	if err != nil {
		return nil, err
	}
	prevCaseFile := ev.CaseFileID
	if err := s.applyEvent(ctx, ev, in); err != nil {
		return nil, err
	}

	err = repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.events.Save(ctx, ev); err != nil {
			return err
		}
		if ev.CaseFileID == prevCaseFile {
			return nil
		}
		// Attachments follow their event into the new case file.
		return tx.Model(&model.CaseAttachment{}).
			Where("event_id = ?", ev.ID).
			Update("case_file_id", ev.CaseFileID).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range ev.Attachments {
		ev.Attachments[i].CaseFileID = ev.CaseFileID
	}
	return ev, nil
}

func (s *CaseFileService) DeleteEvent(ctx context.Context, user *model.User, id uint) error {
	ev, err := s.GetEvent(ctx, user, id)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ev.Attachments))
	for _, a := range ev.Attachments {
		keys = append(keys, a.StorageKey)
	}
	err = repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", ev.ID).Delete(&model.CaseAttachment{}).Error; err != nil {
			return err
		}
		return s.events.Delete(ctx, ev)
	})
	if err != nil {
		return err
	}
	s.removeBlobs(ctx, keys)
	return nil
}

func (s *CaseFileService) applyEvent(ctx context.Context, ev *model.CaseEvent, in CaseEventInput) error {
	if in.CaseFile != nil {
		if _, err := belongsTo[model.CaseFile](ctx, s.db, ev.WorkspaceID, *in.CaseFile, "casefile"); err != nil {
			return err
		}
		ev.CaseFileID = *in.CaseFile
	}
	if in.Appointment != nil {
		if _, err := belongsTo[model.Appointment](ctx, s.db, ev.WorkspaceID, *in.Appointment, "appointment"); err != nil {
			return err
		}
		ev.AppointmentID = in.Appointment
	}
	if in.Consultation != nil {
		if _, err := belongsTo[model.Consultation](ctx, s.db, ev.WorkspaceID, *in.Consultation, "consultation"); err != nil {
			return err
		}
		ev.ConsultationID = in.Consultation
	}
	if in.EventType != nil {
		if t := trimmed(in.EventType); t != "" {
			ev.EventType = t
		}
	}
	if in.Title != nil {
		ev.Title = trimmed(in.Title)
	}
	if in.Body != nil {
		ev.Body = *in.Body
	}
	if in.HappenedAt != nil {
		ev.HappenedAt = in.HappenedAt.UTC()
	}
	if in.VisibleToClient != nil {
		ev.VisibleToClient = *in.VisibleToClient
	}
	if in.ExtraData != nil {
		ev.ExtraData = datatypes.JSONMap(in.ExtraData)
	}
	return nil
}

// Attachments

// UploadAttachments stores files for an event. Workspace and case file
// are copied from the event. Blobs are removed again if the rows cannot
// be written.
func (s *CaseFileService) UploadAttachments(ctx context.Context, user *model.User, eventID uint, uploads []Upload, isPrivate bool) ([]model.CaseAttachment, error) {
	ev, err := s.GetEvent(ctx, user, eventID)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, apperr.FieldValidation("file", "send 'file' or 'files' as multipart/form-data")
	}
	for _, up := range uploads {
		if s.maxUploadBytes > 0 && up.Size > s.maxUploadBytes {
			return nil, apperr.FieldValidation("file", up.Name+" exceeds the upload size limit")
		}
	}

	now := s.clock.Now()
	rows := make([]model.CaseAttachment, 0, len(uploads))
	var keys []string
	for _, up := range uploads {
		key, size, err := s.saveUpload(ctx, up)
		if err != nil {
			s.removeBlobs(ctx, keys)
			return nil, err
		}
		keys = append(keys, key)
		rows = append(rows, model.CaseAttachment{
			WorkspaceID:  ev.WorkspaceID,
			CaseFileID:   ev.CaseFileID,
			EventID:      ev.ID,
			StorageKey:   key,
			OriginalName: up.Name,
			MimeType:     up.ContentType,
			SizeBytes:    size,
			UploadedByID: &user.ID,
			UploadedAt:   now,
			IsPrivate:    isPrivate,
		})
	}

	err = repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		for i := range rows {
			if err := s.attachments.Create(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.removeBlobs(ctx, keys)
		return nil, err
	}

	s.fillURLs(rows)
	s.log.Info("Attachments uploaded",
		zap.Uint("event_id", ev.ID),
		zap.Int("count", len(rows)),
		zap.Bool("private", isPrivate))
	return rows, nil
}

func (s *CaseFileService) saveUpload(ctx context.Context, up Upload) (string, int64, error) {
	defer prometheus.TrackDBOperation("blob_write")(time.Now())
	r, err := up.Open()
	if err != nil {
		return "", 0, err
	}
	defer r.Close()
	return s.store.Save(ctx, up.Name, r)
}

func (s *CaseFileService) ListAttachments(ctx context.Context, user *model.User, f AttachmentFilter) ([]model.CaseAttachment, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	filters := []repository.Scope{repository.OrderBy("uploaded_at DESC, id DESC")}
	if f.CaseFileID != nil {
		filters = append(filters, repository.Where("case_file_id = ?", *f.CaseFileID))
	}
	if f.EventID != nil {
		filters = append(filters, repository.Where("event_id = ?", *f.EventID))
	}
	rows, err := s.attachments.List(ctx, scope.Filter("workspace_id"), filters...)
	if err != nil {
		return nil, err
	}
	s.fillURLs(rows)
	return rows, nil
}

func (s *CaseFileService) GetAttachment(ctx context.Context, user *model.User, id uint) (*model.CaseAttachment, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	a, err := s.attachments.Get(ctx, scope.Filter("workspace_id"), id)
	if err != nil {
		return nil, notFound(err, attachmentNotFound)
	}
	a.FileURL = s.store.URL(a.StorageKey)
	return a, nil
}

// OpenAttachment returns the attachment and a reader over its bytes.
// The caller closes the reader.
func (s *CaseFileService) OpenAttachment(ctx context.Context, user *model.User, id uint) (*model.CaseAttachment, io.ReadCloser, error) {
	a, err := s.GetAttachment(ctx, user, id)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.store.Open(ctx, a.StorageKey)
	if err != nil {
		s.log.Error("Attachment blob missing", zap.Uint("attachment_id", a.ID), zap.Error(err))
		return nil, nil, apperr.NotFound("attachment file not found")
	}
	return a, r, nil
}

func (s *CaseFileService) DeleteAttachment(ctx context.Context, user *model.User, id uint) error {
	a, err := s.GetAttachment(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.attachments.Delete(ctx, a); err != nil {
		return err
	}
	s.removeBlobs(ctx, []string{a.StorageKey})
	return nil
}

func (s *CaseFileService) fillURLs(rows []model.CaseAttachment) {
	for i := range rows {
		rows[i].FileURL = s.store.URL(rows[i].StorageKey)
	}
}

func (s *CaseFileService) removeBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			s.log.Warn("Failed to remove attachment blob", zap.String("key", key), zap.Error(err))
		}
	}
}

func orderAttachments(db *gorm.DB) *gorm.DB {
	return db.Order("uploaded_at DESC, id DESC")
}
