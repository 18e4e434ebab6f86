package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/internal/tenancy"
)

const appointmentNotFound = "appointment not found"

type AppointmentInput struct {
	Client         *uint      `json:"client"`
	Service        *uint      `json:"service"`
	Professional   *uint      `json:"professional"`
	Start          *time.Time `json:"start"`
	End            *time.Time `json:"end"`
	Status         *string    `json:"status"`
	Modality       *string    `json:"modality"`
	NotesInternal  *string    `json:"notes_internal"`
	NotesForClient *string    `json:"notes_for_client"`
}

type AppointmentFilter struct {
	ClientID *uint
}

type AppointmentService struct {
	db       *gorm.DB
	resolver *tenancy.Resolver
	store    *repository.Scoped[model.Appointment]
	log      *zap.Logger
}

func NewAppointmentService(db *gorm.DB, resolver *tenancy.Resolver, log *zap.Logger) *AppointmentService {
	return &AppointmentService{
		db:       db,
		resolver: resolver,
		store:    repository.NewScoped[model.Appointment](db),
		log:      log,
	}
}

func (s *AppointmentService) List(ctx context.Context, user *model.User, f AppointmentFilter) ([]model.Appointment, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	filters := []repository.Scope{repository.OrderBy("start, id")}
	if f.ClientID != nil {
		filters = append(filters, repository.Where("client_id = ?", *f.ClientID))
	}
	return s.store.List(ctx, scope.Filter("workspace_id"), filters...)
}

func (s *AppointmentService) Get(ctx context.Context, user *model.User, id uint) (*model.Appointment, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	appt, err := s.store.Get(ctx, scope.Filter("workspace_id"), id)
	if err != nil {
		return nil, notFound(err, appointmentNotFound)
	}
	return appt, nil
}

// Create books an appointment in the caller's current workspace. A
// missing end is derived from the service duration.
func (s *AppointmentService) Create(ctx context.Context, user *model.User, in AppointmentInput) (*model.Appointment, error) {
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
	if in.Start == nil {
		return nil, apperr.FieldValidation("start", "start is required")
	}

	appt := model.Appointment{
		WorkspaceID:    ws.ID,
		ProfessionalID: &user.ID,
		Status:         model.AppointmentScheduled,
		Modality:       model.ModalityPresential,
	}
	if err := s.apply(ctx, &appt, in); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, &appt); err != nil {
		return nil, err
	}
	s.log.Info("Appointment created", zap.Uint("appointment_id", appt.ID), zap.Uint("workspace_id", appt.WorkspaceID))
	return &appt, nil
}

func (s *AppointmentService) Update(ctx context.Context, user *model.User, id uint, in AppointmentInput) (*model.Appointment, error) {
	appt, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, appt, in); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *AppointmentService) Delete(ctx context.Context, user *model.User, id uint) error {
	appt, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, appt)
}

func (s *AppointmentService) apply(ctx context.Context, appt *model.Appointment, in AppointmentInput) error {
	if in.Client != nil {
		if _, err := belongsTo[model.Client](ctx, s.db, appt.WorkspaceID, *in.Client, "client"); err != nil {
			return err
		}
		appt.ClientID = *in.Client
	}

	var svc *model.Service
	if in.Service != nil {
		found, err := belongsTo[model.Service](ctx, s.db, appt.WorkspaceID, *in.Service, "service")
		if err != nil {
			return err
		}
		svc = found
		appt.ServiceID = in.Service
	} else if appt.ServiceID != nil {
		found, err := belongsTo[model.Service](ctx, s.db, appt.WorkspaceID, *appt.ServiceID, "service")
		if err != nil {
			return err
		}
		svc = found
	}

	if in.Professional != nil {
		if err := userExists(ctx, s.db, *in.Professional, "professional"); err != nil {
			return err
		}
		appt.ProfessionalID = in.Professional
	}

	if in.Start != nil {
		appt.Start = in.Start.UTC()
	}
	switch {
	case in.End != nil:
		appt.End = in.End.UTC()
	case in.Start != nil || appt.End.IsZero():
		appt.End = appt.Start.Add(time.Duration(svc.Duration()) * time.Minute)
	}
	if appt.End.Before(appt.Start) {
		return apperr.FieldValidation("end", "end must not be before start")
	}

	if in.Status != nil {
		st, err := model.ParseAppointmentStatus(*in.Status)
		if err != nil {
			return apperr.FieldValidation("status", err.Error())
		}
		appt.Status = st
	}
	if in.Modality != nil {
		m, err := model.ParseModality(*in.Modality)
		if err != nil {
			return apperr.FieldValidation("modality", err.Error())
		}
		appt.Modality = m
	}
	if in.NotesInternal != nil {
		appt.NotesInternal = *in.NotesInternal
	}
	if in.NotesForClient != nil {
		appt.NotesForClient = *in.NotesForClient
	}
	return nil
}
