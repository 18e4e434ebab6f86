package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/internal/tenancy"
)

const consultationNotFound = "consultation not found"

type ConsultationInput struct {
	Client          *uint                  `json:"client"`
	Professional    *uint                  `json:"professional"`
	Appointment     *uint                  `json:"appointment"`
	Title           *string                `json:"title"`
	Notes           *string                `json:"notes"`
	ExtraData       map[string]interface{} `json:"extra_data"`
	VisibleToClient *bool                  `json:"visible_to_client"`
}

type ConsultationFilter struct {
	ClientID *uint
}

type ConsultationService struct {
	db       *gorm.DB
	resolver *tenancy.Resolver
	store    *repository.Scoped[model.Consultation]
	log      *zap.Logger
}

func NewConsultationService(db *gorm.DB, resolver *tenancy.Resolver, log *zap.Logger) *ConsultationService {
	return &ConsultationService{
		db:       db,
		resolver: resolver,
		store:    repository.NewScoped[model.Consultation](db),
		log:      log,
	}
}

func (s *ConsultationService) List(ctx context.Context, user *model.User, f ConsultationFilter) ([]model.Consultation, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	filters := []repository.Scope{repository.OrderBy("created_at DESC, id DESC")}
	if f.ClientID != nil {
		filters = append(filters, repository.Where("client_id = ?", *f.ClientID))
	}
	return s.store.List(ctx, scope.Filter("workspace_id"), filters...)
}

func (s *ConsultationService) Get(ctx context.Context, user *model.User, id uint) (*model.Consultation, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	cons, err := s.store.Get(ctx, scope.Filter("workspace_id"), id)
	if err != nil {
		return nil, notFound(err, consultationNotFound)
	}
	return cons, nil
}

func (s *ConsultationService) Create(ctx context.Context, user *model.User, in ConsultationInput) (*model.Consultation, error) {
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

	cons := model.Consultation{
		WorkspaceID:     ws.ID,
		ProfessionalID:  &user.ID,
		ExtraData:       datatypes.JSONMap{},
		VisibleToClient: true,
	}
	if err := s.apply(ctx, &cons, in); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, &cons); err != nil {
		return nil, err
	}
	return &cons, nil
}

func (s *ConsultationService) Update(ctx context.Context, user *model.User, id uint, in ConsultationInput) (*model.Consultation, error) {
	cons, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, cons, in); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, cons); err != nil {
		return nil, err
	}
	return cons, nil
}

func (s *ConsultationService) Delete(ctx context.Context, user *model.User, id uint) error {
	cons, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, cons)
}

func (s *ConsultationService) apply(ctx context.Context, cons *model.Consultation, in ConsultationInput) error {
	clientChanged := false
	if in.Client != nil {
		if _, err := belongsTo[model.Client](ctx, s.db, cons.WorkspaceID, *in.Client, "client"); err != nil {
			return err
		}
		clientChanged = cons.ClientID != *in.Client
		cons.ClientID = *in.Client
	}

	// A linked appointment must stay with the consultation's client,
	// whichever side of the link changed.
	apptID := in.Appointment
	if apptID == nil && clientChanged {
		apptID = cons.AppointmentID
	}
	if apptID != nil {
		appt, err := belongsTo[model.Appointment](ctx, s.db, cons.WorkspaceID, *apptID, "appointment")
		if err != nil {
			return err
		}
		if appt.ClientID != cons.ClientID {
			return apperr.FieldValidation("appointment", "appointment belongs to a different client")
		}
		cons.AppointmentID = apptID
	}
	if in.Professional != nil {
		if err := userExists(ctx, s.db, *in.Professional, "professional"); err != nil {
			return err
		}
		cons.ProfessionalID = in.Professional
	}
	if in.Title != nil {
		cons.Title = trimmed(in.Title)
	}
	if in.Notes != nil {
		cons.Notes = *in.Notes
	}
	if in.ExtraData != nil {
		cons.ExtraData = datatypes.JSONMap(in.ExtraData)
	}
	if in.VisibleToClient != nil {
		cons.VisibleToClient = *in.VisibleToClient
	}
	return nil
}
