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

const clientNotFound = "client not found"

// ClientInput carries the writable fields of a client. Nil fields are
// left unchanged on update. There is no workspace field: it is always
// taken from the caller's scope.
type ClientInput struct {
	FullName   *string `json:"full_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	DocumentID *string `json:"document_id"`
	BirthDate  *string `json:"birth_date"`
	Notes      *string `json:"notes"`
	IsActive   *bool   `json:"is_active"`
}

type ClientService struct {
	resolver *tenancy.Resolver
	store    *repository.Scoped[model.Client]
	log      *zap.Logger
}

func NewClientService(db *gorm.DB, resolver *tenancy.Resolver, log *zap.Logger) *ClientService {
	return &ClientService{
		resolver: resolver,
		store:    repository.NewScoped[model.Client](db),
		log:      log,
	}
}

func (s *ClientService) List(ctx context.Context, user *model.User) ([]model.Client, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, scope.Filter("workspace_id"), repository.OrderBy("full_name, id"))
}

func (s *ClientService) Get(ctx context.Context, user *model.User, id uint) (*model.Client, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	cl, err := s.store.Get(ctx, scope.Filter("workspace_id"), id)
	if err != nil {
		return nil, notFound(err, clientNotFound)
	}
	return cl, nil
}

func (s *ClientService) Create(ctx context.Context, user *model.User, in ClientInput) (*model.Client, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	ws, err := scope.RequireCurrent()
	if err != nil {
		return nil, err
	}

	cl := model.Client{WorkspaceID: ws.ID, IsActive: true}
	if err := s.apply(ctx, &cl, in); err != nil {
		return nil, err
	}
	if cl.FullName == "" {
		return nil, apperr.FieldValidation("full_name", "full name is required")
	}

	if err := s.store.Create(ctx, &cl); err != nil {
		return nil, err
	}
	s.log.Info("Client created", zap.Uint("client_id", cl.ID), zap.Uint("workspace_id", cl.WorkspaceID))
	return &cl, nil
}

func (s *ClientService) Update(ctx context.Context, user *model.User, id uint, in ClientInput) (*model.Client, error) {
	cl, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, cl, in); err != nil {
		return nil, err
	}
	if cl.FullName == "" {
		return nil, apperr.FieldValidation("full_name", "full name is required")
	}
	if err := s.store.Save(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

func (s *ClientService) Delete(ctx context.Context, user *model.User, id uint) error {
	cl, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, cl)
}

// apply copies in onto cl, enforcing email uniqueness inside cl's workspace.
func (s *ClientService) apply(ctx context.Context, cl *model.Client, in ClientInput) error {
	if in.FullName != nil {
		cl.FullName = trimmed(in.FullName)
	}
	if in.Email != nil {
		email := model.NormalizeEmail(*in.Email)
		if email != "" && email != cl.Email {
			taken, err := s.store.Exists(ctx, func(db *gorm.DB) *gorm.DB {
				return db.Where("workspace_id = ?", cl.WorkspaceID)
			}, "LOWER(email) = ? AND id <> ?", email, cl.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("email", "a client with this email already exists in this workspace")
			}
		}
		cl.Email = email
	}
	if in.Phone != nil {
		cl.Phone = trimmed(in.Phone)
	}
	if in.DocumentID != nil {
		cl.DocumentID = trimmed(in.DocumentID)
	}
	if in.BirthDate != nil {
		if raw := trimmed(in.BirthDate); raw == "" {
			cl.BirthDate = nil
		} else {
			d, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return apperr.FieldValidation("birth_date", "birth date must be formatted as YYYY-MM-DD")
			}
			cl.BirthDate = &d
		}
	}
	if in.Notes != nil {
		cl.Notes = *in.Notes
	}
	if in.IsActive != nil {
		cl.IsActive = *in.IsActive
	}
	return nil
}
