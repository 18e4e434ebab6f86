package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/internal/tenancy"
)

const workspaceNotFound = "workspace not found"

type WorkspaceInput struct {
	Name             *string `json:"name"`
	Niche            *string `json:"niche"`
	EnableVideoCalls *bool   `json:"enable_video_calls"`
}

type WorkspaceService struct {
	db       *gorm.DB
	resolver *tenancy.Resolver
	store    *repository.Scoped[model.Workspace]
	log      *zap.Logger
}

func NewWorkspaceService(db *gorm.DB, resolver *tenancy.Resolver, log *zap.Logger) *WorkspaceService {
	return &WorkspaceService{
		db:       db,
		resolver: resolver,
		store:    repository.NewScoped[model.Workspace](db),
		log:      log,
	}
}

func (s *WorkspaceService) List(ctx context.Context, user *model.User) ([]model.Workspace, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	if !scope.All {
		return scope.Workspaces, nil
	}
	return s.store.List(ctx, scope.Filter("id"), repository.OrderBy("created_at, id"))
}

func (s *WorkspaceService) Get(ctx context.Context, user *model.User, id uint) (*model.Workspace, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	ws, err := s.store.Get(ctx, scope.Filter("id"), id)
	if err != nil {
		return nil, notFound(err, workspaceNotFound)
	}
	return ws, nil
}

// Mine returns the workspace creates are attributed to.
func (s *WorkspaceService) Mine(ctx context.Context, user *model.User) (*model.Workspace, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	return scope.RequireCurrent()
}

// Create opens a workspace owned by user and makes sure the owner
// membership exists.
func (s *WorkspaceService) Create(ctx context.Context, user *model.User, in WorkspaceInput) (*model.Workspace, error) {
	if !tenancy.CanCreateWorkspace(user) {
		return nil, apperr.PermissionDenied("only professionals can create workspaces")
	}
	name := trimmed(in.Name)
	if name == "" {
		return nil, apperr.FieldValidation("name", "name is required")
	}
	niche, err := model.ParseNiche(valueOr(in.Niche, ""))
	if err != nil {
		return nil, apperr.FieldValidation("niche", err.Error())
	}

	ws := model.Workspace{
		OwnerID:          user.ID,
		Name:             name,
		Niche:            niche,
		EnableVideoCalls: valueOr(in.EnableVideoCalls, false),
	}
	err = repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		slugValue, err := uniqueSlug(tx, name)
		if err != nil {
			return err
		}
		ws.Slug = slugValue
		if err := s.store.Create(ctx, &ws); err != nil {
			return err
		}

		member := model.WorkspaceMember{WorkspaceID: ws.ID, UserID: user.ID}
		return tx.Where(&member).
			Attrs(model.WorkspaceMember{Role: model.MemberOwner, IsActive: true}).
			FirstOrCreate(&member).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Workspace created", zap.Uint("workspace_id", ws.ID), zap.String("slug", ws.Slug))
	return &ws, nil
}

// Update edits the settings of a workspace in scope. Only the owner or a
// system admin may do so.
func (s *WorkspaceService) Update(ctx context.Context, user *model.User, id uint, in WorkspaceInput) (*model.Workspace, error) {
	ws, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if !tenancy.CanManageWorkspace(user, ws) {
		return nil, apperr.PermissionDenied("only the owner can change workspace settings")
	}

	if in.Name != nil {
		name := trimmed(in.Name)
		if name == "" {
			return nil, apperr.FieldValidation("name", "name is required")
		}
		ws.Name = name
	}
	if in.Niche != nil {
		niche, err := model.ParseNiche(*in.Niche)
		if err != nil {
			return nil, apperr.FieldValidation("niche", err.Error())
		}
		ws.Niche = niche
	}
	if in.EnableVideoCalls != nil {
		ws.EnableVideoCalls = *in.EnableVideoCalls
	}

	if err := s.store.Save(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}
