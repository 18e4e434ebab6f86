package service

import (
	"context"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/internal/tenancy"
)

const serviceNotFound = "service not found"

var pricePattern = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

type ServiceInput struct {
	Name                   *string `json:"name"`
	Description            *string `json:"description"`
	DefaultDurationMinutes *int    `json:"default_duration_minutes"`
	Price                  *string `json:"price"`
	IsActive               *bool   `json:"is_active"`
}

// CatalogService manages the bookable services of a workspace.
type CatalogService struct {
	resolver *tenancy.Resolver
	store    *repository.Scoped[model.Service]
	log      *zap.Logger
}

func NewCatalogService(db *gorm.DB, resolver *tenancy.Resolver, log *zap.Logger) *CatalogService {
	return &CatalogService{
		resolver: resolver,
		store:    repository.NewScoped[model.Service](db),
		log:      log,
	}
}

func (s *CatalogService) List(ctx context.Context, user *model.User) ([]model.Service, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, scope.Filter("workspace_id"), repository.OrderBy("name, id"))
}

func (s *CatalogService) Get(ctx context.Context, user *model.User, id uint) (*model.Service, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	svc, err := s.store.Get(ctx, scope.Filter("workspace_id"), id)
	if err != nil {
		return nil, notFound(err, serviceNotFound)
	}
	return svc, nil
}

func (s *CatalogService) Create(ctx context.Context, user *model.User, in ServiceInput) (*model.Service, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}
	ws, err := scope.RequireCurrent()
	if err != nil {
		return nil, err
	}

	svc := model.Service{
		WorkspaceID:            ws.ID,
		DefaultDurationMinutes: model.DefaultDurationMinutes,
		Price:                  "0.00",
		IsActive:               true,
	}
	if err := applyService(&svc, in); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *CatalogService) Update(ctx context.Context, user *model.User, id uint, in ServiceInput) (*model.Service, error) {
	svc, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := applyService(svc, in); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, user *model.User, id uint) error {
	svc, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, svc)
}

func applyService(svc *model.Service, in ServiceInput) error {
	if in.Name != nil {
		svc.Name = trimmed(in.Name)
	}
	if svc.Name == "" {
		return apperr.FieldValidation("name", "name is required")
	}
	if in.Description != nil {
		svc.Description = *in.Description
	}
	if in.DefaultDurationMinutes != nil {
		if *in.DefaultDurationMinutes <= 0 {
			return apperr.FieldValidation("default_duration_minutes", "duration must be a positive number of minutes")
		}
		svc.DefaultDurationMinutes = *in.DefaultDurationMinutes
	}
	if in.Price != nil {
		price := trimmed(in.Price)
		if !pricePattern.MatchString(price) {
			return apperr.FieldValidation("price", "price must be a decimal with at most two places")
		}
		svc.Price = price
	}
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}
	return nil
}
