// Package tenancy decides which workspaces a staff identity may act in
// and which client records a portal identity may read. Both answers are
// computed per request from the stored relations and never cached.
package tenancy

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/prometheus"
)

// ErrNoWorkspace is the message used when a staff identity resolves to nothing.
const ErrNoWorkspace = "no workspace associated with this user"

// ErrNoClient is the message used when a portal identity resolves to nothing.
const ErrNoClient = "no client associated with this user"

type Resolver struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewResolver(db *gorm.DB, log *zap.Logger) *Resolver {
	return &Resolver{db: db, log: log}
}

// User loads the active account behind an authenticated request.
func (r *Resolver) User(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := repository.DB(ctx, r.db).Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("user not found or inactive")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Staff resolves the workspaces user may act within: the ones it owns
// plus the ones where it holds an active membership, ordered by
// (created_at, id). System admins additionally get an unrestricted scope.
func (r *Resolver) Staff(ctx context.Context, user *model.User) (StaffScope, error) {
	db := repository.DB(ctx, r.db)

	memberOf := db.Model(&model.WorkspaceMember{}).
		Select("workspace_id").
		Where("user_id = ? AND is_active = ?", user.ID, true)

	var workspaces []model.Workspace
	err := db.Where("owner_id = ?", user.ID).
		Or("id IN (?)", memberOf).
		Order("created_at, id").
		Find(&workspaces).Error
	if err != nil {
		r.log.Error("Failed to resolve staff workspaces", zap.Uint("user_id", user.ID), zap.Error(err))
		return StaffScope{}, err
	}

	if IsSystemAdmin(user) {
		prometheus.RecordTenancyResolution("admin")
		return StaffScope{All: true, Workspaces: workspaces}, nil
	}

	prometheus.RecordTenancyResolution("staff")
	return StaffScope{Workspaces: workspaces}, nil
}

// Portal resolves the active client records whose portal identity is
// user, optionally narrowed to the workspace with the given slug. The
// workspace of each client is preloaded.
func (r *Resolver) Portal(ctx context.Context, user *model.User, workspaceSlug string) ([]model.Client, error) {
	q := repository.DB(ctx, r.db).
		Preload("Workspace").
		Where("clients.portal_user_id = ? AND clients.is_active = ?", user.ID, true)

	if workspaceSlug != "" {
		q = q.Joins("JOIN workspaces ON workspaces.id = clients.workspace_id").
			Where("workspaces.slug = ?", workspaceSlug)
	}

	var clients []model.Client
	if err := q.Order("clients.id").Find(&clients).Error; err != nil {
		r.log.Error("Failed to resolve portal clients", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	prometheus.RecordTenancyResolution("portal")
	return clients, nil
}

// RequirePortal is Portal failing with NotFound when nothing resolves.
func (r *Resolver) RequirePortal(ctx context.Context, user *model.User, workspaceSlug string) ([]model.Client, error) {
	clients, err := r.Portal(ctx, user, workspaceSlug)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, apperr.NotFound(ErrNoClient)
	}
	return clients, nil
}

// ClientIDs returns the ids of clients in order.
func ClientIDs(clients []model.Client) []uint {
	ids := make([]uint, len(clients))
	for i := range clients {
		ids[i] = clients[i].ID
	}
	return ids
}
