// Package service implements the staff and portal operations on top of
// the tenancy resolver and the scoped repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
)

// notFound translates a repository miss into the user-visible error.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

// belongsTo loads the row of T with id and checks it lives in
// workspaceID. A miss is reported as a validation error on field, never
// as a silent reassignment.
func belongsTo[T any](ctx context.Context, db *gorm.DB, workspaceID, id uint, field string) (*T, error) {
	var row T
	err := repository.DB(ctx, db).
		Where("id = ? AND workspace_id = ?", id, workspaceID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.FieldValidation(field, fmt.Sprintf("%s does not belong to this workspace", field))
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// uniqueSlug derives a workspace slug from name, appending -1, -2 ...
// until no workspace uses it.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "workspace"
	}
	if len(base) > 70 {
		base = strings.Trim(base[:70], "-")
	}

	candidate := base
	for i := 1; ; i++ {
		var n int64
		if err := tx.Model(&model.Workspace{}).Where("slug = ?", candidate).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// outcomeOf labels err for metrics.
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := apperr.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

// userExists validates a user reference supplied by the caller.
func userExists(ctx context.Context, db *gorm.DB, id uint, field string) error {
	var n int64
	if err := repository.DB(ctx, db).Model(&model.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.FieldValidation(field, fmt.Sprintf("%s not found", field))
	}
	return nil
}
