package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"practice-service/internal/apperr"
	"practice-service/internal/clock"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/internal/tenancy"
	"practice-service/pkg/jwtutil"
	"practice-service/prometheus"
)

const (
	invitationNotFound = "invitation not found"
	invitationInvalid  = "invitation has expired or is no longer valid"
)

// IssuedInvitation is an invitation together with the link sent to the client.
type IssuedInvitation struct {
	*model.ClientInvitation
	InviteURL string `json:"invite_url"`
}

// InvitationView is the staff projection of an invitation.
type InvitationView struct {
	model.ClientInvitation
	Status model.InvitationStatus `json:"status"`
}

// VerifiedInvitation is what an unauthenticated caller learns from a token.
type VerifiedInvitation struct {
	Workspace *model.Workspace `json:"workspace"`
	Client    *model.Client    `json:"client"`
}

// AcceptInput is the body of an accept request. Email falls back to the
// client's stored address when blank.
type AcceptInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// AcceptResult carries the fresh session of the linked portal identity.
type AcceptResult struct {
	Access      string           `json:"access"`
	Refresh     string           `json:"refresh"`
	Client      *model.Client    `json:"client"`
	Workspace   *model.Workspace `json:"workspace"`
	UserCreated bool             `json:"user_created"`
}

type InvitationService struct {
	db          *gorm.DB
	resolver    *tenancy.Resolver
	jwt         *jwtutil.JWTUtil
	clock       clock.Clock
	ttl         time.Duration
	frontendURL string
	log         *zap.Logger
}

func NewInvitationService(db *gorm.DB, resolver *tenancy.Resolver, jwt *jwtutil.JWTUtil, clk clock.Clock, ttl time.Duration, frontendURL string, log *zap.Logger) *InvitationService {
	if ttl <= 0 {
		ttl = model.DefaultInvitationTTL
	}
	return &InvitationService{
		db:          db,
		resolver:    resolver,
		jwt:         jwt,
		clock:       clk,
		ttl:         ttl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// InviteURL builds the portal link for token in the workspace with slug.
func (s *InvitationService) InviteURL(slug, token string) string {
	return fmt.Sprintf("%s/portal/%s/invite/%s", s.frontendURL, slug, token)
}

// Issue creates a new invitation for a client inside the caller's scope.
// Earlier invitations for the same client stay valid.
func (s *InvitationService) Issue(ctx context.Context, user *model.User, clientID uint) (*IssuedInvitation, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}

	var client model.Client
	err = scope.Apply(repository.DB(ctx, s.db), "clients.workspace_id").
		Preload("Workspace").
		Where("clients.id = ?", clientID).
		First(&client).Error
	if err != nil {
		prometheus.RecordInvitationOperation("issue", "not_found")
		return nil, notFound(err, "client not found")
	}

	inv := model.ClientInvitation{
		WorkspaceID: client.WorkspaceID,
		ClientID:    client.ID,
		Token:       model.NewInvitationToken(),
		ExpiresAt:   s.clock.Now().Add(s.ttl),
		IsActive:    true,
	}
	if client.Email != "" {
		email := client.Email
		inv.Email = &email
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := repository.DB(ctx, s.db).Omit(clause.Associations).Create(&inv).Error; err != nil {
		prometheus.RecordInvitationOperation("issue", "error")
		return nil, err
	}

	prometheus.RecordInvitationOperation("issue", "ok")
	s.log.Info("Invitation issued",
		zap.Uint("invitation_id", inv.ID),
		zap.Uint("client_id", client.ID),
		zap.Uint("workspace_id", client.WorkspaceID))

	return &IssuedInvitation{
		ClientInvitation: &inv,
		InviteURL:        s.InviteURL(client.Workspace.Slug, inv.Token),
	}, nil
}

// Revoke deactivates a pending invitation without marking it accepted.
func (s *InvitationService) Revoke(ctx context.Context, user *model.User, invitationID uint) (*InvitationView, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}

	var inv model.ClientInvitation
	err = scope.Apply(repository.DB(ctx, s.db), "workspace_id").
		Where("id = ?", invitationID).
		First(&inv).Error
	if err != nil {
		return nil, notFound(err, invitationNotFound)
	}
	if inv.AcceptedAt != nil {
		prometheus.RecordInvitationOperation("revoke", "rejected")
		return nil, apperr.Validation("invitation has already been accepted")
	}

	if inv.IsActive {
		inv.IsActive = false
		if err := repository.DB(ctx, s.db).Model(&inv).Update("is_active", false).Error; err != nil {
			return nil, err
		}
	}

	prometheus.RecordInvitationOperation("revoke", "ok")
	s.log.Info("Invitation revoked", zap.Uint("invitation_id", inv.ID))
	return &InvitationView{ClientInvitation: inv, Status: inv.Status(s.clock.Now())}, nil
}

// ListForClient returns a client's invitations, newest first.
func (s *InvitationService) ListForClient(ctx context.Context, user *model.User, clientID uint) ([]InvitationView, error) {
	scope, err := s.resolver.Staff(ctx, user)
	if err != nil {
		return nil, err
	}

	var n int64
	if err := scope.Apply(repository.DB(ctx, s.db).Model(&model.Client{}), "workspace_id").
		Where("id = ?", clientID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.NotFound("client not found")
	}

	var rows []model.ClientInvitation
	if err := repository.DB(ctx, s.db).
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := make([]InvitationView, len(rows))
	for i := range rows {
		out[i] = InvitationView{ClientInvitation: rows[i], Status: rows[i].Status(now)}
	}
	return out, nil
}

// Verify returns the workspace and client an unexpired, unconsumed
// token belongs to.
func (s *InvitationService) Verify(ctx context.Context, token string) (*VerifiedInvitation, error) {
	inv, err := s.lookup(repository.DB(ctx, s.db), token, false)
	if err != nil {
		prometheus.RecordInvitationOperation("verify", outcomeOf(err))
		return nil, err
	}
	if !inv.IsValid(s.clock.Now()) {
		prometheus.RecordInvitationOperation("verify", "invalid")
		return nil, apperr.Validation(invitationInvalid)
	}

	prometheus.RecordInvitationOperation("verify", "ok")
	return &VerifiedInvitation{Workspace: inv.Workspace, Client: inv.Client}, nil
}

// Accept consumes the token: it finds or creates the user behind the
// email, links it as the client's portal identity and issues a session.
// Everything happens in one transaction; any failure leaves no trace.
func (s *InvitationService) Accept(ctx context.Context, token string, in AcceptInput) (*AcceptResult, error) {
	var result *AcceptResult

	err := repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		inv, err := s.lookup(tx, token, true)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if !inv.IsValid(now) {
			return apperr.Validation(invitationInvalid)
		}

		client := inv.Client
		email := model.NormalizeEmail(in.Email)
		if email == "" {
			email = model.NormalizeEmail(client.Email)
		}
		if email == "" || in.Password == "" {
			return apperr.Validation("email and password are required")
		}
		if in.Password != in.PasswordConfirm {
			return apperr.FieldValidation("password_confirm", "passwords do not match")
		}

		var user model.User
		created := false
		err = tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = model.User{Email: email, FullName: client.FullName, Role: model.RoleClient, IsActive: true}
			if err := user.SetPassword(in.Password); err != nil {
				return err
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		default:
			if !user.IsActive {
				return apperr.Validation("this account is disabled")
			}
			if !user.CheckPassword(in.Password) {
				return apperr.Validation("this email is already registered; use the existing password")
			}
		}

		updates := map[string]interface{}{"portal_user_id": user.ID}
		if client.Email == "" {
			updates["email"] = email
		}
		if err := tx.Model(&model.Client{}).Where("id = ?", client.ID).Updates(updates).Error; err != nil {
			return err
		}
		client.PortalUserID = &user.ID
		if client.Email == "" {
			client.Email = email
		}

		// The guard on is_active makes a concurrent consumer lose.
		res := tx.Model(&model.ClientInvitation{}).
			Where("id = ? AND is_active = ?", inv.ID, true).
			Updates(map[string]interface{}{"accepted_at": now, "is_active": false})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return apperr.Validation(invitationInvalid)
		}

		pair, err := s.jwt.IssuePair(user.ID, user.Email, string(user.Role))
		if err != nil {
			return err
		}

		result = &AcceptResult{
			Access:      pair.Access,
			Refresh:     pair.Refresh,
			Client:      client,
			Workspace:   inv.Workspace,
			UserCreated: created,
		}
		return nil
	})
	if err != nil {
		prometheus.RecordInvitationOperation("accept", outcomeOf(err))
		return nil, err
	}

	prometheus.RecordInvitationOperation("accept", "ok")
	prometheus.RecordIssuedTokens("invitation")
	s.log.Info("Invitation accepted",
		zap.Uint("client_id", result.Client.ID),
		zap.Uint("workspace_id", result.Workspace.ID),
		zap.Bool("user_created", result.UserCreated))
	return result, nil
}

// lookup loads the invitation with its workspace and client. With lock
// set the row is read FOR UPDATE where the dialect supports it.
func (s *InvitationService) lookup(db *gorm.DB, token string, lock bool) (*model.ClientInvitation, error) {
	if token == "" {
		return nil, apperr.NotFound(invitationNotFound)
	}

	q := db.Preload("Workspace").Preload("Client")
	if lock && db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var inv model.ClientInvitation
	err := q.Where("token = ?", token).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(invitationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
