package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/repository"
	"practice-service/pkg/jwtutil"
	"practice-service/prometheus"
)

const minPasswordLength = 8

const invalidCredentials = "invalid credentials"

// RegisterInput is the payload of a professional self-registration.
type RegisterInput struct {
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Password      string `json:"password"`
	Password2     string `json:"password2"`
	WorkspaceName string `json:"workspace_name"`
	Niche         string `json:"niche"`
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
	User      Profile          `json:"user"`
	Workspace *model.Workspace `json:"workspace"`
	Tokens    *jwtutil.Pair    `json:"tokens"`
}

// Profile is the public projection of a user.
type Profile struct {
	ID         uint           `json:"id"`
	Email      string         `json:"email"`
	FullName   string         `json:"full_name"`
	Role       model.UserRole `json:"role"`
	DateJoined time.Time      `json:"date_joined"`
}

func NewProfile(u *model.User) Profile {
	return Profile{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, DateJoined: u.DateJoined}
}

type AuthService struct {
	db  *gorm.DB
	jwt *jwtutil.JWTUtil
	log *zap.Logger
}

func NewAuthService(db *gorm.DB, jwt *jwtutil.JWTUtil, log *zap.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, log: log}
}

// RegisterProfessional creates the user, its workspace and the owner
// membership in one transaction.
func (s *AuthService) RegisterProfessional(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := model.NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.FieldValidation("email", "email is required")
	}
	if err := checkPasswords(in.Password, in.Password2, "password2"); err != nil {
		return nil, err
	}
	if in.WorkspaceName == "" {
		return nil, apperr.FieldValidation("workspace_name", "workspace name is required")
	}
	niche, err := model.ParseNiche(in.Niche)
	if err != nil {
		return nil, apperr.FieldValidation("niche", err.Error())
	}

	var result RegisterResult
	err = repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("email", "a user with this email already exists")
		}

		user := model.User{Email: email, FullName: in.FullName, Role: model.RoleProfessional, IsActive: true}
		if err := user.SetPassword(in.Password); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		slugValue, err := uniqueSlug(tx, in.WorkspaceName)
		if err != nil {
			return err
		}
		ws := model.Workspace{OwnerID: user.ID, Name: in.WorkspaceName, Slug: slugValue, Niche: niche}
		if err := tx.Create(&ws).Error; err != nil {
			return err
		}

		member := model.WorkspaceMember{WorkspaceID: ws.ID, UserID: user.ID, Role: model.MemberOwner, IsActive: true}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		pair, err := s.jwt.IssuePair(user.ID, user.Email, string(user.Role))
		if err != nil {
			return err
		}

		result = RegisterResult{User: NewProfile(&user), Workspace: &ws, Tokens: pair}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordIssuedTokens("register")
	s.log.Info("Professional registered",
		zap.Uint("user_id", result.User.ID),
		zap.String("workspace", result.Workspace.Slug))
	return &result, nil
}

// Login exchanges credentials for a token pair. Every mismatch reports
// the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*jwtutil.Pair, error) {
	var user model.User
	err := repository.DB(ctx, s.db).Where("email = ?", model.NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validation(invalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, apperr.Validation(invalidCredentials)
	}

	pair, err := s.jwt.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	prometheus.RecordIssuedTokens("login")
	return pair, nil
}

// Refresh trades a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwtutil.Pair, error) {
	claims, err := s.jwt.ValidateTyped(refreshToken, jwtutil.TokenRefresh)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired refresh token")
	}

	var user model.User
	err = repository.DB(ctx, s.db).Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("user not found or inactive")
	}
	if err != nil {
		return nil, err
	}

	pair, err := s.jwt.IssuePair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	prometheus.RecordIssuedTokens("refresh")
	return pair, nil
}

// CreateSystemAdmin creates an account that sees every workspace.
func (s *AuthService) CreateSystemAdmin(ctx context.Context, email, fullName, password string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.FieldValidation("email", "email is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.FieldValidation("password", "password must be at least 8 characters")
	}

	user := model.User{Email: email, FullName: fullName, Role: model.RoleSystemAdmin, IsActive: true, IsStaff: true}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	err := repository.Transaction(ctx, s.db, func(ctx context.Context, tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("email", "a user with this email already exists")
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("System admin created", zap.Uint("user_id", user.ID))
	return &user, nil
}

func checkPasswords(password, confirm, confirmField string) error {
	if password == "" {
		return apperr.FieldValidation("password", "password is required")
	}
	if len(password) < minPasswordLength {
		return apperr.FieldValidation("password", "password must be at least 8 characters")
	}
	if password != confirm {
		return apperr.FieldValidation(confirmField, "passwords do not match")
	}
	return nil
}
