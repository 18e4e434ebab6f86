package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"practice-service/internal/apperr"
	"practice-service/internal/service"
	"practice-service/pkg/logger"
)

// RegisterProfessional handles professional self-registration
func (h *Handler) RegisterProfessional(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}

	result, err := h.svc.Auth.RegisterProfessional(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	logger.FromContext(c).Info("Professional registered", zap.Uint("user_id", result.User.ID))
	return c.JSON(http.StatusCreated, result)
}

// Login handles user login
func (h *Handler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Email == "" || req.Password == "" {
		return respondError(c, apperr.Validation("email and password are required"))
	}

	pair, err := h.svc.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new pair
func (h *Handler) Refresh(c echo.Context) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Refresh == "" {
		return respondError(c, apperr.FieldValidation("refresh", "refresh token is required"))
	}

	pair, err := h.svc.Auth.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Me returns the caller's profile
func (h *Handler) Me(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, service.NewProfile(user))
}
