package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"practice-service/internal/service"
)

// VerifyInvitation is public: the token in the path is the only credential.
func (h *Handler) VerifyInvitation(c echo.Context) error {
	res, err := h.svc.Invitations.Verify(c.Request().Context(), c.Param("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// AcceptInvitation is public and returns a fresh session on success.
func (h *Handler) AcceptInvitation(c echo.Context) error {
	var req service.AcceptInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	res, err := h.svc.Invitations.Accept(c.Request().Context(), c.Param("token"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
