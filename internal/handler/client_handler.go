package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"practice-service/internal/service"
	"practice-service/pkg/logger"
)

func (h *Handler) ListClients(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Clients.List(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetClient(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cl, err := h.svc.Clients.Get(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) CreateClient(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ClientInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	cl, err := h.svc.Clients.Create(c.Request().Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) UpdateClient(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.ClientInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	cl, err := h.svc.Clients.Update(c.Request().Context(), user, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) DeleteClient(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Clients.Delete(c.Request().Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// InviteClient issues a portal invitation for a client
func (h *Handler) InviteClient(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	inv, err := h.svc.Invitations.Issue(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	logger.FromContext(c).Info("Client invited", zap.Uint("client_id", id), zap.Uint("invitation_id", inv.ID))
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) ListClientInvitations(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Invitations.ListForClient(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) RevokeInvitation(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	inv, err := h.svc.Invitations.Revoke(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, inv)
}
