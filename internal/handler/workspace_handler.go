package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"practice-service/internal/service"
)

func (h *Handler) MyWorkspace(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	ws, err := h.svc.Workspaces.Mine(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) ListWorkspaces(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Workspaces.List(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetWorkspace(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ws, err := h.svc.Workspaces.Get(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) CreateWorkspace(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.WorkspaceInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ws, err := h.svc.Workspaces.Create(c.Request().Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ws)
}

func (h *Handler) UpdateWorkspace(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.WorkspaceInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ws, err := h.svc.Workspaces.Update(c.Request().Context(), user, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}
