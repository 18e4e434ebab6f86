package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Portal endpoints serve the client side of the relationship. Every one
// accepts an optional ?workspace_slug= to narrow to a single workspace.

func (h *Handler) PortalMe(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	entries, err := h.svc.Portal.Me(c.Request().Context(), user, c.QueryParam("workspace_slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) PortalAppointments(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Portal.Appointments(c.Request().Context(), user, c.QueryParam("workspace_slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) PortalConsultations(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Portal.Consultations(c.Request().Context(), user, c.QueryParam("workspace_slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) PortalCaseFiles(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Portal.CaseFiles(c.Request().Context(), user, c.QueryParam("workspace_slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) PortalCaseFileEvents(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Portal.CaseFileEvents(c.Request().Context(), user, id, c.QueryParam("workspace_slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
