package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"practice-service/internal/service"
)

// ListAppointments accepts an optional ?client= filter.
func (h *Handler) ListAppointments(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	clientID, err := queryID(c, "client")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Appointments.List(c.Request().Context(), user, service.AppointmentFilter{ClientID: clientID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	appt, err := h.svc.Appointments.Get(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.AppointmentInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	appt, err := h.svc.Appointments.Create(c.Request().Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.AppointmentInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	appt, err := h.svc.Appointments.Update(c.Request().Context(), user, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Appointments.Delete(c.Request().Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
