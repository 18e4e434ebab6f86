package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"practice-service/internal/service"
)

func (h *Handler) ListConsultations(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	clientID, err := queryID(c, "client")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.Consultations.List(c.Request().Context(), user, service.ConsultationFilter{ClientID: clientID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetConsultation(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cons, err := h.svc.Consultations.Get(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) CreateConsultation(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.ConsultationInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	cons, err := h.svc.Consultations.Create(c.Request().Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cons)
}

func (h *Handler) UpdateConsultation(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.ConsultationInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	cons, err := h.svc.Consultations.Update(c.Request().Context(), user, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cons)
}

func (h *Handler) DeleteConsultation(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.Consultations.Delete(c.Request().Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
