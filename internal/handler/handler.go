package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
	"practice-service/internal/service"
	"practice-service/internal/tenancy"
	"practice-service/pkg/logger"
	"practice-service/prometheus"
)

// Services bundles what the HTTP handlers delegate to.
type Services struct {
	Resolver      *tenancy.Resolver
	Auth          *service.AuthService
	Workspaces    *service.WorkspaceService
	Clients       *service.ClientService
	Invitations   *service.InvitationService
	Catalog       *service.CatalogService
	Appointments  *service.AppointmentService
	Consultations *service.ConsultationService
	CaseFiles     *service.CaseFileService
	Portal        *service.PortalService
}

type Handler struct {
	svc Services
}

func New(svc Services) *Handler {
	return &Handler{svc: svc}
}

var errorStatus = map[apperr.Kind]int{
	apperr.KindNotFound:         http.StatusNotFound,
	apperr.KindValidation:       http.StatusBadRequest,
	apperr.KindPermissionDenied: http.StatusForbidden,
	apperr.KindConflict:         http.StatusConflict,
	apperr.KindUnauthorized:     http.StatusUnauthorized,
}

// respondError writes err as JSON. Errors outside the taxonomy are
// logged and reported as 500 without detail.
func respondError(c echo.Context, err error) error {
	log := logger.FromContext(c)

	if ae, ok := apperr.As(err); ok {
		prometheus.RecordAppError(string(ae.Kind))
		body := echo.Map{"error": ae.Message}
		if ae.Field != "" {
			body["field"] = ae.Field
		}
		log.Debug("Request rejected", zap.String("kind", string(ae.Kind)), zap.String("field", ae.Field))
		return c.JSON(errorStatus[ae.Kind], body)
	}

	prometheus.RecordAppError("internal")
	log.Error("Unexpected error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// currentUser loads the active account behind the access token.
func (h *Handler) currentUser(c echo.Context) (*model.User, error) {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return nil, apperr.Unauthorized("authentication required")
	}
	return h.svc.Resolver.User(c.Request().Context(), userID)
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, apperr.NotFound("invalid " + name)
	}
	return uint(id), nil
}

// queryID parses an optional numeric query parameter.
func queryID(c echo.Context, name string) (*uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, apperr.FieldValidation(name, name+" must be a numeric id")
	}
	v := uint(id)
	return &v, nil
}

func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return apperr.Validation("invalid request body")
		}
		return apperr.Validation(err.Error())
	}
	return nil
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "practice-service",
	})
}

// MetricsHandler exposes the Prometheus registry.
func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
