package handler

import (
	"github.com/labstack/echo/v4"

	"practice-service/internal/middleware"
	"practice-service/pkg/jwtutil"
)

// RegisterRoutes mounts every public and authenticated route on e.
func RegisterRoutes(e *echo.Echo, h *Handler, jwt *jwtutil.JWTUtil) {
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)

	// Public routes
	auth := e.Group("/api/auth")
	auth.POST("/register/professional", h.RegisterProfessional)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)

	publicInvites := e.Group("/api/client-portal/invitations")
	publicInvites.GET("/:token", h.VerifyInvitation)
	publicInvites.POST("/:token/accept", h.AcceptInvitation)

	// Authenticated routes
	api := e.Group("/api", middleware.AuthMiddleware(jwt))

	api.GET("/users/me", h.Me)
	api.GET("/me/workspace", h.MyWorkspace)

	workspaces := api.Group("/workspaces")
	workspaces.GET("", h.ListWorkspaces)
	workspaces.POST("", h.CreateWorkspace)
	workspaces.GET("/:id", h.GetWorkspace)
	workspaces.PATCH("/:id", h.UpdateWorkspace)

	clients := api.Group("/clients")
	clients.GET("", h.ListClients)
	clients.POST("", h.CreateClient)
	clients.GET("/:id", h.GetClient)
	clients.PATCH("/:id", h.UpdateClient)
	clients.DELETE("/:id", h.DeleteClient)
	clients.POST("/:id/invite", h.InviteClient)
	clients.GET("/:id/invitations", h.ListClientInvitations)

	api.POST("/invitations/:id/revoke", h.RevokeInvitation)

	services := api.Group("/services")
	services.GET("", h.ListServices)
	services.POST("", h.CreateService)
	services.GET("/:id", h.GetService)
	services.PATCH("/:id", h.UpdateService)
	services.DELETE("/:id", h.DeleteService)

	appointments := api.Group("/appointments")
	appointments.GET("", h.ListAppointments)
	appointments.POST("", h.CreateAppointment)
	appointments.GET("/:id", h.GetAppointment)
	appointments.PATCH("/:id", h.UpdateAppointment)
	appointments.DELETE("/:id", h.DeleteAppointment)

	consultations := api.Group("/consultations")
	consultations.GET("", h.ListConsultations)
	consultations.POST("", h.CreateConsultation)
	consultations.GET("/:id", h.GetConsultation)
	consultations.PATCH("/:id", h.UpdateConsultation)
	consultations.DELETE("/:id", h.DeleteConsultation)

	casefiles := api.Group("/casefiles")
	casefiles.GET("", h.ListCaseFiles)
	casefiles.POST("", h.CreateCaseFile)
	casefiles.GET("/:id", h.GetCaseFile)
	casefiles.PATCH("/:id", h.UpdateCaseFile)
	casefiles.DELETE("/:id", h.DeleteCaseFile)

	events := api.Group("/caseevents")
	events.GET("", h.ListCaseEvents)
	events.POST("", h.CreateCaseEvent)
	events.GET("/:id", h.GetCaseEvent)
	events.PATCH("/:id", h.UpdateCaseEvent)
	events.DELETE("/:id", h.DeleteCaseEvent)
	events.POST("/:id/attachments", h.UploadAttachments)

	attachments := api.Group("/caseattachments")
	attachments.GET("", h.ListAttachments)
	attachments.GET("/:id", h.GetAttachment)
	attachments.GET("/:id/download", h.DownloadAttachment)
	attachments.DELETE("/:id", h.DeleteAttachment)

	portal := api.Group("/client-portal")
	portal.GET("/me", h.PortalMe)
	portal.GET("/appointments", h.PortalAppointments)
	portal.GET("/consultations", h.PortalConsultations)
	portal.GET("/casefiles", h.PortalCaseFiles)
	portal.GET("/casefiles/:id/events", h.PortalCaseFileEvents)
}
