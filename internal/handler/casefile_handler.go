package handler

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"practice-service/internal/apperr"
	"practice-service/internal/service"
	"practice-service/pkg/logger"
)

func (h *Handler) ListCaseFiles(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	clientID, err := queryID(c, "client")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.CaseFiles.ListCaseFiles(c.Request().Context(), user, service.CaseFileFilter{ClientID: clientID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCaseFile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	cf, err := h.svc.CaseFiles.GetCaseFile(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cf)
}

func (h *Handler) CreateCaseFile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CaseFileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	cf, err := h.svc.CaseFiles.CreateCaseFile(c.Request().Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cf)
}

func (h *Handler) UpdateCaseFile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.CaseFileInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	cf, err := h.svc.CaseFiles.UpdateCaseFile(c.Request().Context(), user, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cf)
}

func (h *Handler) DeleteCaseFile(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.CaseFiles.DeleteCaseFile(c.Request().Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCaseEvents accepts an optional ?casefile= filter.
func (h *Handler) ListCaseEvents(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	caseFileID, err := queryID(c, "casefile")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.CaseFiles.ListEvents(c.Request().Context(), user, service.CaseEventFilter{CaseFileID: caseFileID})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCaseEvent(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	ev, err := h.svc.CaseFiles.GetEvent(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) CreateCaseEvent(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req service.CaseEventInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ev, err := h.svc.CaseFiles.CreateEvent(c.Request().Context(), user, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

func (h *Handler) UpdateCaseEvent(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.CaseEventInput
	if err := bind(c, &req); err != nil {
		return respondError(c, err)
	}
	ev, err := h.svc.CaseFiles.UpdateEvent(c.Request().Context(), user, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) DeleteCaseEvent(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.CaseFiles.DeleteEvent(c.Request().Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadAttachments stores every file sent under "files" (or a single
// "file") against the event in the path.
func (h *Handler) UploadAttachments(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, apperr.FieldValidation("files", "multipart form with files is required"))
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}

	uploads := make([]service.Upload, len(headers))
	for i, fh := range headers {
		uploads[i] = uploadFromHeader(fh)
	}

	rows, err := h.svc.CaseFiles.UploadAttachments(c.Request().Context(), user, id, uploads, parseFlag(c.FormValue("is_private")))
	if err != nil {
		return respondError(c, err)
	}

	logger.FromContext(c).Info("Attachments uploaded", zap.Uint("event_id", id), zap.Int("count", len(rows)))
	return c.JSON(http.StatusCreated, rows)
}

func uploadFromHeader(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// ListAttachments accepts optional ?casefile= and ?event= filters.
func (h *Handler) ListAttachments(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	caseFileID, err := queryID(c, "casefile")
	if err != nil {
		return respondError(c, err)
	}
	eventID, err := queryID(c, "event")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.svc.CaseFiles.ListAttachments(c.Request().Context(), user, service.AttachmentFilter{
		CaseFileID: caseFileID,
		EventID:    eventID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetAttachment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	a, err := h.svc.CaseFiles.GetAttachment(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DownloadAttachment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	a, r, err := h.svc.CaseFiles.OpenAttachment(c.Request().Context(), user, id)
	if err != nil {
		return respondError(c, err)
	}
	defer r.Close()

	contentType := a.MimeType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": a.OriginalName}))
	return c.Stream(http.StatusOK, contentType, r)
}

func (h *Handler) DeleteAttachment(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.svc.CaseFiles.DeleteAttachment(c.Request().Context(), user, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
